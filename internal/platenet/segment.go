package platenet

import (
	"sort"
	"strings"
)

// segmentCharacters orders character detections left to right and splits
// them into a plate code and number.
//
// When letters are present the split is by class: letters form the code,
// digits the number, each in x order. Interleaved letter/digit layouts are
// therefore reordered relative to the physical sequence; this matches the
// historical behavior and is kept for compatibility.
//
// All-digit plates split on the widest inter-character gap when it exceeds
// gapRatio times the mean gap; otherwise the whole string is the number.
func segmentCharacters(chars []CharDetection, gapRatio float64) (code, number string) {
	if len(chars) == 0 {
		return "", ""
	}

	ordered := make([]CharDetection, len(chars))
	copy(ordered, chars)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].X < ordered[j].X })

	if len(ordered) < 2 {
		return "", string(ordered[0].Char)
	}

	hasLetter := false
	for _, c := range ordered {
		if !c.IsDigit() {
			hasLetter = true
			break
		}
	}

	if hasLetter {
		var letters, digits strings.Builder
		for _, c := range ordered {
			if c.IsDigit() {
				digits.WriteByte(c.Char)
			} else {
				letters.WriteByte(c.Char)
			}
		}
		return letters.String(), digits.String()
	}

	// All digits: look for a gap wide enough to separate code from number.
	gaps := make([]float64, len(ordered)-1)
	var sum, maxGap float64
	maxIdx := 0
	for i := range gaps {
		gaps[i] = ordered[i+1].X - ordered[i].X
		sum += gaps[i]
		if gaps[i] > maxGap {
			maxGap = gaps[i]
			maxIdx = i
		}
	}
	mean := sum / float64(len(gaps))

	var all strings.Builder
	for _, c := range ordered {
		all.WriteByte(c.Char)
	}
	if maxGap > gapRatio*mean {
		s := all.String()
		return s[:maxIdx+1], s[maxIdx+1:]
	}
	return "", all.String()
}
