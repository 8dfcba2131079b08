package platenet

import "sort"

// IoU returns the intersection-over-union of two boxes, 0 when disjoint.
func IoU(a, b DetectionBox) float64 {
	ix1 := max(a.X1, b.X1)
	iy1 := max(a.Y1, b.Y1)
	ix2 := min(a.X2, b.X2)
	iy2 := min(a.Y2, b.Y2)
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := (ix2 - ix1) * (iy2 - iy1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// nonMaxSuppression greedily keeps the highest-confidence boxes, dropping
// any box overlapping a kept one by more than iouThreshold. Deterministic:
// the sort is stable, so confidence ties resolve by original index.
func nonMaxSuppression(boxes []DetectionBox, iouThreshold float64) []DetectionBox {
	if len(boxes) <= 1 {
		return boxes
	}

	sorted := make([]DetectionBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]DetectionBox, 0, len(sorted))
	suppressed := make([]bool, len(sorted))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		for j := i + 1; j < len(sorted); j++ {
			if !suppressed[j] && IoU(sorted[i], sorted[j]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
