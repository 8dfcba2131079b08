package platenet

// Raw detection head output is transposed: shaped [attributes, candidates],
// attributes = [cx, cy, w, h, classScore...]. Coordinates are either
// normalized fractions of the model input or already in model-pixel space;
// one model is consistent within a batch, decided by inspecting the first
// value (normalized outputs never exceed 2.0).

const normalizedCoordLimit = 2.0

// decodeDetections converts a raw output tensor into source-space boxes.
// Candidates below confThreshold are discarded before geometry conversion.
func decodeDetections(data []float32, numAttrs, numCandidates int, confThreshold float64, t LetterboxTransform, modelW, modelH int) []DetectionBox {
	if numAttrs < 5 || numCandidates == 0 || len(data) < numAttrs*numCandidates {
		return nil
	}

	// Coordinate space is decided once per batch from the first cx value.
	scaleX, scaleY := 1.0, 1.0
	if float64(data[0]) <= normalizedCoordLimit {
		scaleX = float64(modelW)
		scaleY = float64(modelH)
	}

	attr := func(a, c int) float64 { return float64(data[a*numCandidates+c]) }

	var boxes []DetectionBox
	for c := 0; c < numCandidates; c++ {
		bestScore := attr(4, c)
		bestClass := 0
		for a := 5; a < numAttrs; a++ {
			if s := attr(a, c); s > bestScore {
				bestScore = s
				bestClass = a - 4
			}
		}
		if bestScore < confThreshold {
			continue
		}

		cx := attr(0, c) * scaleX
		cy := attr(1, c) * scaleY
		w := attr(2, c) * scaleX
		h := attr(3, c) * scaleY

		// Inverse letterbox: back to source-pixel space.
		srcCX, srcCY := t.ToSource(cx, cy)
		srcW := w / t.Ratio
		srcH := h / t.Ratio

		boxes = append(boxes, DetectionBox{
			X1:         srcCX - srcW/2,
			Y1:         srcCY - srcH/2,
			X2:         srcCX + srcW/2,
			Y2:         srcCY + srcH/2,
			Confidence: bestScore,
			ClassID:    bestClass,
		})
	}
	return boxes
}

// charDetections converts character boxes into anchored character
// detections, using the box center as the anchor.
func charDetections(boxes []DetectionBox) []CharDetection {
	chars := make([]CharDetection, 0, len(boxes))
	for _, b := range boxes {
		if b.ClassID < 0 || b.ClassID >= len(Charset) {
			continue
		}
		chars = append(chars, CharDetection{
			X:          b.CenterX(),
			Y:          b.CenterY(),
			Char:       Charset[b.ClassID],
			Confidence: b.Confidence,
		})
	}
	return chars
}
