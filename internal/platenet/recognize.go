package platenet

import (
	"fmt"
	"image"
	"time"

	"github.com/platewatch/platewatch-go/internal/errors"
)

// Recognize runs the full two-stage pipeline on one source image:
// detect the plate, crop it, classify its characters, segment them.
//
// A frame with no plate above the variant threshold returns a nil result
// and no error. Model invocation failures return an error; scratch buffers
// are zero-filled at entry so a failed call cannot corrupt a later one.
//
// The method serializes internally; each interpreter still has exactly one
// logical owner and callers must not assume re-entrancy.
func (pn *PlateNet) Recognize(img image.Image) (*LicensePlateResult, StageTimings, error) {
	pn.mu.Lock()
	defer pn.mu.Unlock()

	var timings StageTimings
	totalStart := time.Now()

	clear(pn.plateInput)
	clear(pn.plateOutput)

	// Stage 1: plate detection.
	start := time.Now()
	canvas, t := LetterboxImage(img, pn.plateHead.inputW, pn.plateHead.inputH)
	fillInputTensor(canvas, pn.plateInput)
	if err := pn.invoke(pn.plateHead, pn.plateInput, pn.plateOutput); err != nil {
		return nil, timings, errors.New(fmt.Errorf("platenet: plate detection failed: %w", err)).
			Component("platenet").
			Category(errors.CategoryModelInference).
			Context("stage", "detect").
			Timing("detect", time.Since(start)).
			Build()
	}
	boxes := decodeDetections(pn.plateOutput, pn.plateHead.numAttrs, pn.plateHead.numCandidates,
		pn.detectionThreshold(), t, pn.plateHead.inputW, pn.plateHead.inputH)
	boxes = nonMaxSuppression(boxes, pn.Settings.PlateNet.IoUThreshold)
	timings.Detect = time.Since(start)

	if len(boxes) == 0 {
		timings.Total = time.Since(totalStart)
		return nil, timings, nil
	}

	// NMS keeps boxes in confidence-descending order.
	best := boxes[0]

	// Stage 2: crop the plate region with padding.
	start = time.Now()
	crop := cropWithPadding(img, best, pn.Settings.PlateNet.CropPadding)
	timings.Crop = time.Since(start)

	// Stage 3: character classification on the crop.
	start = time.Now()
	clear(pn.charInput)
	clear(pn.charOutput)
	charCanvas, ct := LetterboxImage(crop, pn.charHead.inputW, pn.charHead.inputH)
	fillInputTensor(charCanvas, pn.charInput)
	if err := pn.invoke(pn.charHead, pn.charInput, pn.charOutput); err != nil {
		return nil, timings, errors.New(fmt.Errorf("platenet: character classification failed: %w", err)).
			Component("platenet").
			Category(errors.CategoryModelInference).
			Context("stage", "classify").
			Timing("classify", time.Since(start)).
			Build()
	}
	charBoxes := decodeDetections(pn.charOutput, pn.charHead.numAttrs, pn.charHead.numCandidates,
		pn.Settings.PlateNet.OCRThreshold, ct, pn.charHead.inputW, pn.charHead.inputH)
	charBoxes = nonMaxSuppression(charBoxes, pn.Settings.PlateNet.IoUThreshold)
	chars := charDetections(charBoxes)
	timings.Classify = time.Since(start)

	// Stage 4: segmentation. Zero characters still yields a result with an
	// empty code and number.
	start = time.Now()
	code, number := segmentCharacters(chars, pn.Settings.PlateNet.GapRatio)
	timings.Segment = time.Since(start)
	timings.Total = time.Since(totalStart)

	result := &LicensePlateResult{
		Code:     code,
		Number:   number,
		PlateBox: &best,
		Crop:     crop,
		Chars:    chars,
		Timings:  timings,
	}
	return result, timings, nil
}
