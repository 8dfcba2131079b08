package platenet

import (
	"image"
	"time"
)

// DetectionBox is a single detection in source-pixel space. Coordinates are
// ordered (X1 <= X2, Y1 <= Y2) and confidence is within [0,1]. Boxes are
// created per decode and never mutated.
type DetectionBox struct {
	X1, Y1, X2, Y2 float64
	Confidence     float64
	ClassID        int
}

// Width returns the box width.
func (b DetectionBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height.
func (b DetectionBox) Height() float64 { return b.Y2 - b.Y1 }

// CenterX returns the horizontal center of the box.
func (b DetectionBox) CenterX() float64 { return (b.X1 + b.X2) / 2 }

// CenterY returns the vertical center of the box.
func (b DetectionBox) CenterY() float64 { return (b.Y1 + b.Y2) / 2 }

// Area returns the box area, 0 for degenerate boxes.
func (b DetectionBox) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Charset is the symbol alphabet of the character classification head,
// indexed by class id.
const Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CharDetection is a single classified character anchored at its detection
// center in source-pixel space.
type CharDetection struct {
	X, Y       float64
	Char       byte // one of Charset
	Confidence float64
}

// IsDigit reports whether the detected character is a digit.
func (c CharDetection) IsDigit() bool { return c.Char >= '0' && c.Char <= '9' }

// StageTimings records per-stage processing durations of one pipeline call.
type StageTimings struct {
	Detect   time.Duration // letterbox + plate head + decode + NMS
	Crop     time.Duration // plate crop extraction
	Classify time.Duration // letterbox + character head + decode + NMS
	Segment  time.Duration // character ordering and code/number split
	Total    time.Duration
}

// LicensePlateResult is the outcome of one recognition pipeline call.
// Created once per call, immutable, ownership passes to the caller.
type LicensePlateResult struct {
	Code     string
	Number   string
	PlateBox *DetectionBox
	Crop     image.Image
	Chars    []CharDetection
	Timings  StageTimings
}

// FullPlate returns "code-number" when a code is present, else the bare number.
func (r *LicensePlateResult) FullPlate() string {
	if r.Code == "" {
		return r.Number
	}
	if r.Number == "" {
		return r.Code
	}
	return r.Code + "-" + r.Number
}
