// Package processor holds the per-frame reducers fed by the admission
// controller: the capture stability tracker and the cross-frame plate
// identity stabilizer. Both are synchronous single-threaded reducers and
// must be fed in strict frame order.
package processor

import (
	"image"
	"math"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/errors"
	"github.com/platewatch/platewatch-go/internal/platenet"
)

// CapturedFrame is the single best frame of a stable run, emitted once.
// Ownership passes to the receiver on emission; the tracker drops its
// reference.
type CapturedFrame struct {
	Image      *image.RGBA
	PlateBox   platenet.DetectionBox
	Confidence float64
}

// TrackerProgress is the per-frame view exposed to presentation.
type TrackerProgress struct {
	Box           *platenet.DetectionBox
	Width         int
	Height        int
	StableCount   int
	RequiredCount int
}

// trackerPhase is the explicit state of the tracker.
type trackerPhase int

const (
	phaseSearching    trackerPhase = iota // no stable run in progress
	phaseAccumulating                     // 0 < count < required
	phaseLatched                          // capture fired, waiting for Restart
)

// StabilityTracker decides, frame by frame, whether the plate view is
// confident, adequately sized and motion-stable enough to freeze for the
// high-accuracy recognition pass. It retains the best candidate of the
// run and emits exactly one CapturedFrame per scan cycle.
type StabilityTracker struct {
	cfg       conf.CaptureSettings
	onCapture func(CapturedFrame)

	phase    trackerPhase
	count    int
	baseline *platenet.DetectionBox
	best     *CapturedFrame
}

// NewStabilityTracker validates cfg at construction and returns a tracker
// in the Searching state. onCapture receives the single capture event of
// each scan cycle.
func NewStabilityTracker(cfg conf.CaptureSettings, onCapture func(CapturedFrame)) (*StabilityTracker, error) {
	if cfg.RequiredStableFrames <= 0 {
		return nil, errors.ValidationError("tracker: RequiredStableFrames must be positive, got %d", cfg.RequiredStableFrames)
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, errors.ValidationError("tracker: MinConfidence must be within [0,1], got %g", cfg.MinConfidence)
	}
	if cfg.MinPlateAreaFraction <= 0 || cfg.MinPlateAreaFraction > 1 {
		return nil, errors.ValidationError("tracker: MinPlateAreaFraction must be within (0,1], got %g", cfg.MinPlateAreaFraction)
	}
	if cfg.MaxCentreMoveFraction <= 0 {
		return nil, errors.ValidationError("tracker: MaxCentreMoveFraction must be positive, got %g", cfg.MaxCentreMoveFraction)
	}
	if cfg.MaxAreaChangeFraction <= 0 {
		return nil, errors.ValidationError("tracker: MaxAreaChangeFraction must be positive, got %g", cfg.MaxAreaChangeFraction)
	}
	return &StabilityTracker{cfg: cfg, onCapture: onCapture}, nil
}

// Feed evaluates the quality gates for one admitted frame, in order, first
// failure short-circuiting. The box must be this frame's raw detection,
// never a retained one.
func (t *StabilityTracker) Feed(box *platenet.DetectionBox, img *image.RGBA, width, height int) TrackerProgress {
	if t.phase == phaseLatched {
		// Capture already fired this scan cycle; ignore frames until the
		// caller restarts the tracker.
		return t.progress(box, width, height)
	}

	// Gate 1: detection present and confident.
	if box == nil || box.Confidence < t.cfg.MinConfidence {
		t.softReset()
		return t.progress(box, width, height)
	}

	// Gate 2: plate large enough in frame.
	imageArea := float64(width) * float64(height)
	if imageArea <= 0 || box.Area()/imageArea < t.cfg.MinPlateAreaFraction {
		t.softReset()
		return t.progress(box, width, height)
	}

	if t.baseline != nil {
		// Gate 3: centre stable against the previous accepted box.
		dx := (box.CenterX() - t.baseline.CenterX()) / float64(width)
		dy := (box.CenterY() - t.baseline.CenterY()) / float64(height)
		if math.Hypot(dx, dy) > t.cfg.MaxCentreMoveFraction {
			t.movementReset(box)
			return t.progress(box, width, height)
		}

		// Gate 4: size stable.
		baseArea := t.baseline.Area()
		if baseArea > 0 && math.Abs(box.Area()-baseArea)/baseArea > t.cfg.MaxAreaChangeFraction {
			t.movementReset(box)
			return t.progress(box, width, height)
		}
	}

	// All gates passed.
	t.count++
	t.phase = phaseAccumulating
	t.baseline = box
	if t.best == nil || box.Confidence > t.best.Confidence {
		t.best = &CapturedFrame{Image: img, PlateBox: *box, Confidence: box.Confidence}
	}

	if t.count >= t.cfg.RequiredStableFrames {
		captured := *t.best
		t.hardReset()
		t.phase = phaseLatched
		if t.onCapture != nil {
			t.onCapture(captured)
		}
	}
	return t.progress(box, width, height)
}

// Restart re-arms the tracker after the caller has finished handling a
// capture. The downstream freeze/recognize pass is asynchronous; frames
// arriving before Restart must not start a new run.
func (t *StabilityTracker) Restart() {
	t.hardReset()
}

// softReset clears the run: count, best candidate and baseline.
func (t *StabilityTracker) softReset() {
	t.count = 0
	t.best = nil
	t.baseline = nil
	t.phase = phaseSearching
}

// movementReset clears the run but re-baselines on the box that failed the
// motion gate, so a re-settled plate can accumulate from the next frame.
func (t *StabilityTracker) movementReset(box *platenet.DetectionBox) {
	t.count = 0
	t.best = nil
	t.baseline = box
	t.phase = phaseSearching
}

func (t *StabilityTracker) hardReset() {
	t.count = 0
	t.best = nil
	t.baseline = nil
	t.phase = phaseSearching
}

func (t *StabilityTracker) progress(box *platenet.DetectionBox, width, height int) TrackerProgress {
	return TrackerProgress{
		Box:           box,
		Width:         width,
		Height:        height,
		StableCount:   t.count,
		RequiredCount: t.cfg.RequiredStableFrames,
	}
}
