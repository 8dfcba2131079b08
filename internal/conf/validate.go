package conf

import (
	"github.com/platewatch/platewatch-go/internal/errors"
)

// Validate rejects invalid settings at load time, before any component is
// constructed with them.
func (s *Settings) Validate() error {
	if err := s.PlateNet.validate(); err != nil {
		return err
	}
	return s.Realtime.validate()
}

func (p *PlateNetSettings) validate() error {
	if p.PlateModelPath == "" {
		return errors.ValidationError("platenet: plate model path must not be empty")
	}
	if p.CharModelPath == "" {
		return errors.ValidationError("platenet: character model path must not be empty")
	}
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"thresholds.file", p.Thresholds.File},
		{"thresholds.video", p.Thresholds.Video},
		{"thresholds.capture", p.Thresholds.Capture},
		{"ocrthreshold", p.OCRThreshold},
	} {
		if t.value < 0 || t.value > 1 {
			return errors.ValidationError("platenet: %s must be within [0,1], got %g", t.name, t.value)
		}
	}
	if p.IoUThreshold <= 0 || p.IoUThreshold >= 1 {
		return errors.ValidationError("platenet: iouthreshold must be within (0,1), got %g", p.IoUThreshold)
	}
	if p.CropPadding < 0 {
		return errors.ValidationError("platenet: croppadding must not be negative, got %g", p.CropPadding)
	}
	if p.GapRatio <= 1 {
		return errors.ValidationError("platenet: gapratio must be greater than 1, got %g", p.GapRatio)
	}
	if p.Threads < 0 {
		return errors.ValidationError("platenet: threads must not be negative, got %d", p.Threads)
	}
	return nil
}

func (r *RealtimeSettings) validate() error {
	if r.MinInterval < 0 {
		return errors.ValidationError("realtime: mininterval must not be negative, got %s", r.MinInterval)
	}
	if r.RetentionWindow < 0 {
		return errors.ValidationError("realtime: retentionwindow must not be negative, got %s", r.RetentionWindow)
	}
	c := &r.Capture
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.ValidationError("capture: minconfidence must be within [0,1], got %g", c.MinConfidence)
	}
	if c.MinPlateAreaFraction <= 0 || c.MinPlateAreaFraction > 1 {
		return errors.ValidationError("capture: minplateareafraction must be within (0,1], got %g", c.MinPlateAreaFraction)
	}
	if c.MaxCentreMoveFraction <= 0 {
		return errors.ValidationError("capture: maxcentremovefraction must be positive, got %g", c.MaxCentreMoveFraction)
	}
	if c.MaxAreaChangeFraction <= 0 {
		return errors.ValidationError("capture: maxareachangefraction must be positive, got %g", c.MaxAreaChangeFraction)
	}
	if c.RequiredStableFrames <= 0 {
		return errors.ValidationError("capture: requiredstableframes must be positive, got %d", c.RequiredStableFrames)
	}
	if r.Stabilizer.ConfirmationThreshold <= 0 {
		return errors.ValidationError("stabilizer: confirmationthreshold must be positive, got %d", r.Stabilizer.ConfirmationThreshold)
	}
	return nil
}
