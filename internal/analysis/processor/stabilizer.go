package processor

import (
	"strings"
	"time"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/errors"
	"github.com/platewatch/platewatch-go/internal/platenet"
)

// Stability is the promotion level of the tracked plate identity.
type Stability int

const (
	StabilityDetected   Stability = iota // first observation
	StabilityConfirming                  // repeated but not yet trusted
	StabilityConfirmed                   // sustained, trusted reading
)

func (s Stability) String() string {
	switch s {
	case StabilityDetected:
		return "detected"
	case StabilityConfirming:
		return "confirming"
	case StabilityConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// StabilizedPlateResult is the current tracked identity. Replaced wholesale
// on identity change; ConsecutiveFrames resets to 1 then, otherwise it
// increases monotonically.
type StabilizedPlateResult struct {
	Normalized        string
	Raw               string
	Code              string
	Number            string
	MaxConfidence     float64
	Stability         Stability
	ConsecutiveFrames int
	FirstSeen         time.Time
	LastSeen          time.Time
	LastBox           *platenet.DetectionBox
}

// Notifier receives the one confirmation side effect per promoted plate.
// Implementations live outside the core (haptic, banner, log).
type Notifier interface {
	PlateConfirmed(plate string, confidence float64)
}

// PlateStabilizer treats near-identical OCR strings across frames as the
// same physical plate and promotes an identity to confirmed only after
// sustained repeated observation. Synchronous, single-threaded, fed once
// per admitted frame in strict order.
type PlateStabilizer struct {
	threshold int
	notifier  Notifier
	now       func() time.Time

	current *StabilizedPlateResult
	history *plateHistory
}

// NewPlateStabilizer validates cfg at construction.
func NewPlateStabilizer(cfg conf.StabilizerSettings, notifier Notifier) (*PlateStabilizer, error) {
	if cfg.ConfirmationThreshold <= 0 {
		return nil, errors.ValidationError("stabilizer: ConfirmationThreshold must be positive, got %d", cfg.ConfirmationThreshold)
	}
	return &PlateStabilizer{
		threshold: cfg.ConfirmationThreshold,
		notifier:  notifier,
		now:       time.Now,
		history:   &plateHistory{},
	}, nil
}

// Observe feeds one admitted frame's raw recognition result (nil when the
// frame had none) and returns the current tracked identity, or nil before
// any plate has been read. A frame without a readable string leaves the
// tracked identity untouched.
func (s *PlateStabilizer) Observe(result *platenet.LicensePlateResult) *StabilizedPlateResult {
	if result == nil {
		return s.current
	}
	raw := result.FullPlate()
	normalized := NormalizePlate(raw)
	if normalized == "" {
		return s.current
	}

	confidence := 0.0
	if result.PlateBox != nil {
		confidence = result.PlateBox.Confidence
	}
	now := s.now()

	if s.current != nil && SameIdentity(s.current.Normalized, normalized) {
		s.current.ConsecutiveFrames++
		s.current.Raw = raw
		s.current.Code = result.Code
		s.current.Number = result.Number
		s.current.LastSeen = now
		s.current.LastBox = result.PlateBox
		if confidence > s.current.MaxConfidence {
			s.current.MaxConfidence = confidence
		}
	} else {
		s.current = &StabilizedPlateResult{
			Normalized:        normalized,
			Raw:               raw,
			Code:              result.Code,
			Number:            result.Number,
			MaxConfidence:     confidence,
			ConsecutiveFrames: 1,
			FirstSeen:         now,
			LastSeen:          now,
			LastBox:           result.PlateBox,
		}
	}

	s.current.Stability = s.stabilityFor(s.current.ConsecutiveFrames)

	// The count moves by single steps, so it passes through the threshold
	// exactly once per run: that is the transition frame into confirmed.
	if s.current.ConsecutiveFrames == s.threshold {
		s.confirm(now)
	}

	return s.current
}

// confirm appends the history entry (with 5s duplicate suppression) and
// fires the single confirmation notification.
func (s *PlateStabilizer) confirm(now time.Time) {
	entry := PlateHistoryEntry{
		Text:       s.current.Normalized,
		Code:       s.current.Code,
		Number:     s.current.Number,
		Confidence: s.current.MaxConfidence,
		Timestamp:  now,
		FramesSeen: s.current.ConsecutiveFrames,
	}
	s.history.add(entry)
	getLogger().Info("plate confirmed",
		"plate", entry.Text,
		"confidence", entry.Confidence,
		"frames", entry.FramesSeen)
	if s.notifier != nil {
		s.notifier.PlateConfirmed(entry.Text, entry.Confidence)
	}
}

// stabilityFor maps a consecutive observation count to a promotion level.
func (s *PlateStabilizer) stabilityFor(count int) Stability {
	switch {
	case count >= s.threshold:
		return StabilityConfirmed
	case count == 1:
		return StabilityDetected
	default:
		return StabilityConfirming
	}
}

// Current returns the tracked identity, nil before any plate has been read.
func (s *PlateStabilizer) Current() *StabilizedPlateResult {
	return s.current
}

// History returns a read-only copy of the confirmation history, newest last.
func (s *PlateStabilizer) History() []PlateHistoryEntry {
	return s.history.snapshot()
}

// NormalizePlate strips non-alphanumerics and uppercases, so cosmetic
// differences between reads never split an identity.
func NormalizePlate(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToUpper(text) {
		if r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameIdentity reports whether two normalized strings read as the same
// physical plate: equal, or lengths within 1 where equal-length strings
// may differ in at most one position. Two or more character differences
// are distinct plates.
func SameIdentity(a, b string) bool {
	if a == b {
		return true
	}
	diff := len(a) - len(b)
	if diff < -1 || diff > 1 {
		return false
	}
	if diff != 0 {
		return true
	}
	mismatches := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			mismatches++
			if mismatches > 1 {
				return false
			}
		}
	}
	return true
}
