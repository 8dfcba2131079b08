// stabilizer_test.go: Unit tests for the cross-frame plate identity stabilizer
package processor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/platenet"
)

type recordingNotifier struct {
	plates []string
}

func (n *recordingNotifier) PlateConfirmed(plate string, confidence float64) {
	n.plates = append(n.plates, plate)
}

func plateResult(code, number string, confidence float64) *platenet.LicensePlateResult {
	return &platenet.LicensePlateResult{
		Code:   code,
		Number: number,
		PlateBox: &platenet.DetectionBox{
			X1: 100, Y1: 100, X2: 300, Y2: 180, Confidence: confidence,
		},
	}
}

func newTestStabilizer(t *testing.T, threshold int, notifier Notifier) *PlateStabilizer {
	t.Helper()
	s, err := NewPlateStabilizer(conf.StabilizerSettings{ConfirmationThreshold: threshold}, notifier)
	require.NoError(t, err)
	return s
}

func TestStabilizerConfigValidation(t *testing.T) {
	_, err := NewPlateStabilizer(conf.StabilizerSettings{ConfirmationThreshold: 0}, nil)
	assert.Error(t, err)
}

func TestStabilizerPromotionLadder(t *testing.T) {
	notifier := &recordingNotifier{}
	s := newTestStabilizer(t, 3, notifier)

	r1 := s.Observe(plateResult("ABC", "123", 0.7))
	require.NotNil(t, r1)
	assert.Equal(t, StabilityDetected, r1.Stability)
	assert.Equal(t, 1, r1.ConsecutiveFrames)

	r2 := s.Observe(plateResult("ABC", "123", 0.8))
	assert.Equal(t, StabilityConfirming, r2.Stability)
	assert.Empty(t, notifier.plates, "confirmation must not fire before the threshold")

	r3 := s.Observe(plateResult("ABC", "123", 0.75))
	assert.Equal(t, StabilityConfirmed, r3.Stability)
	assert.Equal(t, []string{"ABC123"}, notifier.plates)
}

func TestStabilizerNotifiesOncePerRun(t *testing.T) {
	notifier := &recordingNotifier{}
	s := newTestStabilizer(t, 3, notifier)

	for i := 0; i < 10; i++ {
		s.Observe(plateResult("ABC", "123", 0.8))
	}

	assert.Equal(t, []string{"ABC123"}, notifier.plates,
		"frames past the threshold stay confirmed without re-notifying")
	assert.Equal(t, 10, s.Current().ConsecutiveFrames)
}

func TestStabilizerTracksMaxConfidence(t *testing.T) {
	s := newTestStabilizer(t, 3, nil)

	s.Observe(plateResult("ABC", "123", 0.6))
	s.Observe(plateResult("ABC", "123", 0.9))
	r := s.Observe(plateResult("ABC", "123", 0.7))

	assert.InDelta(t, 0.9, r.MaxConfidence, 1e-12)
}

func TestStabilizerNilAndUnreadableLeaveIdentityUntouched(t *testing.T) {
	s := newTestStabilizer(t, 3, nil)

	assert.Nil(t, s.Observe(nil), "no identity before the first reading")

	s.Observe(plateResult("ABC", "123", 0.8))
	r := s.Observe(nil)
	require.NotNil(t, r)
	assert.Equal(t, 1, r.ConsecutiveFrames, "an empty frame neither extends nor resets the run")

	// A result that normalizes to nothing behaves the same way.
	r = s.Observe(&platenet.LicensePlateResult{Code: "--", Number: "  "})
	require.NotNil(t, r)
	assert.Equal(t, "ABC123", r.Normalized)
}

func TestStabilizerIdentityChangeReplacesWholesale(t *testing.T) {
	notifier := &recordingNotifier{}
	s := newTestStabilizer(t, 3, notifier)

	s.Observe(plateResult("ABC", "123", 0.8))
	s.Observe(plateResult("ABC", "123", 0.9))

	// Clearly different plate: the run restarts at 1 and the old max
	// confidence is gone.
	r := s.Observe(plateResult("XYZ", "789", 0.5))
	assert.Equal(t, "XYZ789", r.Normalized)
	assert.Equal(t, 1, r.ConsecutiveFrames)
	assert.Equal(t, StabilityDetected, r.Stability)
	assert.InDelta(t, 0.5, r.MaxConfidence, 1e-12)
	assert.Empty(t, notifier.plates)
}

func TestStabilizerToleratesSingleCharacterMisread(t *testing.T) {
	notifier := &recordingNotifier{}
	s := newTestStabilizer(t, 3, notifier)

	s.Observe(plateResult("ABC", "123", 0.8))
	s.Observe(plateResult("ABC", "128", 0.8)) // one substitution
	s.Observe(plateResult("ABC", "12", 0.8))  // one dropped character

	require.Len(t, notifier.plates, 1, "near-identical reads count toward the same identity")
	assert.Equal(t, 3, s.Current().ConsecutiveFrames)
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizePlate("abc-123"))
	assert.Equal(t, "ABC123", NormalizePlate(" a b c 1.2:3 "))
	assert.Equal(t, "", NormalizePlate("--- "))
}

func TestSameIdentity(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"ABC123", "ABC123", true},
		{"ABC123", "ABC128", true},  // one substitution
		{"ABC123", "ABC12", true},   // length differs by one
		{"ABC123", "ABC1234", true}, // length differs by one
		{"ABC123", "ABD124", false}, // two substitutions
		{"ABC123", "ABC12345", false},
		{"", "", true},
		{"A", "", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SameIdentity(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
		assert.Equal(t, tc.want, SameIdentity(tc.b, tc.a), "must be symmetric: %q vs %q", tc.b, tc.a)
	}
}

func TestHistoryDedupWindow(t *testing.T) {
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	h := &plateHistory{}

	assert.True(t, h.add(PlateHistoryEntry{Text: "ABC123", Timestamp: base}))
	assert.False(t, h.add(PlateHistoryEntry{Text: "ABC123", Timestamp: base.Add(3 * time.Second)}),
		"same text within the window is suppressed")
	assert.True(t, h.add(PlateHistoryEntry{Text: "XYZ789", Timestamp: base.Add(3 * time.Second)}),
		"different text is always kept")
	assert.True(t, h.add(PlateHistoryEntry{Text: "ABC123", Timestamp: base.Add(10 * time.Second)}),
		"same text past the window is kept again")

	assert.Len(t, h.snapshot(), 3)
}

func TestHistoryEvictsOldestPastLimit(t *testing.T) {
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	h := &plateHistory{}

	for i := 0; i < historyLimit+1; i++ {
		entry := PlateHistoryEntry{
			Text:      fmt.Sprintf("PLT%03d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		require.True(t, h.add(entry))
	}

	got := h.snapshot()
	require.Len(t, got, historyLimit)
	assert.Equal(t, "PLT001", got[0].Text, "oldest entry evicted first")
	assert.Equal(t, fmt.Sprintf("PLT%03d", historyLimit), got[len(got)-1].Text)
}

func TestHistorySnapshotIsIndependent(t *testing.T) {
	h := &plateHistory{}
	h.add(PlateHistoryEntry{Text: "ABC123", Timestamp: time.Now()})

	snap := h.snapshot()
	snap[0].Text = "MUTATED"

	assert.Equal(t, "ABC123", h.snapshot()[0].Text)
}
