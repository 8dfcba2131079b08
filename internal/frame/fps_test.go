// fps_test.go: Unit tests for the rolling throughput window
package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFPSNeedsTwoSamples(t *testing.T) {
	var w fpsWindow
	assert.Equal(t, 0.0, w.FPS())

	w.Add(time.Now())
	assert.Equal(t, 0.0, w.FPS())
}

func TestFPSSteadyRate(t *testing.T) {
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	var w fpsWindow
	// 10 completions 100ms apart: 9 intervals over 0.9s.
	for i := 0; i < fpsWindowSize; i++ {
		w.Add(base.Add(time.Duration(i) * 100 * time.Millisecond))
	}

	assert.InDelta(t, 10.0, w.FPS(), 1e-9)
}

func TestFPSWindowEvictsOldest(t *testing.T) {
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	var w fpsWindow
	// A slow first second followed by 10 fast completions: only the window
	// counts, so the slow start must be forgotten.
	w.Add(base)
	for i := 0; i < fpsWindowSize; i++ {
		w.Add(base.Add(time.Second + time.Duration(i)*50*time.Millisecond))
	}

	// 9 intervals over 0.45s = 20 fps.
	assert.InDelta(t, 20.0, w.FPS(), 1e-9)
}

func TestFPSIdenticalTimestamps(t *testing.T) {
	now := time.Now()
	var w fpsWindow
	w.Add(now)
	w.Add(now)

	assert.Equal(t, 0.0, w.FPS(), "zero elapsed time must not divide by zero")
}
