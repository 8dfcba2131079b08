package frame

import "time"

// fpsWindowSize is the number of completion timestamps in the rolling
// throughput window.
const fpsWindowSize = 10

// fpsWindow computes rolling throughput from the most recent completion
// timestamps. Not safe for concurrent use; owned by the inference goroutine.
type fpsWindow struct {
	stamps [fpsWindowSize]time.Time
	next   int
	count  int
}

// Add records one completion timestamp, evicting the oldest when full.
func (w *fpsWindow) Add(t time.Time) {
	w.stamps[w.next] = t
	w.next = (w.next + 1) % fpsWindowSize
	if w.count < fpsWindowSize {
		w.count++
	}
}

// FPS returns completions per second over the window, 0 with fewer than
// two samples.
func (w *fpsWindow) FPS() float64 {
	if w.count < 2 {
		return 0
	}
	var oldest time.Time
	if w.count < fpsWindowSize {
		oldest = w.stamps[0]
	} else {
		oldest = w.stamps[w.next]
	}
	newest := w.stamps[(w.next+fpsWindowSize-1)%fpsWindowSize]
	elapsed := newest.Sub(oldest).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(w.count-1) / elapsed
}
