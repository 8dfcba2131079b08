package processor

import "time"

const (
	// historyLimit caps the confirmation history; the oldest entry is
	// evicted past it.
	historyLimit = 50
	// dedupWindow suppresses a repeat confirmation of the same normalized
	// text within this window.
	dedupWindow = 5 * time.Second
)

// PlateHistoryEntry is one confirmed plate reading. The log is append-only.
type PlateHistoryEntry struct {
	Text       string
	Code       string
	Number     string
	Confidence float64
	Timestamp  time.Time
	FramesSeen int
}

// plateHistory is exclusively stabilizer-owned; readers get copies.
type plateHistory struct {
	entries []PlateHistoryEntry
}

// add appends entry unless the same normalized text was recorded within
// the dedup window. Returns whether the entry was kept.
func (h *plateHistory) add(entry PlateHistoryEntry) bool {
	for i := len(h.entries) - 1; i >= 0; i-- {
		prev := h.entries[i]
		if entry.Timestamp.Sub(prev.Timestamp) > dedupWindow {
			break
		}
		if prev.Text == entry.Text {
			return false
		}
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > historyLimit {
		h.entries = h.entries[1:]
	}
	return true
}

// snapshot returns an independent copy, oldest first.
func (h *plateHistory) snapshot() []PlateHistoryEntry {
	out := make([]PlateHistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
