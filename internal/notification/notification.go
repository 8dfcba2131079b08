// Package notification delivers confirmation events to the user-facing
// side effect collaborators (banner, haptic, log).
package notification

import (
	"log/slog"

	"github.com/platewatch/platewatch-go/internal/logging"
)

// LogNotifier announces confirmed plates on the structured log. It is the
// default collaborator when no richer presentation layer is attached.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier writing to the notification service log.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logging.ForService("notification")}
}

// PlateConfirmed fires the one confirmation side effect for a promoted plate.
func (n *LogNotifier) PlateConfirmed(plate string, confidence float64) {
	n.log.Info("license plate confirmed", "plate", plate, "confidence", confidence)
}

// Notifier receives plate confirmation events. processor.Notifier is the
// consuming side of the same contract.
type Notifier interface {
	PlateConfirmed(plate string, confidence float64)
}

// Multi fans one confirmation out to several notifiers.
type Multi []Notifier

// PlateConfirmed forwards to every registered notifier in order.
func (m Multi) PlateConfirmed(plate string, confidence float64) {
	for _, n := range m {
		n.PlateConfirmed(plate, confidence)
	}
}
