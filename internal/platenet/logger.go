// Package platenet logging.
package platenet

import (
	"log/slog"
	"sync"

	"github.com/platewatch/platewatch-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// getLogger returns the platenet package logger.
func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("platenet")
	})
	return serviceLogger
}
