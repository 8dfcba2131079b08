// Package processor logging.
package processor

import (
	"log/slog"
	"sync"

	"github.com/platewatch/platewatch-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// getLogger returns the processor package logger.
func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("processor")
	})
	return serviceLogger
}
