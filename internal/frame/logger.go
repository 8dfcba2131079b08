// Package frame logging.
package frame

import (
	"log/slog"
	"sync"

	"github.com/platewatch/platewatch-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// getLogger returns the frame package logger.
func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("frame")
	})
	return serviceLogger
}
