package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/platewatch/platewatch-go/cmd"
	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/telemetry"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	level := parseLevel(settings.Main.Log.Level)
	if settings.Debug {
		level = slog.LevelDebug
	}
	logPath := ""
	if settings.Main.Log.Enabled {
		logPath = settings.Main.Log.Path
	}
	closeLog, err := logging.Init(level, logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	flush, err := telemetry.Init(settings)
	if err != nil {
		logging.Warn("telemetry disabled", "error", err)
	}
	defer flush()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// parseLevel maps the configured log level name to a slog level.
func parseLevel(name string) slog.Level {
	switch name {
	case "trace":
		return logging.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
