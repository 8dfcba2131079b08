// Package telemetry wires the error reporting hook to Sentry. Disabled by
// default; nothing leaves the process unless explicitly enabled in config.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/errors"
)

// sessionID identifies this process run in error reports, so events from
// one session group together without identifying the installation.
var sessionID = uuid.NewString()

// Init installs the Sentry reporter when enabled. The returned function
// flushes and uninstalls; safe to call even when telemetry is disabled.
func Init(settings *conf.Settings) (func(), error) {
	if !settings.Sentry.Enabled || settings.Sentry.DSN == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, fmt.Errorf("telemetry: sentry init failed: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("session_id", sessionID)
		if settings.Main.Name != "" {
			scope.SetTag("node_name", settings.Main.Name)
		}
	})

	errors.SetReporter(&sentryReporter{})
	return func() {
		errors.SetReporter(nil)
		sentry.Flush(2 * time.Second)
	}, nil
}

type sentryReporter struct{}

// ReportError forwards an enhanced error with its component and category tags.
func (r *sentryReporter) ReportError(ee *errors.EnhancedError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", ee.GetCategory())
		if ctx := ee.GetContext(); ctx != nil {
			scope.SetContext("error_context", sentry.Context(ctx))
		}
		sentry.CaptureException(ee.Err)
	})
}
