// Package sentry reports failed runs and panics to Sentry.
package sentry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dowjanes/coaching-dashboard/pkg/board"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
}

// Init initializes the global Sentry client. An empty DSN disables
// reporting and every capture becomes a no-op.
func Init(cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		logger.Debug("Sentry DSN not configured - error tracking disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		ServerName:  cfg.ServerName,
		BeforeSend:  scrubEvent,
	})
	if err != nil {
		logger.Error("Failed to initialize Sentry", "error", err)
		return fmt.Errorf("sentry init: %w", err)
	}

	logger.Info("Sentry initialized", "environment", cfg.Environment, "release", cfg.Release)
	return nil
}

// scrubEvent drops credentials. Calendar and CRM tokens travel in the
// Authorization header.
func scrubEvent(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if event.Request != nil && event.Request.Headers != nil {
		delete(event.Request.Headers, "Authorization")
		delete(event.Request.Headers, "Cookie")
	}
	return event
}

// CaptureException captures err with extra context scoped to this event only
func CaptureException(err error, context map[string]interface{}, logger *slog.Logger) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range context {
			scope.SetContext(key, sentry.Context(map[string]interface{}{
				"value": value,
			}))
		}
		sentry.CaptureException(err)
	})

	if logger != nil {
		logger.Debug("Exception captured in Sentry", "error", err.Error())
	}
}

// CommitHook reports failed board refreshes. Successful commits are ignored.
func CommitHook(logger *slog.Logger) board.CommitHook {
	return func(ctx context.Context, snapshot board.Snapshot, runErr error) {
		if runErr == nil {
			return
		}

		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("run_id", snapshot.RunID)
			scope.SetTag("date", snapshot.Date)
			scope.SetContext("refresh", sentry.Context{
				"generation":  snapshot.Generation,
				"started_at":  snapshot.StartedAt,
				"duration_ms": snapshot.CompletedAt.Sub(snapshot.StartedAt).Milliseconds(),
			})
			sentry.CaptureException(runErr)
		})

		if logger != nil {
			logger.Debug("Refresh failure captured in Sentry", "run_id", snapshot.RunID)
		}
	}
}

// Flush waits for queued events to be sent. Call before the process exits.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// RecoverAndCapture recovers from a panic and captures it in Sentry, then
// re-panics. Use with defer.
func RecoverAndCapture(logger *slog.Logger) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", r)
		}
		CaptureException(err, nil, logger)
		Flush(2 * time.Second)
		panic(r)
	}
}
