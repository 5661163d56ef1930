// Package logger exposes the application's structured logger.  A single
// zap logger is initialised at startup and shared by the HTTP error
// boundary, the expiry sweeper and the queue publisher.
package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide logger.  Init must be called once from main
// before any other package uses it; the zero value is a no-op logger so
// tests that never call Init stay quiet.
var Log = zap.NewNop()

// Init replaces the no-op logger with a real one.  In "dev" the
// development config is used (human-readable output, debug level);
// otherwise the JSON production config.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "dev" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes buffered log entries.  Intended to be deferred from main.
func Sync() {
	_ = Log.Sync()
}
