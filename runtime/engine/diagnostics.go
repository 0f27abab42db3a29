package engine

import (
	"fmt"
	"log/slog"
	"os"
)

// StderrDiagnostics is the default Diagnostics sink: warnings go to
// slog (gated the same way the lexer's debug logging is, so both can be
// silenced or redirected together), fatal errors panic with *FatalError,
// which Run recovers and returns as a normal Go error.
type StderrDiagnostics struct {
	logger *slog.Logger
}

// NewStderrDiagnostics builds the default sink, logging to os.Stderr.
func NewStderrDiagnostics() *StderrDiagnostics {
	return &StderrDiagnostics{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

// Warn implements Diagnostics.
func (d *StderrDiagnostics) Warn(at, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if at != "" {
		d.logger.Warn(msg, "at", at)
		return
	}
	d.logger.Warn(msg)
}

// Fatal implements Diagnostics: raises a *FatalError via panic, caught by
// Run's top-level recover so the engine never calls os.Exit itself.
func (d *StderrDiagnostics) Fatal(at, format string, args ...any) {
	panic(&FatalError{At: at, Msg: fmt.Sprintf(format, args...)})
}
