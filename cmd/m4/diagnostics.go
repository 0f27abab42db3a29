package main

import (
	"fmt"
	"io"
	"os"

	"github.com/m4go/m4/runtime/engine"
)

// ANSI color codes kept local rather than imported from a formatting
// library: two escape sequences don't earn a dependency of their own
// (see DESIGN.md).
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
)

// colorize wraps text in an ANSI color code if useColor is set, the same
// shape as the teacher's own Colorize helper (cli/colors.go).
func colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + colorReset
}

// shouldUseColor respects --no-color and NO_COLOR with the same
// precedence the teacher's ShouldUseColor uses.
func shouldUseColor(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := os.Stdout.Stat()
	return err == nil && (fi.Mode()&os.ModeCharDevice) != 0
}

// printError formats a run error for stderr: a *engine.FatalError gets
// its file:line location printed alongside the message, matching the
// teacher's FormatError dispatch-by-error-type pattern (cli/errors.go)
// without needing a CLIError wrapper type of its own.
func printError(w io.Writer, err error, useColor bool) {
	prefix := colorize("m4: ", colorRed, useColor)
	if fe, ok := err.(*engine.FatalError); ok && fe.At != "" {
		fmt.Fprintf(w, "%s%s: %s\n", prefix, fe.At, fe.Msg)
		return
	}
	fmt.Fprintf(w, "%s%s\n", prefix, err.Error())
}
