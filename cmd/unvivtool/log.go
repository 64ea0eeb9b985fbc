package main

import (
	"fmt"
	"io"
	"os"

	"github.com/distr1/vivtool/internal/viv"
	"github.com/mattn/go-isatty"
)

// stderrLogger implements viv.Logger by writing each warning to stderr
// with fmt.Fprintf. The teacher never reaches for a structured-logging
// library for its own diagnostics, so neither do we.
type stderrLogger struct {
	w      io.Writer
	prefix string
}

// newLogger returns a viv.Logger for -v, or a nil interface when quiet —
// returning a typed nil *stderrLogger here would defeat viv.warnf's
// "nil Logger discards everything" contract, since a nil pointer wrapped
// in a non-nil interface value is not itself == nil.
func newLogger(verbose bool) viv.Logger {
	if !verbose {
		return nil
	}
	prefix := ""
	if isatty.IsTerminal(os.Stderr.Fd()) {
		prefix = "\x1b[33m" // yellow, reset per-line below
	}
	return &stderrLogger{w: os.Stderr, prefix: prefix}
}

func (l *stderrLogger) Warnf(format string, args ...interface{}) {
	if l.prefix != "" {
		fmt.Fprintf(l.w, "%swarning: %s\x1b[0m\n", l.prefix, fmt.Sprintf(format, args...))
		return
	}
	fmt.Fprintf(l.w, "warning: %s\n", fmt.Sprintf(format, args...))
}
