package viv

// Logger receives non-fatal diagnostics produced when an archive is
// damaged but still usable. A nil Logger is valid and discards
// everything, so callers that don't care about verbosity never need a
// no-op implementation.
type Logger interface {
	Warnf(format string, args ...interface{})
}

func warnf(l Logger, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Warnf(format, args...)
}
