// Package wlog provides a nil-safe logging interface for the
// warn-and-continue paths of the codec (oversized bit budgets,
// clamped SPIHT header fields). It deliberately depends on no concrete
// logging library: callers wire in whatever they already use.
package wlog

import "fmt"

// Logger is satisfied by *log.Logger and most structured loggers via a
// small adapter. A nil Logger disables all output.
type Logger interface {
	Printf(format string, args ...any)
}

// Warn writes v to l using fmt.Sprint formatting. A nil l is a no-op.
func Warn(l Logger, v ...any) {
	if l == nil {
		return
	}
	l.Printf("%s", fmt.Sprint(v...))
}

// Warnf writes a formatted message to l. A nil l is a no-op.
func Warnf(l Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.Printf(format, args...)
}
