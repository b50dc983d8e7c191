package monitoring

import (
	"io"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogWriters holds the destinations of the three logging streams:
// ops (actionable warnings, errors, data loss), diag (day-to-day
// diagnostics, tuning context) and trace (per-frame telemetry). A nil
// writer disables its stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

// NewLogWriters sends ops to w always, and diag and trace to w when
// enabled.
func NewLogWriters(w io.Writer, diag, trace bool) LogWriters {
	lw := LogWriters{Ops: w}
	if diag {
		lw.Diag = w
	}
	if trace {
		lw.Trace = w
	}
	return lw
}

// Apply hands the writers to each package's SetLogWriters.
func (lw LogWriters) Apply(setters ...func(ops, diag, trace io.Writer)) {
	for _, set := range setters {
		set(lw.Ops, lw.Diag, lw.Trace)
	}
}
