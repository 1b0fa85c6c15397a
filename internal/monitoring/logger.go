package monitoring

import "log"

// Verbosity levels for the package logger. Info is always emitted; Debug
// and Trace are gated by the level set via SetVerbosity.
const (
	LevelInfo = iota
	LevelDebug
	LevelTrace
)

var level = LevelInfo

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or
// mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbosity sets the gating level for Debugf and Tracef.
func SetVerbosity(l int) { level = l }

// Debugf logs per-computation progress (one line per transform group, cache
// hits, event reloads). Emitted at LevelDebug and above.
func Debugf(format string, v ...interface{}) {
	if level >= LevelDebug {
		Logf("DEBUG "+format, v...)
	}
}

// Tracef logs fine-grained values (parsed groups, unit conversions, scale
// factors). Emitted only at LevelTrace.
func Tracef(format string, v ...interface{}) {
	if level >= LevelTrace {
		Logf("TRACE "+format, v...)
	}
}
