package monitoring

import "log"

// Logf is the package-level diagnostic logger shared by the simulator, the
// store and the HTTP viewer. It defaults to log.Printf; SetLogger replaces it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Prefixed returns a logger that tags each line with "[tag] ". The current
// Logf is resolved on every call, so SetLogger still applies afterwards.
func Prefixed(tag string) func(format string, v ...interface{}) {
	prefix := "[" + tag + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
