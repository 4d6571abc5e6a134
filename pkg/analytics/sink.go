package analytics

import "github.com/sirupsen/logrus"

// DiagnosticSink receives single-line messages about contained failures
type DiagnosticSink interface {
	Report(message string)
}

// DiagnosticFunc adapts a function to a DiagnosticSink
type DiagnosticFunc func(message string)

// Report calls f(message)
func (f DiagnosticFunc) Report(message string) {
	f(message)
}

// LogSink reports diagnostics as warnings on logger
func LogSink(logger logrus.FieldLogger) DiagnosticSink {
	return DiagnosticFunc(func(message string) {
		logger.Warn(message)
	})
}
