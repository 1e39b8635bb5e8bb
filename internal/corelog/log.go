// Package corelog centralizes the supervisor's logging call sites on
// top of logrus, mirroring the direct logrus.Errorf/Infof style used
// throughout the retrieved journald-logging code this module is based
// on.
package corelog

import "github.com/sirupsen/logrus"

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logrus.Infof(format, args...)
}

// Warningf logs a recoverable problem: a dropped request, a retried
// read, a saturating counter.
func Warningf(format string, args ...any) {
	logrus.Warningf(format, args...)
}

// Errorf logs a failure that affects one operation but does not stop
// the supervisor: a parse error, a failed spawn attempt, an IPC write
// that had no destination.
func Errorf(format string, args ...any) {
	logrus.Errorf(format, args...)
}

// Debugf logs fine-grained tracing, off by default.
func Debugf(format string, args ...any) {
	logrus.Debugf(format, args...)
}

// Fields is a shorthand for logrus.Fields, used at call sites that
// want structured key/value context instead of message interpolation.
type Fields = logrus.Fields

// WithFields starts a structured log entry.
func WithFields(fields Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}
