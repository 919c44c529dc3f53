package pulse

import "go.uber.org/zap"

// pulseLogger wraps zap.SugaredLogger with lifecycle markers for the pool:
// Starting (✿) at debug level when workers open, Closing (❀) at warn level
// when queued work is thrown away.
type pulseLogger struct {
	*zap.SugaredLogger
}

// Starting logs an opening (✿) event
func (l pulseLogger) Starting(msg string, keysAndValues ...interface{}) {
	l.Debugw("✿ "+msg, keysAndValues...)
}

// Closing logs a closing (❀) event
func (l pulseLogger) Closing(msg string, keysAndValues ...interface{}) {
	l.Warnw("❀ "+msg, keysAndValues...)
}
