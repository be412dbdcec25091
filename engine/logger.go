package engine

import "go.uber.org/zap"

func scopedLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.With(zap.String("component", "engine"))
}

// Logger returns the engine's logger. It is a no-op logger unless
// Config.Logger was set.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}
