package diag

import "go.uber.org/zap"

// MirrorTo writes every Message in d to logger at a verbosity matching its
// Level, tagging each entry with its context. It is a one-way bridge: the
// Diagnostics slice remains the source of truth callers inspect
// programmatically, while the *zap.Logger output is for humans watching
// process logs.
func (d Diagnostics) MirrorTo(logger *zap.Logger) {
	for _, m := range d {
		fields := []zap.Field{zap.String("context", m.Context)}
		switch m.Level {
		case LevelDebug:
			logger.Debug(m.Text, fields...)
		case LevelInformation:
			logger.Info(m.Text, fields...)
		case LevelWarning:
			logger.Warn(m.Text, fields...)
		case LevelCritical, LevelFatal:
			logger.Error(m.Text, fields...)
		}
	}
}
