package scheduler

import "github.com/rs/zerolog"

// ZerologLogger adapts Logger onto zerolog, the production backend wired by
// the host package's WithLogger option.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: l}
}

func (z *ZerologLogger) IsEnabled(level Level) bool {
	return z.logger.GetLevel() <= zerologLevel(level)
}

func (z *ZerologLogger) Log(e Entry) {
	ev := z.logger.WithLevel(zerologLevel(e.Level))
	if e.Category != "" {
		ev = ev.Str("category", e.Category)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	if !e.Timestamp.IsZero() {
		ev = ev.Time("ts", e.Timestamp)
	}
	ev.Msg(e.Message)
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
