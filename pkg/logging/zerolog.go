package logging

import (
	configfile "github.com/goliatone/go-configfile"
	"github.com/rs/zerolog"
)

// NewZerolog logs config events through logger. Failures are logged at
// error level, skipped lines and malformed values at warn, the rest at debug.
func NewZerolog(logger zerolog.Logger) configfile.Logger {
	return configfile.LoggerFunc(func(e configfile.Event) {
		entry := zerologEntry(logger, e)
		entry = entry.Str(FieldEvent, string(e.Kind))
		if e.Config != "" {
			entry = entry.Str(FieldConfig, e.Config)
		}
		if e.Path != "" {
			entry = entry.Str(FieldPath, e.Path)
		}
		if e.Key != "" {
			entry = entry.Str(FieldKey, e.Key)
		}
		if e.Line > 0 {
			entry = entry.Int(FieldLine, e.Line)
		}
		if e.Text != "" {
			entry = entry.Str(FieldText, e.Text)
		}
		if e.Engine != "" {
			entry = entry.Str(FieldEngine, e.Engine)
		}
		if e.Expr != "" {
			entry = entry.Str(FieldExpr, e.Expr)
		}
		if e.Keys > 0 {
			entry = entry.Int(FieldKeys, e.Keys)
		}
		if e.Duration > 0 {
			entry = entry.Dur(FieldDuration, e.Duration)
		}
		if e.Err != nil {
			entry = entry.Err(e.Err)
		}
		entry.Msg(message(string(e.Kind)))
	})
}

func zerologEntry(logger zerolog.Logger, e configfile.Event) *zerolog.Event {
	switch level(e) {
	case levelError:
		return logger.Error()
	case levelWarn:
		return logger.Warn()
	default:
		return logger.Debug()
	}
}
