package logging

import (
	configfile "github.com/goliatone/go-configfile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap logs config events through logger using the same levels as
// NewZerolog. A nil logger discards events.
func NewZap(logger *zap.Logger) configfile.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return configfile.LoggerFunc(func(e configfile.Event) {
		fields := []zap.Field{zap.String(FieldEvent, string(e.Kind))}
		if e.Config != "" {
			fields = append(fields, zap.String(FieldConfig, e.Config))
		}
		if e.Path != "" {
			fields = append(fields, zap.String(FieldPath, e.Path))
		}
		if e.Key != "" {
			fields = append(fields, zap.String(FieldKey, e.Key))
		}
		if e.Line > 0 {
			fields = append(fields, zap.Int(FieldLine, e.Line))
		}
		if e.Text != "" {
			fields = append(fields, zap.String(FieldText, e.Text))
		}
		if e.Engine != "" {
			fields = append(fields, zap.String(FieldEngine, e.Engine))
		}
		if e.Expr != "" {
			fields = append(fields, zap.String(FieldExpr, e.Expr))
		}
		if e.Keys > 0 {
			fields = append(fields, zap.Int(FieldKeys, e.Keys))
		}
		if e.Duration > 0 {
			fields = append(fields, zap.Duration(FieldDuration, e.Duration))
		}
		if e.Err != nil {
			fields = append(fields, zap.Error(e.Err))
		}

		lvl := zapcore.DebugLevel
		switch level(e) {
		case levelError:
			lvl = zapcore.ErrorLevel
		case levelWarn:
			lvl = zapcore.WarnLevel
		}
		if ce := logger.Check(lvl, message(string(e.Kind))); ce != nil {
			ce.Write(fields...)
		}
	})
}
