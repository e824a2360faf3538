// Package logging adapts configfile events to structured loggers.
package logging

// Field names shared by every adapter.
const (
	FieldEvent    = "event"
	FieldConfig   = "config"
	FieldPath     = "path"
	FieldKey      = "key"
	FieldLine     = "line"
	FieldText     = "text"
	FieldEngine   = "engine"
	FieldExpr     = "expr"
	FieldKeys     = "keys"
	FieldDuration = "duration"
)

func message(kind string) string {
	return "configfile " + kind
}
