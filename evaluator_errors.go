package configfile

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError reports a failed expression together with where it ran:
// the engine, the scope label and the config it was evaluated against.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	// Config and Source name the evaluated config and the file it was
	// loaded from, when known.
	Config string
	Source string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "configfile: %s evaluator", e.Engine)
	if e.Expr == "" {
		b.WriteString(" expr=<empty>")
	} else {
		fmt.Fprintf(&b, " expr=%q", e.Expr)
	}
	fmt.Fprintf(&b, " scope=%s", e.Scope)
	if e.Config != "" && e.Config != e.Scope {
		fmt.Fprintf(&b, " config=%s", e.Config)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " source=%s", e.Source)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// wrapEvaluatorError tags setup failures with the engine. Errors the
// package already describes pass through unchanged.
func wrapEvaluatorError(engine string, err error) error {
	switch {
	case err == nil:
		return nil
	case ownError(err):
		return err
	default:
		return fmt.Errorf("configfile: %s evaluator: %w", engine, err)
	}
}

// wrapEvaluationError attaches engine, expression and scope to err, filling
// only the fields an existing EvaluationError leaves empty.
func wrapEvaluationError(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, Scope: scope, Err: err}
	}
	fillEmpty(&evalErr.Engine, engine)
	fillEmpty(&evalErr.Expr, expr)
	fillEmpty(&evalErr.Scope, scope)
	return evalErr
}

// attachConfig records the evaluated config on an EvaluationError.
func attachConfig(err error, c *Config) error {
	var evalErr *EvaluationError
	if c == nil || !errors.As(err, &evalErr) {
		return err
	}
	fillEmpty(&evalErr.Config, c.name)
	fillEmpty(&evalErr.Source, c.source)
	return err
}

func fillEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func ownError(err error) bool {
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return true
	}
	for _, known := range []error{errEmptyExpression, ErrNoEvaluator, ErrFunctionNotFound, ErrKeyNotFound, ErrMalformedNumber, ErrMalformedValue} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
