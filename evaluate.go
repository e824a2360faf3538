package configfile

import (
	"errors"
	"time"
)

// ErrNoEvaluator is returned when no evaluator could be resolved.
var ErrNoEvaluator = errors.New("configfile: evaluator not configured")

var errEmptyExpression = errors.New("configfile: expression must not be empty")

// Snapshot exposes the config to evaluators. "config" maps every key to its
// scalar (last) value, "lists" maps every key to all of its values and "name"
// holds the config name.
func (c *Config) Snapshot() map[string]any {
	scalars := make(map[string]any, c.Len())
	lists := make(map[string]any, c.Len())
	if c != nil {
		for _, entry := range c.entries {
			if last, ok := entry.Last(); ok {
				scalars[entry.Key] = last
			}
			values := make([]any, len(entry.Values))
			for i, value := range entry.Values {
				values[i] = value
			}
			lists[entry.Key] = values
		}
	}
	return map[string]any{
		"config": scalars,
		"lists":  lists,
		"name":   c.Name(),
	}
}

// Evaluate runs expr against the config snapshot using the configured
// evaluator, or expr-lang when none is set. The default evaluator also
// exposes the config helpers (see ConfigFunctions) next to any functions
// registered through WithFunctionRegistry or WithCustomFunction.
func (c *Config) Evaluate(expr string) (Response[any], error) {
	return c.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr with ctx. A nil ctx.Snapshot falls back to
// c.Snapshot() and an empty scope name falls back to the config name.
func (c *Config) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, errEmptyExpression
	}
	evaluator, err := c.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = c.Snapshot()
	}
	if ctx.ScopeName == "" {
		ctx.ScopeName = c.name
	}
	ctx = ctx.withDefaults()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	evalErr = attachConfig(wrapEvaluationError(engine, expr, ctx.scopeLabel(), evalErr), c)
	c.log(Event{
		Kind:     EventEvaluate,
		Path:     c.source,
		Engine:   engine,
		Expr:     expr,
		Duration: time.Since(start),
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

func (c *Config) resolveEvaluator() (Evaluator, error) {
	if c == nil {
		return nil, ErrNoEvaluator
	}
	if evaluator := c.evaluator(); evaluator != nil {
		return evaluator, nil
	}
	exprOpts := []ExprEvaluatorOption{ExprWithConfigFunctions()}
	if cache := c.programCache(); cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := c.functionRegistry(); registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	c.withEvaluator(evaluator)
	return evaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if named, ok := e.(interface{ Engine() string }); ok {
			return named.Engine()
		}
		return "custom"
	}
}
