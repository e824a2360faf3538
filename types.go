package configfile

import (
	"time"

	"github.com/goliatone/go-configfile/layering"
	"github.com/goliatone/go-configfile/pkg/activity"
)

// Config is an ordered set of dotted keys mapped to raw string values.
// Values are kept exactly as read; typed accessors coerce them on demand.
//
// A Config is an independent value. Sub-configs, clones and merged stacks own
// their storage, so mutating one never changes another. A single Config is not
// safe for concurrent mutation.
type Config struct {
	name    string
	source  string
	entries []layering.Entry
	index   map[string]int

	opts    options
	emitter *activity.Emitter
}

// DuplicatePolicy decides what happens when the parser sees a key twice.
type DuplicatePolicy int

const (
	// DuplicateAppend accumulates values; scalar reads return the last one.
	DuplicateAppend DuplicatePolicy = iota
	// DuplicateReplace keeps only the last value.
	DuplicateReplace
	// DuplicateReject fails the load with ErrDuplicateKey.
	DuplicateReject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateAppend:
		return "append"
	case DuplicateReplace:
		return "replace"
	case DuplicateReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot  any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	Scope     Scope
	ScopeName string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) scopeLabel() string {
	if ctx.Scope.Name != "" {
		return ctx.Scope.Name
	}
	if ctx.ScopeName != "" {
		return ctx.ScopeName
	}
	return "root"
}

func (ctx RuleContext) scopeBinding() map[string]any {
	if binding := scopeToBinding(ctx.Scope); binding != nil {
		return binding
	}
	if ctx.ScopeName == "" {
		return nil
	}
	return map[string]any{"name": ctx.ScopeName}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

func scopeToBinding(scope Scope) map[string]any {
	if scope.isZero() {
		return nil
	}
	binding := map[string]any{
		"name":     scope.Name,
		"label":    scope.Label,
		"priority": scope.Priority,
	}
	if len(scope.Metadata) > 0 {
		binding["metadata"] = copyMetadata(scope.Metadata)
	}
	return binding
}
