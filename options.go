package configfile

import "github.com/goliatone/go-configfile/pkg/activity"

// Option configures how a Config is loaded and how it behaves afterwards.
// Options carry over to every Config derived from it.
type Option func(*options)

type options struct {
	name          string
	logger        Logger
	strict        bool
	duplicates    DuplicatePolicy
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	activityHooks activity.Hooks
	activity      activity.Config
}

func applyOptions(opts []Option) options {
	cfg := options{
		logger:     noopLogger{},
		duplicates: DuplicateAppend,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithName labels the config. Sub-configs are named after their prefix
// relative to this name.
func WithName(name string) Option {
	return func(cfg *options) {
		cfg.name = name
	}
}

// WithStrict makes the parser fail on lines that are neither blank, a comment
// nor an assignment. By default such lines are skipped and logged.
func WithStrict(strict bool) Option {
	return func(cfg *options) {
		cfg.strict = strict
	}
}

// WithDuplicateKeys selects the policy for keys that appear more than once.
func WithDuplicateKeys(policy DuplicatePolicy) Option {
	return func(cfg *options) {
		cfg.duplicates = policy
	}
}

// WithEvaluator configures the evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *options) {
		cfg.evaluator = e
	}
}

// New returns an empty Config.
func New(opts ...Option) *Config {
	return newConfig(applyOptions(opts))
}

func newConfig(o options) *Config {
	c := &Config{
		name:  o.name,
		index: map[string]int{},
		opts:  o,
	}
	c.emitter = activity.NewEmitter(o.activityHooks, o.activity)
	return c
}

func (c *Config) evaluator() Evaluator {
	return c.opts.evaluator
}

func (c *Config) withEvaluator(e Evaluator) {
	c.opts.evaluator = e
}

func (c *Config) programCache() ProgramCache {
	return c.opts.programCache
}

func (c *Config) functionRegistry() *FunctionRegistry {
	return c.opts.functions
}
