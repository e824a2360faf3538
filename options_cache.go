package configfile

// ProgramCache stores compiled expression programs. Keys are prefixed with
// the engine name so a single cache can serve several evaluators.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache shares cache with the default expr evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *options) {
		cfg.programCache = cache
	}
}

// cacheKey scopes a compiled program to its engine and to the signature of
// whatever else the engine compiled into it, such as declared variables or
// registered function names.
func cacheKey(engine, signature, expression string) string {
	if signature == "" {
		return engine + ":" + expression
	}
	return engine + "[" + signature + "]:" + expression
}
