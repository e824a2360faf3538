package configfile

// jsSettings collects JSEvaluatorOption values. It lives outside the build
// tagged file so the options exist whether or not goja is compiled in.
type jsSettings struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsSettings)

// JSWithProgramCache shares cache with the JS evaluator. Compiled scripts do
// not depend on the registry, so JS keys carry no function signature.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(s *jsSettings) {
		s.cache = cache
	}
}

// JSWithFunctionRegistry installs the registry's functions as globals, plus
// call(name, ...args). Several registries merge.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(s *jsSettings) {
		if registry == nil {
			return
		}
		s.registry = s.registry.Clone().merge(registry)
	}
}

// JSWithConfigFunctions installs the config helpers, as in
// getint(config, "server.port").
func JSWithConfigFunctions() JSEvaluatorOption {
	return func(s *jsSettings) {
		s.registry = withConfigFunctions(s.registry)
	}
}

func newJSSettings(opts []JSEvaluatorOption) jsSettings {
	var s jsSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
