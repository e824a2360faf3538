//go:build !js_eval

package configfile

// NewJSEvaluator returns nil unless the module is built with the js_eval tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSSettings(opts)
	return nil
}

// JSEvaluatorAvailable reports whether NewJSEvaluator is usable.
func JSEvaluatorAvailable() bool {
	return false
}
