package configfile

import (
	"sort"
	"strings"
)

// evaluationBindings builds the variables every engine exposes: now, args,
// metadata, scope (when set) and the snapshot's top-level keys, which by
// default are config, lists and name.
func evaluationBindings(ctx RuleContext) map[string]any {
	bindings := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	if scope := ctx.scopeBinding(); scope != nil {
		bindings["scope"] = scope
	}
	for key, value := range snapshotAsMap(ctx.Snapshot) {
		bindings[key] = value
	}
	return bindings
}

func snapshotAsMap(value any) map[string]any {
	switch snapshot := value.(type) {
	case map[string]any:
		return snapshot
	case *Config:
		return snapshot.Snapshot()
	default:
		return map[string]any{}
	}
}

// bindingSignature identifies the variable set of a snapshot, for engines
// that compile against declared variables.
func bindingSignature(snapshot map[string]any) string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func registryCaller(registry *FunctionRegistry) func(name string, arguments ...any) (any, error) {
	return func(name string, arguments ...any) (any, error) {
		return registry.Call(name, arguments...)
	}
}
