package configfile

const (
	// Recommended priorities for common layering patterns. Higher numbers win.
	ScopePrioritySystem = 100
	ScopePrioritySite   = 200
	ScopePriorityHost   = 300
	ScopePriorityUser   = 400
)

// SystemSiteHostUser merges the canonical four-layer stack
// (system, site, host, user). Nil layers are skipped.
func SystemSiteHostUser(system, site, host, user *Config, opts ...Option) (*Config, error) {
	candidates := []struct {
		scope Scope
		cfg   *Config
	}{
		{NewScope("user", ScopePriorityUser, WithScopeLabel("User")), user},
		{NewScope("host", ScopePriorityHost, WithScopeLabel("Host")), host},
		{NewScope("site", ScopePrioritySite, WithScopeLabel("Site")), site},
		{NewScope("system", ScopePrioritySystem, WithScopeLabel("System Defaults")), system},
	}

	layers := make([]Layer, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.cfg == nil {
			continue
		}
		layers = append(layers, NewLayer(candidate.scope, candidate.cfg, WithSnapshotID(candidate.cfg.Source())))
	}
	stack, err := NewStack(layers...)
	if err != nil {
		return nil, err
	}
	return stack.Merge(opts...)
}
