package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	configfile "github.com/goliatone/go-configfile"
)

// ErrETagMismatch reports an optimistic concurrency conflict in Mutate.
var ErrETagMismatch = errors.New("state: etag mismatch")

// DefaultsScopeName is reserved for the layer ResolveWithDefaults adds.
const DefaultsScopeName = "defaults"

// Ref identifies one persisted config for one domain and scope.
type Ref struct {
	Domain string
	Scope  configfile.Scope
}

// Meta is storage-owned metadata used for tracing and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one config for a single scope reference.
type Store interface {
	Load(ctx context.Context, ref Ref) (cfg *configfile.Config, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, cfg *configfile.Config, meta Meta) (Meta, error)
}

// Resolver loads scoped configs from a Store and merges them into one.
type Resolver struct {
	Store Store
	// Options apply to every merged result.
	Options []configfile.Option
	// Validate, when set, runs on mutated configs before they are saved.
	Validate func(*configfile.Config) error
}

// Mutator edits a config in place.
type Mutator func(*configfile.Config) error

// Identifier returns the canonical storage key: system/<domain> for the
// system scope and <scope>/<id>/<domain> for site, host and user scopes,
// where id comes from the scope metadata key <scope>_id.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	switch r.Scope.Name {
	case "system":
		return fmt.Sprintf("system/%s", r.Domain), nil
	case "site", "host", "user":
		metadataKey := r.Scope.Name + "_id"
		id, _ := r.Scope.Metadata[metadataKey].(string)
		if id == "" {
			return "", fmt.Errorf("state: missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
		}
		return fmt.Sprintf("%s/%s/%s", r.Scope.Name, id, r.Domain), nil
	default:
		return "", fmt.Errorf("state: unsupported scope name %q", r.Scope.Name)
	}
}

// Resolve merges the configs stored for scopes, strongest scope winning.
// Scopes without a stored config are skipped; at least one must exist.
func (r Resolver) Resolve(ctx context.Context, domain string, scopes ...configfile.Scope) (*configfile.Config, error) {
	if err := r.check(domain); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("state: at least one scope is required")
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("state: no layers found for domain %q", domain)
	}
	return r.merge(layers...)
}

// ResolveWithDefaults behaves like Resolve but adds defaults as the weakest
// layer, so the result exists even when nothing is stored.
func (r Resolver) ResolveWithDefaults(ctx context.Context, domain string, defaults *configfile.Config, scopes ...configfile.Scope) (*configfile.Config, error) {
	if err := r.check(domain); err != nil {
		return nil, err
	}

	prioritySet := make(map[int]struct{}, len(scopes))
	minPriority := 0
	if len(scopes) > 0 {
		minPriority = scopes[0].Priority
	}
	for _, scope := range scopes {
		if scope.Name == DefaultsScopeName {
			return nil, fmt.Errorf("state: scope name %q is reserved", DefaultsScopeName)
		}
		prioritySet[scope.Priority] = struct{}{}
		if scope.Priority < minPriority {
			minPriority = scope.Priority
		}
	}

	defaultsPriority := 0
	if len(scopes) > 0 {
		defaultsPriority = minPriority - 1
		for {
			if _, ok := prioritySet[defaultsPriority]; !ok {
				break
			}
			defaultsPriority--
		}
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	defaultsScope := configfile.NewScope(DefaultsScopeName, defaultsPriority, configfile.WithScopeLabel("Defaults"))
	layers = append(layers, configfile.NewLayer(defaultsScope, defaults))
	return r.merge(layers...)
}

// Mutate loads the config for ref (or starts empty), applies fn, validates
// and saves it. A non-empty meta.ETag must match the stored ETag.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*configfile.Config, Meta, error) {
	if err := r.check(ref.Domain); err != nil {
		return nil, Meta{}, err
	}
	if ref.Scope.Name == "" {
		return nil, Meta{}, fmt.Errorf("state: scope name is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	cfg, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	if !ok || cfg == nil {
		cfg = configfile.New(configfile.WithName(ref.Domain))
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(cfg); err != nil {
		return nil, loadedMeta, err
	}
	if r.Validate != nil {
		if err := r.Validate(cfg); err != nil {
			return nil, loadedMeta, err
		}
	}

	savedMeta, err := r.Store.Save(ctx, ref, cfg, mergeMeta(loadedMeta, meta))
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}

	merged, err := r.merge(configfile.NewLayer(ref.Scope, cfg, configfile.WithSnapshotID(savedMeta.SnapshotID)))
	if err != nil {
		return nil, loadedMeta, err
	}
	return merged, savedMeta, nil
}

func (r Resolver) check(domain string) error {
	if r.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return fmt.Errorf("state: domain is required")
	}
	return nil
}

func (r Resolver) loadLayers(ctx context.Context, domain string, scopes []configfile.Scope) ([]configfile.Layer, error) {
	layers := make([]configfile.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		cfg, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, configfile.NewLayer(scope, cfg, configfile.WithSnapshotID(meta.SnapshotID)))
	}
	return layers, nil
}

func (r Resolver) merge(layers ...configfile.Layer) (*configfile.Config, error) {
	stack, err := configfile.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	return stack.Merge(r.Options...)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
