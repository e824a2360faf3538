package configfile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-configfile/layering"
	"github.com/goliatone/go-configfile/pkg/activity"
)

// Scope models a named precedence bucket (system, site, host, user, etc.).
// Higher priority values represent stronger layers.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: copyMetadata(s.Metadata),
	}
}

func (s Scope) isZero() bool {
	return s.Name == "" && s.Label == "" && s.Priority == 0 && len(s.Metadata) == 0
}

// Layer pairs a scope with the config captured for it.
type Layer struct {
	Scope      Scope
	Config     *Config
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithSnapshotID sets the snapshot identifier used for tracing and auditing.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer holding its own copy of cfg. A nil cfg is an
// empty layer.
func NewLayer(scope Scope, cfg *Config, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:  scope.clone(),
		Config: cfg.Clone(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&layer)
		}
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("configfile: scope name must be provided")
	// ErrDuplicateScopeName indicates NewStack received two layers with the
	// same scope name.
	ErrDuplicateScopeName = errors.New("configfile: scope names must be unique")
	// ErrPriorityOrder indicates NewStack found equal priorities.
	ErrPriorityOrder = errors.New("configfile: scope priorities must be strictly ordered")
	// ErrEmptyStack indicates Merge was called on a stack without layers.
	ErrEmptyStack = errors.New("configfile: stack must include at least one layer")
)

// Stack is an immutable set of layers ordered from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so that the highest priority comes
// first.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := cloneLayer(layer)
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seen[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seen[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge resolves the stack into a single Config: each key takes its values
// from the strongest layer defining it. opts apply to the result, and one
// layer-applied activity event is emitted per layer, weakest first.
func (s *Stack) Merge(opts ...Option) (*Config, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, ErrEmptyStack
	}

	sets := make([][]layering.Entry, len(s.layers))
	for i, layer := range s.layers {
		sets[i] = layer.Config.entries
	}

	merged := newConfig(applyOptions(opts))
	merged.replaceEntries(layering.MergeLayers(sets...))

	for i := len(s.layers) - 1; i >= 0; i-- {
		layer := s.layers[i]
		merged.emit(activity.BuildLayerAppliedEvent(activity.ConfigEventInput{
			Config: merged.name,
			Source: layer.Config.source,
			Keys:   layer.Config.Keys(),
			Scope: activity.ScopeContext{
				Name:       layer.Scope.Name,
				Label:      layer.Scope.Label,
				Priority:   layer.Scope.Priority,
				Metadata:   layer.Scope.Metadata,
				SnapshotID: layer.SnapshotID,
			},
		}))
	}
	return merged, nil
}

// Trace reports how every layer contributes to key, strongest first.
func (s *Stack) Trace(key string) Trace {
	trace := Trace{Key: key}
	if s == nil {
		return trace
	}
	for _, layer := range s.layers {
		values := layer.Config.GetList(key)
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      layer.Scope.clone(),
			SnapshotID: layer.SnapshotID,
			Key:        key,
			Values:     values,
			Found:      values != nil,
		})
	}
	return trace
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Scope:      layer.Scope.clone(),
		Config:     layer.Config.Clone(),
		SnapshotID: layer.SnapshotID,
	}
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
