package configfile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

var (
	// ErrFunctionNotFound reports a call to a name nothing was registered
	// under.
	ErrFunctionNotFound = errors.New("configfile: function not registered")
	// ErrFunctionExists reports a second registration under the same name.
	ErrFunctionExists = errors.New("configfile: function already registered")
	// ErrFunctionName reports a name expressions could not call.
	ErrFunctionName = errors.New("configfile: invalid function name")
)

// Function is a helper callable from rule expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the helpers rule expressions may call. Names are
// case-insensitive and stored lower-cased, which is also how expr and JS
// expressions refer to them. It is safe for concurrent use.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewFunctionRegistry returns an empty registry. ConfigFunctions returns one
// preloaded with the config helpers.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: map[string]Function{}}
}

// Register adds fn under name. The name must be an identifier; registering
// the same name twice fails with ErrFunctionExists.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key, err := functionKey(name)
	if err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("configfile: function %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = map[string]Function{}
	}
	if _, exists := r.funcs[key]; exists {
		return fmt.Errorf("%w: %q", ErrFunctionExists, name)
	}
	r.funcs[key] = fn
	return nil
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[strings.ToLower(name)]
	return ok
}

// Clone returns an independent registry holding the same functions.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	return NewFunctionRegistry().merge(r)
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q (no registry)", ErrFunctionNotFound, name)
	}
	r.mu.RLock()
	fn := r.funcs[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return fn(args...)
}

// Names returns the registered names, lower-cased and sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Signature identifies the set of names a registry exposes. Engines that
// compile function references into programs add it to their cache keys.
func (r *FunctionRegistry) Signature() string {
	return strings.Join(r.Names(), ",")
}

// merge copies every function of src that r does not define yet into r,
// allocating r when nil, and returns it.
func (r *FunctionRegistry) merge(src *FunctionRegistry) *FunctionRegistry {
	if r == nil {
		r = NewFunctionRegistry()
	}
	if src == nil || src == r {
		return r
	}
	src.mu.RLock()
	incoming := make(map[string]Function, len(src.funcs))
	for name, fn := range src.funcs {
		incoming[name] = fn
	}
	src.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = map[string]Function{}
	}
	for name, fn := range incoming {
		if _, exists := r.funcs[name]; !exists {
			r.funcs[name] = fn
		}
	}
	return r
}

func functionKey(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrFunctionName)
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return "", fmt.Errorf("%w: %q", ErrFunctionName, name)
	}
	return strings.ToLower(name), nil
}

// WithFunctionRegistry exposes the functions of registry to the default
// evaluator, next to the config helpers.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *options) {
		if registry == nil {
			return
		}
		cfg.functions = cfg.functions.Clone().merge(registry)
	}
}

// WithCustomFunction registers fn under name for the default evaluator.
// Invalid or duplicate registrations are dropped.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *options) {
		next := cfg.functions.Clone()
		if next == nil {
			next = NewFunctionRegistry()
		}
		if err := next.Register(name, fn); err != nil {
			return
		}
		cfg.functions = next
	}
}
