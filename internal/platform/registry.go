package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

// Registry opens each namespace once, on first use, and hands out the same
// Prefs afterwards. All namespaces share the registry options.
type Registry struct {
	opts []Option

	mu     sync.Mutex
	spaces map[string]*prefs.Prefs
	closed bool
}

// NewRegistry creates a registry that opens namespaces with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:   opts,
		spaces: make(map[string]*prefs.Prefs),
	}
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it with default
// options on first call.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// SetDefault replaces the process-wide registry. The previous one is not closed.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}

// Get returns the Prefs of namespace, opening it if needed. An empty
// namespace selects core.DefaultNamespace.
func (r *Registry) Get(namespace string) (*prefs.Prefs, error) {
	if namespace == "" {
		namespace = core.DefaultNamespace
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, core.ErrClosed
	}
	if p, ok := r.spaces[namespace]; ok {
		return p, nil
	}

	p, err := Open(namespace, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open namespace %q: %w", namespace, err)
	}
	r.spaces[namespace] = p
	return p, nil
}

// Namespaces returns the sorted names of the opened namespaces.
func (r *Registry) Namespaces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.spaces))
	for name := range r.spaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every opened namespace. The registry cannot be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for name, p := range r.spaces {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %q: %w", name, err))
		}
	}
	clear(r.spaces)
	return errors.Join(errs...)
}

// RegistryState exposes internal state for observability.
type RegistryState struct {
	Closed     bool           `json:"closed"`
	Namespaces map[string]any `json:"namespaces"`
}

// State implements introspection.Introspectable.
func (r *Registry) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := RegistryState{
		Closed:     r.closed,
		Namespaces: make(map[string]any, len(r.spaces)),
	}
	for name, p := range r.spaces {
		state.Namespaces[name] = p.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Registry) ComponentType() string {
	return "registry"
}

var _ introspection.Introspectable = (*Registry)(nil)
var _ introspection.Component = (*Registry)(nil)
