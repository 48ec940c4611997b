// Package memory implements core.Store over an in-process map.
// It is the reference adapter for tests and ephemeral namespaces.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/eprefs/pkg/core"
)

// Store keeps every key of a namespace in memory.
type Store struct {
	name    string
	mu      sync.RWMutex
	values  map[string]any
	commits int
}

// New creates an empty store for the given namespace.
func New(namespace string) *Store {
	return &Store{
		name:   namespace,
		values: make(map[string]any),
	}
}

func (s *Store) Contains(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok, nil
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	return get(s, key, def)
}

func (s *Store) GetInt(ctx context.Context, key string, def int32) (int32, error) {
	return get(s, key, def)
}

func (s *Store) GetLong(ctx context.Context, key string, def int64) (int64, error) {
	return get(s, key, def)
}

func (s *Store) GetFloat(ctx context.Context, key string, def float32) (float32, error) {
	return get(s, key, def)
}

func (s *Store) GetString(ctx context.Context, key string, def string) (string, error) {
	return get(s, key, def)
}

func get[T core.Native](s *Store, key string, def T) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Lookup(s.values, key, def)
}

func (s *Store) All(ctx context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values), nil
}

func (s *Store) Edit() core.Editor {
	return &editor{store: s}
}

func (s *Store) apply(b *core.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ApplyTo(s.values)
	s.commits++
}

type editor struct {
	core.Batch
	store *Store
}

func (e *editor) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.store.apply(&e.Batch)
	e.Reset()
	return nil
}

// Apply behaves like Commit for the memory store.
func (e *editor) Apply() {
	e.store.apply(&e.Batch)
	e.Reset()
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Namespace string `json:"namespace"`
	Keys      int    `json:"keys"`
	Commits   int    `json:"commits"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Namespace: s.name,
		Keys:      len(s.values),
		Commits:   s.commits,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var _ core.Store = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
