package fs

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path        string `json:"path"`
	Namespace   string `json:"namespace"`
	Format      string `json:"format"`
	Keys        int    `json:"keys"`
	Commits     int    `json:"commits"`
	Reloads     int    `json:"reloads"`
	Pending     int    `json:"pending"`
	Watching    bool   `json:"watching"`
	Subscribers int    `json:"subscribers"`
	Closed      bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	state := StoreState{
		Path:      s.path,
		Namespace: s.config.Namespace,
		Format:    s.config.Format,
		Keys:      len(s.values),
		Commits:   s.commits,
		Reloads:   s.reloads,
		Pending:   s.pending,
		Watching:  s.config.Watch && !s.closed,
		Closed:    s.closed,
	}
	s.mu.RUnlock()

	s.subMu.Lock()
	state.Subscribers = len(s.subs)
	s.subMu.Unlock()
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
