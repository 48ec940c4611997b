package sqlite

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path      string `json:"path"`
	Namespace string `json:"namespace"`
	Commits   int64  `json:"commits"`
	Failed    int64  `json:"failed"`
	Queued    int    `json:"queued"`
	Closed    bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	return StoreState{
		Path:      s.path,
		Namespace: s.namespace,
		Commits:   s.commits.Load(),
		Failed:    s.failed.Load(),
		Queued:    len(s.queue),
		Closed:    closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
