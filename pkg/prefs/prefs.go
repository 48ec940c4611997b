// Package prefs is the typed dispatcher layered over a core.Store.
//
// Save classifies a value into a storage kind and writes it as a native
// primitive, as a fanned-out sequence (length under the key, elements under
// key+"0", key+"1", ...) or as a record encoded by the configured codec.
// Load and Delete dispatch on a caller-supplied core.Type, since the store
// keeps no type metadata.
//
// Every call has a strict form returning errors and a Safe form that
// collapses any failure to "no value" or a no-op.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/eprefs/pkg/codec"
	"github.com/aretw0/eprefs/pkg/core"
)

// CommitMode selects how a write reaches the store.
type CommitMode int

const (
	// CommitSync blocks until the store reports the write durable.
	CommitSync CommitMode = iota
	// CommitAsync hands the write to the store and returns immediately.
	CommitAsync
)

func (m CommitMode) String() string {
	if m == CommitAsync {
		return "async"
	}
	return "sync"
}

// ParseCommitMode maps "sync"/"commit" and "async"/"apply" to a CommitMode.
func ParseCommitMode(s string) (CommitMode, error) {
	switch s {
	case "", "sync", "commit":
		return CommitSync, nil
	case "async", "apply":
		return CommitAsync, nil
	}
	return CommitSync, fmt.Errorf("unknown commit mode %q", s)
}

// Prefs dispatches typed values onto a single namespace store.
type Prefs struct {
	store     core.Store
	codec     codec.Codec
	logger    *slog.Logger
	mode      CommitMode
	namespace string
}

// Option configures a Prefs.
type Option func(*Prefs)

// WithCodec selects the record codec. One codec serves every call of the instance.
func WithCodec(c codec.Codec) Option {
	return func(p *Prefs) {
		if c != nil {
			p.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prefs) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCommitMode sets the default commit mode for writes.
func WithCommitMode(mode CommitMode) Option {
	return func(p *Prefs) {
		p.mode = mode
	}
}

// WithNamespace records the namespace name for logs and introspection.
func WithNamespace(name string) Option {
	return func(p *Prefs) {
		p.namespace = name
	}
}

// New creates a dispatcher over store.
func New(store core.Store, opts ...Option) *Prefs {
	p := &Prefs{
		store:  store,
		codec:  codec.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "prefs", "namespace", p.namespace)
	return p
}

// Store returns the underlying store.
func (p *Prefs) Store() core.Store {
	return p.store
}

// Codec returns the record codec in use.
func (p *Prefs) Codec() codec.Codec {
	return p.codec
}

// WriteOption adjusts a single write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	mode CommitMode
}

// Sync makes the write block until committed.
func Sync() WriteOption {
	return func(c *writeConfig) { c.mode = CommitSync }
}

// Async makes the write fire-and-forget.
func Async() WriteOption {
	return func(c *writeConfig) { c.mode = CommitAsync }
}

func (p *Prefs) finish(ctx context.Context, ed core.Editor, opts []WriteOption) error {
	cfg := writeConfig{mode: p.mode}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mode == CommitAsync {
		ed.Apply()
		return nil
	}
	if err := ed.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Contains reports whether key is present in the store.
func (p *Prefs) Contains(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, core.ErrInvalidKey
	}
	return p.store.Contains(ctx, key)
}

// Keys returns the sorted stored keys matching a doublestar pattern.
// An empty pattern matches every key. Fan-out sub-keys are ordinary keys and
// are listed too.
func (p *Prefs) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	all, err := p.store.All(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		if pattern != "" {
			ok, err := doublestar.Match(pattern, k)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch observes changes in the store if supported.
func (p *Prefs) Watch(ctx context.Context) (<-chan core.Event, error) {
	w, ok := p.store.(core.Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}
	return w.Watch(ctx)
}

// Close releases the store if it holds resources.
func (p *Prefs) Close() error {
	if c, ok := p.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
