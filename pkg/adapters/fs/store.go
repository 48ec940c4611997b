// Package fs implements core.Store over a single file per namespace.
//
// The whole namespace is kept in memory and rewritten atomically on every
// commit. External edits to the file are picked up when watching is enabled.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/eprefs/pkg/core"
)

// Config holds the configuration for the filesystem store.
type Config struct {
	Dir       string
	Namespace string
	// Format is the file extension selecting the serializer: ".json" (default), ".yaml" or ".yml".
	Format string
	// Watch reloads the file when it changes outside this process.
	Watch        bool
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Store persists a namespace as <Dir>/<Namespace><Format>.
type Store struct {
	config     Config
	path       string
	serializer Serializer
	logger     *slog.Logger

	// writeMu orders file writes; it is always taken before mu.
	writeMu sync.Mutex
	mu      sync.RWMutex
	values  map[string]any
	pending int
	commits int
	reloads int
	closed  bool

	subMu   sync.Mutex
	subs    map[int]chan core.Event
	nextSub int

	persistWG sync.WaitGroup
	watchWG   sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// Open loads (or creates) the namespace file described by cfg.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("fs store: directory is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = core.DefaultNamespace
	}
	if strings.ContainsAny(cfg.Namespace, `/\`) || strings.Contains(cfg.Namespace, "..") {
		return nil, fmt.Errorf("fs store: invalid namespace %q", cfg.Namespace)
	}
	if cfg.Format == "" {
		cfg.Format = ".json"
	}
	if !strings.HasPrefix(cfg.Format, ".") {
		cfg.Format = "." + cfg.Format
	}
	serializer, ok := DefaultSerializers()[strings.ToLower(cfg.Format)]
	if !ok {
		return nil, fmt.Errorf("fs store: unsupported format %q", cfg.Format)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", cfg.Dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		config:     cfg,
		path:       filepath.Join(cfg.Dir, cfg.Namespace+cfg.Format),
		serializer: serializer,
		logger:     cfg.Logger.With("component", "fs-store", "namespace", cfg.Namespace),
		subs:       make(map[int]chan core.Event),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	values, err := s.read()
	if err != nil {
		cancel()
		return nil, err
	}
	s.values = values

	if cfg.Watch {
		if err := s.startWatcher(); err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

// Path returns the namespace file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	values, err := s.serializer.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) write(values map[string]any) error {
	data, err := s.serializer.Serialize(values)
	if err != nil {
		return fmt.Errorf("failed to serialize namespace: %w", err)
	}
	return writeFileAtomic(s.path, data, 0o644)
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

// commit writes the batch to disk before it becomes visible in memory.
func (s *Store) commit(ctx context.Context, b *core.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return core.ErrClosed
	}
	next := maps.Clone(s.values)
	events := b.ApplyTo(next)
	if err := s.write(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = next
	s.commits++
	s.mu.Unlock()

	s.publish(events)
	return nil
}

// apply makes the batch visible immediately and persists it in the background.
func (s *Store) apply(b *core.Batch) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("apply after close dropped", "mutations", b.Len())
		return
	}
	events := b.ApplyTo(s.values)
	s.pending++
	s.persistWG.Add(1)
	s.mu.Unlock()

	s.publish(events)

	lifecycle.Go(s.ctx, func(ctx context.Context) error {
		defer s.persistWG.Done()
		return s.flush()
	}, lifecycle.WithErrorHandler(s.handleError))
}

// flush writes the latest in-memory snapshot, so out-of-order flushes never
// leave an older state on disk.
func (s *Store) flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snapshot := maps.Clone(s.values)
	s.mu.Unlock()

	err := s.write(snapshot)

	s.mu.Lock()
	s.pending--
	if err == nil {
		s.commits++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("background persist failed", "path", s.path, "error", err)
		return err
	}
	return nil
}

func (s *Store) handleError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

// Close stops the watcher, waits for background writes and closes every
// subscriber channel.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.persistWG.Wait()
	s.cancel()
	close(s.done)
	s.watchWG.Wait()

	s.subMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subMu.Unlock()
	return nil
}

type editor struct {
	core.Batch
	store *Store
}

func (e *editor) Commit(ctx context.Context) error {
	defer e.Reset()
	return e.store.commit(ctx, &e.Batch)
}

func (e *editor) Apply() {
	e.store.apply(&e.Batch)
	e.Reset()
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
