// Package sqlite implements core.Store on a SQLite database using the pure Go
// modernc.org/sqlite driver. Several namespaces can share one database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/aretw0/lifecycle"
	_ "modernc.org/sqlite"

	"github.com/aretw0/eprefs/pkg/core"
)

const queueSize = 64

// Config holds the configuration for the SQLite store.
type Config struct {
	Path         string
	Namespace    string
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Store keeps one namespace as rows of the prefs table.
type Store struct {
	db        *sql.DB
	path      string
	namespace string
	logger    *slog.Logger
	onError   func(error)

	mu      sync.RWMutex
	closed  bool
	commits atomic.Int64
	failed  atomic.Int64

	queue  chan writeRequest
	worker sync.WaitGroup
}

// writeRequest is a batch handed to the writer goroutine. done is nil for Apply.
type writeRequest struct {
	ctx       context.Context
	mutations []core.Mutation
	done      chan error
}

// Open creates the database at cfg.Path if needed and prepares the schema.
// Parent directories are created if needed.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = core.DefaultNamespace
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "sqlite-store", "namespace", cfg.Namespace)

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{
		db:        db,
		path:      cfg.Path,
		namespace: cfg.Namespace,
		logger:    logger,
		onError:   cfg.ErrorHandler,
		queue:     make(chan writeRequest, queueSize),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.worker.Add(1)
	lifecycle.Go(context.Background(), func(ctx context.Context) error {
		defer s.worker.Done()
		s.drain()
		return nil
	}, lifecycle.WithErrorHandler(s.handleError))

	logger.Debug("SQLite store initialized", "path", cfg.Path)
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS prefs (
			namespace TEXT NOT NULL,
			key       TEXT NOT NULL,
			type      TEXT NOT NULL,
			value     TEXT NOT NULL,
			PRIMARY KEY (namespace, key),

			CHECK (type IN ('bool', 'int', 'long', 'float', 'string'))
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Contains(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM prefs WHERE namespace = ? AND key = ?`, s.namespace, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	return get(ctx, s, key, def)
}

func (s *Store) GetInt(ctx context.Context, key string, def int32) (int32, error) {
	return get(ctx, s, key, def)
}

func (s *Store) GetLong(ctx context.Context, key string, def int64) (int64, error) {
	return get(ctx, s, key, def)
}

func (s *Store) GetFloat(ctx context.Context, key string, def float32) (float32, error) {
	return get(ctx, s, key, def)
}

func (s *Store) GetString(ctx context.Context, key string, def string) (string, error) {
	return get(ctx, s, key, def)
}

func get[T core.Native](ctx context.Context, s *Store, key string, def T) (T, error) {
	var typ, text string
	err := s.db.QueryRowContext(ctx,
		`SELECT type, value FROM prefs WHERE namespace = ? AND key = ?`, s.namespace, key).Scan(&typ, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("querying %q: %w", key, err)
	}
	v, err := decodeValue(typ, text)
	if err != nil {
		return def, fmt.Errorf("decoding %q: %w", key, err)
	}
	return core.Lookup(map[string]any{key: v}, key, def)
}

func (s *Store) All(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, type, value FROM prefs WHERE namespace = ?`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("listing namespace: %w", err)
	}
	defer rows.Close()

	values := make(map[string]any)
	for rows.Next() {
		var key, typ, text string
		if err := rows.Scan(&key, &typ, &text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		v, err := decodeValue(typ, text)
		if err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		values[key] = v
	}
	return values, rows.Err()
}

func (s *Store) Edit() core.Editor {
	return &editor{store: s}
}

// enqueue hands mutations to the writer. done is nil for fire-and-forget writes.
func (s *Store) enqueue(req writeRequest) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrClosed
	}
	s.queue <- req
	return nil
}

// drain runs every queued batch in order, one transaction each.
func (s *Store) drain() {
	for req := range s.queue {
		err := s.exec(req.ctx, req.mutations)

		if err == nil {
			s.commits.Add(1)
		} else {
			s.failed.Add(1)
		}

		if req.done != nil {
			req.done <- err
			continue
		}
		if err != nil {
			s.logger.Error("background commit failed", "error", err)
			s.handleError(err)
		}
	}
}

func (s *Store) exec(ctx context.Context, mutations []core.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range mutations {
		if m.Remove {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM prefs WHERE namespace = ? AND key = ?`, s.namespace, m.Key); err != nil {
				return fmt.Errorf("removing %q: %w", m.Key, err)
			}
			continue
		}
		typ, text, err := encodeValue(m.Value)
		if err != nil {
			return fmt.Errorf("encoding %q: %w", m.Key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prefs (namespace, key, type, value) VALUES (?, ?, ?, ?)
			ON CONFLICT(namespace, key) DO UPDATE SET type = excluded.type, value = excluded.value
		`, s.namespace, m.Key, typ, text); err != nil {
			return fmt.Errorf("writing %q: %w", m.Key, err)
		}
	}
	return tx.Commit()
}

func (s *Store) handleError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// Close waits for queued writes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.worker.Wait()
	return s.db.Close()
}

type editor struct {
	core.Batch
	store *Store
}

// Commit blocks until the transaction holding the batch is committed.
func (e *editor) Commit(ctx context.Context) error {
	defer e.Reset()
	done := make(chan error, 1)
	if err := e.store.enqueue(writeRequest{ctx: ctx, mutations: e.Mutations(), done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply queues the batch and returns before the transaction runs.
func (e *editor) Apply() {
	defer e.Reset()
	if err := e.store.enqueue(writeRequest{ctx: context.Background(), mutations: e.Mutations()}); err != nil {
		e.store.logger.Warn("apply after close dropped", "mutations", e.Len())
	}
}

func encodeValue(v any) (string, string, error) {
	switch x := v.(type) {
	case bool:
		return "bool", strconv.FormatBool(x), nil
	case int32:
		return "int", strconv.FormatInt(int64(x), 10), nil
	case int64:
		return "long", strconv.FormatInt(x, 10), nil
	case float32:
		return "float", strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case string:
		return "string", x, nil
	}
	return "", "", fmt.Errorf("%w: %T", core.ErrUnsupportedType, v)
}

func decodeValue(typ, text string) (any, error) {
	switch typ {
	case "bool":
		return strconv.ParseBool(text)
	case "int":
		n, err := strconv.ParseInt(text, 10, 32)
		return int32(n), err
	case "long":
		return strconv.ParseInt(text, 10, 64)
	case "float":
		f, err := strconv.ParseFloat(text, 32)
		return float32(f), err
	case "string":
		return text, nil
	}
	return nil, fmt.Errorf("%w: stored type %q", core.ErrUnsupportedType, typ)
}

var _ core.Store = (*Store)(nil)
