package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/eprefs/pkg/core"
)

const (
	debounceInterval = 50 * time.Millisecond
	subscriberBuffer = 64
)

// Watch subscribes to changes of the namespace. Events are emitted for every
// commit made through this store and, when Config.Watch is set, for external
// edits of the file. The channel is closed when ctx is done or the store closes.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, core.ErrClosed
	}

	ch := make(chan core.Event, subscriberBuffer)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			s.unsubscribe(id)
		case <-s.done:
		}
		return nil
	})
	return ch, nil
}

func (s *Store) unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

// publish fans events out to subscribers. A full subscriber drops the event.
func (s *Store) publish(events []core.Event) {
	if len(events) == 0 {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		for _, e := range events {
			select {
			case ch <- e:
			default:
				s.logger.Warn("subscriber buffer full, dropping event", "subscriber", id, "key", e.Key)
			}
		}
	}
}

// reload re-reads the file and reports what changed. It is skipped while
// background writes are pending, since they will overwrite the file anyway.
func (s *Store) reload() ([]core.Event, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	pending := s.pending
	s.mu.RUnlock()
	if pending > 0 {
		return nil, nil
	}

	next, err := s.read()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	events := core.Diff(s.values, next)
	s.values = next
	s.reloads++
	return events, nil
}

func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.config.Dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.config.Dir, err)
	}

	s.watchWG.Add(1)
	lifecycle.Go(s.ctx, func(ctx context.Context) error {
		defer s.watchWG.Done()
		defer watcher.Close()
		return s.watchLoop(ctx, watcher)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watcher failed", "error", err)
		s.handleError(err)
	}))
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if s.logger.Enabled(ctx, slog.LevelDebug) {
				s.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				s.logger.Error("watcher panic", "error", err)
			}
		}
	}()

	timer := time.NewTimer(debounceInterval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			s.logger.Debug("event received", "op", event.Op.String())
			timer.Reset(debounceInterval)

		case <-timer.C:
			events, err := s.reload()
			if err != nil {
				s.logger.Warn("reload failed", "path", s.path, "error", err)
				s.handleError(err)
				continue
			}
			s.publish(events)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Error("fsnotify error", "error", wErr)
			s.handleError(wErr)
		}
	}
}
