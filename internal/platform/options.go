package platform

import (
	"log/slog"

	"github.com/aretw0/eprefs/pkg/codec"
	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory = "memory"
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
)

// options holds the internal configuration for opening a namespace.
type options struct {
	store        core.Store
	logger       *slog.Logger
	adapter      string
	path         string
	format       string
	codec        codec.Codec
	mode         prefs.CommitMode
	watch        bool
	devSafety    bool
	errorHandler func(error)
}

// Option defines a functional option for opening a namespace.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		path:      ".",
		format:    ".json",
		devSafety: true,
	}
}

func resolveOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithAdapter selects the store adapter by name ("fs", "sqlite", "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithPath sets the adapter location: a directory for "fs", a database file
// for "sqlite". Ignored by "memory".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithFormat selects the file format of the "fs" adapter (".json" or ".yaml").
func WithFormat(ext string) Option {
	return func(o *options) {
		o.format = ext
	}
}

// WithCodec selects the record codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCommitMode sets the default commit mode of writes.
func WithCommitMode(mode prefs.CommitMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithLogger sets the logger for the namespace and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a ready store (e.g. a mock or a host-provided store).
// If provided, the adapter options are skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithWatch enables reloading of external edits in the "fs" adapter.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithErrorHandler registers a callback for failures of background work
// (async commits, the file watcher) which are otherwise only logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), paths outside the temp dir are redirected into it.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
