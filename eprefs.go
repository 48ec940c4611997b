package eprefs

import (
	"log/slog"

	"github.com/aretw0/eprefs/internal/platform"
	"github.com/aretw0/eprefs/pkg/codec"
	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

// --- Types ---

// Prefs is the typed dispatcher over one namespace.
type Prefs = prefs.Prefs

// Type describes the shape requested by Load and Delete.
type Type = core.Type

// Kind is the storage shape of a value.
type Kind = core.Kind

// Store is the flat key-value contract implemented by the adapters.
type Store = core.Store

// Event reports a change in a watched namespace.
type Event = core.Event

// Serializable marks records accepted by the binary codec.
type Serializable = core.Serializable

// Registry caches one Prefs per namespace.
type Registry = platform.Registry

// Descriptors of the primitive kinds.
var (
	Bool   = core.Bool
	Int    = core.Int
	Long   = core.Long
	Float  = core.Float
	String = core.String
)

// ArrayOf describes a sequence of primitives.
func ArrayOf(elem Type) Type {
	return core.ArrayOf(elem)
}

// ListOf describes a sequence of records or loosely typed elements.
func ListOf(elem Type) Type {
	return core.ListOf(elem)
}

// RecordOf describes a record built by newFn, which must return a pointer.
func RecordOf(name string, newFn func() any) Type {
	return core.RecordOf(name, newFn)
}

// --- Configuration ---

// Option defines a functional option for opening a namespace.
type Option = platform.Option

// WithAdapter selects the store adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithPath sets the directory (fs) or database file (sqlite).
func WithPath(path string) Option {
	return platform.WithPath(path)
}

// WithFormat selects the fs file format (".json" or ".yaml").
func WithFormat(ext string) Option {
	return platform.WithFormat(ext)
}

// WithCodec selects the record codec.
func WithCodec(c codec.Codec) Option {
	return platform.WithCodec(c)
}

// WithBinaryCodec selects the gob based record codec.
func WithBinaryCodec() Option {
	return platform.WithCodec(codec.NewBinary())
}

// WithCommitMode sets the default commit mode of writes.
func WithCommitMode(mode prefs.CommitMode) Option {
	return platform.WithCommitMode(mode)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a host-provided store.
func WithStore(store Store) Option {
	return platform.WithStore(store)
}

// WithWatch enables reload of external edits for the fs adapter.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithErrorHandler registers a callback for background failures.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithDevSafety controls the temp sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// Open creates a Prefs for namespace. An empty namespace selects "preferences".
func Open(namespace string, opts ...Option) (*Prefs, error) {
	return platform.Open(namespace, opts...)
}

// NewRegistry creates a registry opening namespaces with opts.
func NewRegistry(opts ...Option) *Registry {
	return platform.NewRegistry(opts...)
}

// Namespace returns the namespace from the process-wide registry, opening it
// on first use.
func Namespace(name string) (*Prefs, error) {
	return platform.Default().Get(name)
}

// Default returns the "preferences" namespace of the process-wide registry.
func Default() (*Prefs, error) {
	return platform.Default().Get("")
}

// Configure replaces the process-wide registry with one using opts.
// Namespaces opened before remain open in the previous registry.
func Configure(opts ...Option) {
	platform.SetDefault(platform.NewRegistry(opts...))
}
