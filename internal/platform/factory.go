package platform

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/eprefs/pkg/adapters/fs"
	"github.com/aretw0/eprefs/pkg/adapters/memory"
	"github.com/aretw0/eprefs/pkg/adapters/sqlite"
	"github.com/aretw0/eprefs/pkg/core"
	"github.com/aretw0/eprefs/pkg/prefs"
)

// Open creates a Prefs over a fresh store for namespace.
//
//	p, err := platform.Open("settings", platform.WithAdapter("sqlite"), platform.WithPath("app.db"))
//
// An empty namespace selects core.DefaultNamespace.
func Open(namespace string, opts ...Option) (*prefs.Prefs, error) {
	if namespace == "" {
		namespace = core.DefaultNamespace
	}
	o := resolveOptions(opts)

	store, err := openStore(namespace, o)
	if err != nil {
		return nil, err
	}

	p := prefs.New(store,
		prefs.WithNamespace(namespace),
		prefs.WithLogger(o.logger),
		prefs.WithCodec(o.codec),
		prefs.WithCommitMode(o.mode),
	)
	o.logger.Debug("namespace opened", "namespace", namespace, "adapter", adapterName(o))
	return p, nil
}

func openStore(namespace string, o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	sandbox := o.devSafety && IsDevRun()
	switch o.adapter {
	case AdapterMemory:
		return memory.New(namespace), nil
	case AdapterFS, "":
		dir := ResolvePath(o.path, sandbox)
		if sandbox && dir != filepath.Clean(o.path) {
			o.logger.Warn("dev run detected, using sandbox directory", "requested", o.path, "dir", dir)
		}
		return fs.Open(fs.Config{
			Dir:          dir,
			Namespace:    namespace,
			Format:       o.format,
			Watch:        o.watch,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
	case AdapterSQLite:
		path := o.path
		if path == "" || path == "." {
			path = "eprefs.db"
		}
		resolved := ResolvePath(path, sandbox)
		if sandbox && resolved != filepath.Clean(path) {
			o.logger.Warn("dev run detected, using sandbox database", "requested", path, "path", resolved)
		}
		return sqlite.Open(sqlite.Config{
			Path:         resolved,
			Namespace:    namespace,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
	}
	return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
}

func adapterName(o *options) string {
	if o.store != nil {
		return "custom"
	}
	return o.adapter
}
