package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the sandbox directory under os.TempDir used by dev runs.
const DevDirName = "eprefs-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// Both build their binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolvePath returns the location an adapter should use. When sandboxed,
// paths outside the system temp dir are re-rooted under DevDirName, keeping
// only their base name.
func ResolvePath(userPath string, sandbox bool) string {
	if userPath == "" {
		userPath = "."
	}
	if !sandbox {
		return userPath
	}

	clean := filepath.Clean(userPath)
	if filepath.IsAbs(clean) {
		rel, err := filepath.Rel(os.TempDir(), clean)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return clean
		}
	}

	name := filepath.Base(clean)
	if name == "." || name == string(filepath.Separator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), DevDirName, name)
}
