package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrConfigNotFound is returned by FindConfig when no config file exists up to the filesystem root.
var ErrConfigNotFound = errors.New("config not found")

// ConfigNames are the file names FindConfig looks for, in order, in each directory.
var ConfigNames = []string{
	"eprefs.yaml",
	"eprefs.yml",
	filepath.Join(".eprefs", "config.yaml"),
}

// FindConfig recursively looks upwards from startDir for a config file and
// returns its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range ConfigNames {
			if path := filepath.Join(dir, name); isFile(path) {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrConfigNotFound
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
