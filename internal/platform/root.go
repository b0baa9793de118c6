package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned by FindRoot when no marker exists up to the filesystem root.
var ErrRootNotFound = errors.New("data directory not found")

// rootMarkers identify a directory holding catalogue data.
var rootMarkers = []string{
	DefaultStoreFile,
	DefaultLegacyFile,
	"argumentaire.yaml",
	"argumentaire.yml",
	"argumentaire.toml",
}

// FindRoot looks upwards from startDir for a directory holding the store,
// the legacy database or a config file, and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, marker := range rootMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
