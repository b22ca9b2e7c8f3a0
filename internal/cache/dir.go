// Package cache keeps fetched pages and remote summaries on disk so repeated
// runs against the same article avoid the network.
package cache

import (
	"errors"
	"os"
	"path/filepath"
)

// Subdirectories of the cache root.
const (
	httpSubdir    = "http"
	summarySubdir = "summaries"
)

// HTTPDir returns the directory holding page bodies under root.
func HTTPDir(root string) string { return filepath.Join(root, httpSubdir) }

// SummaryDir returns the directory holding remote summaries under root.
func SummaryDir(root string) string { return filepath.Join(root, summarySubdir) }

func ensureDir(dir string, strict bool) error {
	if dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if strict {
		perm = 0o700
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	// MkdirAll leaves existing directories alone; tighten them explicitly.
	if strict {
		if info, err := os.Stat(dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

func fileMode(strict bool) os.FileMode {
	if strict {
		return 0o600
	}
	return 0o644
}

// writeAtomic writes data to a temp file next to path and renames it over.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
