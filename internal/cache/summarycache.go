package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// SummaryEntry is one cached remote summary.
type SummaryEntry struct {
	Backend string    `json:"backend"`
	Summary string    `json:"summary"`
	SavedAt time.Time `json:"saved_at"`
}

// SummaryCache stores remote summaries keyed by backend and payload digest.
type SummaryCache struct {
	Dir         string
	StrictPerms bool
}

// KeyFrom builds a cache key from a backend identifier (endpoint or model)
// and the exact payload sent to it.
func KeyFrom(backend string, payload string) string {
	h := sha256.Sum256([]byte(backend + "\n\n" + payload))
	return hex.EncodeToString(h[:])
}

func (c *SummaryCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached entry for key. A missing entry is not an error.
func (c *SummaryCache) Get(_ context.Context, key string) (SummaryEntry, bool, error) {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return SummaryEntry{}, false, err
	}
	b, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return SummaryEntry{}, false, nil
	}
	if err != nil {
		return SummaryEntry{}, false, err
	}
	var e SummaryEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return SummaryEntry{}, false, fmt.Errorf("decode summary entry: %w", err)
	}
	return e, true, nil
}

// Save writes an entry for key, stamping SavedAt when unset.
func (c *SummaryCache) Save(_ context.Context, key string, e SummaryEntry) error {
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return writeAtomic(c.pathFor(key), b, fileMode(c.StrictPerms))
}
