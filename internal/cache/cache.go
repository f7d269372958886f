// Package cache persists validation results keyed by the source
// content hash, so re-validating an unchanged file skips the engine
// entirely. Payloads are msgpack on disk under the user cache
// directory; a schema version invalidates old entries wholesale when
// the payload shape changes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"gantry/diag"
)

// schemaVersion guards the payload layout. Bump on any field change.
const schemaVersion uint16 = 1

// Key identifies one exact source text.
type Key [sha256.Size]byte

// KeyFor hashes a source document.
func KeyFor(source []byte) Key {
	return sha256.Sum256(source)
}

// Payload is one cached validation result.
type Payload struct {
	Schema      uint16
	Rules       []string // rule ids active when the result was computed
	Diagnostics []diag.Diagnostic
}

// Cache is a content-addressed result store. The zero-value nil *Cache
// is a valid no-op cache: Get always misses and Put discards.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the store under the XDG cache directory (or
// ~/.cache) for the given application name.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes the store at an explicit directory.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Key) string {
	// Results live in a subdirectory so the cache root can hold other
	// artifact kinds later.
	return filepath.Join(c.dir, "results", hex.EncodeToString(key[:])+".mp")
}

// Put writes a result atomically: encode to a temp file, then rename.
func (c *Cache) Put(key Key, diagnostics []diag.Diagnostic, rules []string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	payload := Payload{Schema: schemaVersion, Rules: rules, Diagnostics: diagnostics}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a cached result. A missing entry, a schema mismatch, or a
// rule-set mismatch all count as a miss, never an error; only IO
// problems surface.
func (c *Cache) Get(key Key, rules []string) ([]diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		// A truncated or stale-format entry is a miss; it will be
		// overwritten by the next Put.
		return nil, false, nil
	}
	if payload.Schema != schemaVersion || !sameRules(payload.Rules, rules) {
		return nil, false, nil
	}
	return payload.Diagnostics, true, nil
}

// DropAll removes every entry, for --no-cache style resets.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

func sameRules(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
