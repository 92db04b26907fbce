// Package buildcache is Neo's incremental build cache: a content-addressed
// map from a source file's bytes to the object file `neo build` last
// produced for them, so unchanged sources skip straight to linking.
//
// Grounded on the teacher's internal/build package (which tracked compiled
// bundles/modules in memory) generalized to a persistent, on-disk cache
// backed by modernc.org/sqlite (pure Go, no cgo — the teacher's own
// go.mod also carries github.com/mattn/go-sqlite3, dropped in favor of
// this pure-Go driver since nothing in this repo is ever actually built
// with cgo enabled; see DESIGN.md). The cache key is a blake2b-256 digest
// (golang.org/x/crypto/blake2b), deliberately distinct from the FNV-1a
// hash §3.4/§9 reserve as "the single authoritative hash" for the symbol
// table and CSE — this is a different concern with different collision
// tolerances.
package buildcache

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Cache wraps a sqlite-backed table of prior builds.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if absent) the cache database at
// <dir>/.neo-cache/cache.db.
func OpenCache(dir string) (*Cache, error) {
	cacheDir := filepath.Join(dir, ".neo-cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("buildcache: creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(cacheDir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("buildcache: opening db: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS builds (
		key TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		object_path TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Key hashes source with blake2b-256 and returns its hex digest.
func Key(source []byte) string {
	sum := blake2b.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the object path stored for key, if any.
func (c *Cache) Lookup(key string) (objectPath string, ok bool, err error) {
	row := c.db.QueryRow(`SELECT object_path FROM builds WHERE key = ?`, key)
	if scanErr := row.Scan(&objectPath); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("buildcache: lookup: %w", scanErr)
	}
	return objectPath, true, nil
}

// Store records key → objectPath, stamping a fresh session id.
func (c *Cache) Store(key, objectPath string) error {
	sessionID := uuid.NewString()
	_, err := c.db.Exec(
		`INSERT INTO builds (key, session_id, object_path, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET session_id = excluded.session_id,
		   object_path = excluded.object_path, created_at = excluded.created_at`,
		key, sessionID, objectPath, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("buildcache: store: %w", err)
	}
	return nil
}
