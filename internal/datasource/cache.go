package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"
	_ "modernc.org/sqlite"
)

// Cache is the process-wide byte-source fetch cache: a temp directory,
// keyed by URL hash, created once and reused across a table's two
// validation passes. Only HTTPSource writes to it; readers never need to.
// The URL→local-path index itself is kept in a small SQLite database
// rather than re-derived from the filesystem, so Lookup survives a
// process restart within the same --cache-dir.
type Cache struct {
	db  *sql.DB
	dir string
}

// NewCache opens (creating if necessary) the SQLite-backed index rooted at
// dir. The returned cleanup function closes the database handle; the
// directory itself is left for the caller to remove on process exit.
func NewCache(ctx context.Context, dir string) (*Cache, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("datasource: create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "fetch-cache.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("datasource: open cache index: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("datasource: ping cache index: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS fetch_cache (
		url_hash TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		local_path TEXT NOT NULL,
		resolved_url TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("datasource: create cache table: %w", err)
	}

	c := &Cache{db: db, dir: dir}
	return c, func() { db.Close() }, nil
}

// pathFor derives the cache's local filename for a URL from a
// non-cryptographic 64-bit hash (xxh3) of the URL — the same
// hash-then-verify spirit as the primary-key hash-bucket index, here used
// only to name a file, so collisions are harmless; the SQLite index still
// keys on the URL string for Lookup correctness.
func (c *Cache) pathFor(rawURL string) string {
	h := xxh3.HashString(rawURL)
	return filepath.Join(c.dir, fmt.Sprintf("%016x.cache", h))
}

// Lookup returns the cached local path for rawURL, if an entry exists.
func (c *Cache) Lookup(rawURL string) (string, bool) {
	hash := fmt.Sprintf("%016x", xxh3.HashString(rawURL))
	var path string
	err := c.db.QueryRow(`SELECT local_path FROM fetch_cache WHERE url_hash = ? AND url = ?`, hash, rawURL).Scan(&path)
	if err != nil {
		return "", false
	}
	return path, true
}

// Store records that rawURL's bytes now live at localPath.
func (c *Cache) Store(rawURL, localPath string) error {
	return c.StoreResolved(rawURL, rawURL, localPath)
}

// StoreResolved records that rawURL's bytes now live at localPath, having
// been fetched from resolvedURL (the final URL after following any HTTP
// redirects). ResolvedURLMismatch compares the two on a later cache hit.
func (c *Cache) StoreResolved(rawURL, resolvedURL, localPath string) error {
	hash := fmt.Sprintf("%016x", xxh3.HashString(rawURL))
	_, err := c.db.Exec(
		`INSERT INTO fetch_cache (url_hash, url, local_path, resolved_url) VALUES (?, ?, ?, ?)
		 ON CONFLICT(url_hash) DO UPDATE SET local_path = excluded.local_path, resolved_url = excluded.resolved_url`,
		hash, rawURL, localPath, resolvedURL)
	return err
}

// ResolvedURLMismatch reports the resolved URL a prior fetch of rawURL
// settled on, and whether it differs from rawURL itself — a sign the
// prior fetch was served bytes from somewhere other than the requested
// location (e.g. a redirect) that a later call should not silently treat
// as equivalent.
func (c *Cache) ResolvedURLMismatch(rawURL string) (resolvedURL string, mismatched bool) {
	hash := fmt.Sprintf("%016x", xxh3.HashString(rawURL))
	var resolved string
	if err := c.db.QueryRow(`SELECT resolved_url FROM fetch_cache WHERE url_hash = ? AND url = ?`, hash, rawURL).Scan(&resolved); err != nil {
		return "", false
	}
	return resolved, resolved != "" && resolved != rawURL
}
