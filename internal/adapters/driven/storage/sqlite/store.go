package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
)

// Store is the SQLite-backed fingerprint cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.FingerprintStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.brdingest/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".brdingest", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Lookup retrieves the cache entry for a page.
func (s *Store) Lookup(ctx context.Context, sourceID string) (*domain.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source_id, last_version, content_fingerprint, last_indexed_at
		FROM page_cache WHERE source_id = ?
	`, sourceID)

	var entry domain.CacheEntry
	var lastIndexedAt sql.NullTime
	if err := row.Scan(&entry.SourceID, &entry.LastVersion, &entry.Fingerprint, &lastIndexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning cache entry: %w", err)
	}
	if lastIndexedAt.Valid {
		entry.LastIndexedAt = lastIndexedAt.Time
	}

	return &entry, nil
}

// ShouldProcess reports whether a page needs re-indexing. A page is
// skipped only when an entry exists and both the version and the
// fingerprint are unchanged; force bypasses the check entirely.
func (s *Store) ShouldProcess(ctx context.Context, sourceID string, version int, fingerprint string, force bool) (bool, error) {
	if force {
		return true, nil
	}

	entry, err := s.Lookup(ctx, sourceID)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if entry.LastVersion == version && entry.Fingerprint == fingerprint {
		return false, nil
	}
	return true, nil
}

// Commit upserts the cache entry for a page.
func (s *Store) Commit(ctx context.Context, entry domain.CacheEntry) error {
	if entry.SourceID == "" {
		return domain.ErrInvalidInput
	}
	if entry.LastIndexedAt.IsZero() {
		entry.LastIndexedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_cache (source_id, last_version, content_fingerprint, last_indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			last_version = excluded.last_version,
			content_fingerprint = excluded.content_fingerprint,
			last_indexed_at = excluded.last_indexed_at
	`, entry.SourceID, entry.LastVersion, entry.Fingerprint, entry.LastIndexedAt)

	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// Clear drops all cache entries and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM page_cache")
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting removed entries: %w", err)
	}
	return int(removed), nil
}

// Status summarises the cache contents.
func (s *Store) Status(ctx context.Context) (*driven.CacheStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(last_indexed_at), MAX(last_indexed_at)
		FROM page_cache
	`)

	status := driven.CacheStatus{Path: s.path}
	// MIN()/MAX() expressions lose the column's DATETIME declared type, so
	// the driver hands back the stored text instead of a time.Time.
	var oldest, newest sql.NullString
	if err := row.Scan(&status.Entries, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("scanning cache status: %w", err)
	}
	if oldest.Valid {
		t, err := parseStoredTime(oldest.String)
		if err != nil {
			return nil, fmt.Errorf("scanning cache status: %w", err)
		}
		status.OldestIndexedAt = t
	}
	if newest.Valid {
		t, err := parseStoredTime(newest.String)
		if err != nil {
			return nil, fmt.Errorf("scanning cache status: %w", err)
		}
		status.NewestIndexedAt = t
	}

	return &status, nil
}

// parseStoredTime parses a timestamp in the text form the SQLite driver uses
// when binding a time.Time value.
func parseStoredTime(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
	}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
