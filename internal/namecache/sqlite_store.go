package namecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"steamdrop/internal/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS app_names (
	app_id     TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps one row per id in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite name cache requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "namecache"),
	}, nil
}

// Lookup returns the cached name for id. Query failures are logged and
// reported as a miss.
func (s *SQLiteStore) Lookup(id string) (string, bool) {
	id = normalizeID(id)
	if id == "" {
		return "", false
	}
	var name string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT name FROM app_names WHERE app_id = ?", id).Scan(&name)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.WarnWithContext(s.logger, "name cache lookup failed",
				"namecache_lookup_failed",
				logging.AppID(id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the id is treated as unresolved"))
		}
		return "", false
	}
	return name, true
}

// Store upserts name for id.
func (s *SQLiteStore) Store(id, name string) error {
	id = normalizeID(id)
	if id == "" {
		return errors.New("app id cannot be empty")
	}
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO app_names (app_id, name, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(app_id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		id, name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("persist name cache: %w", err)
	}
	s.logger.Debug("cached app name",
		logging.AppID(id),
		logging.String("name", name),
		logging.Bool("negative", name == ""))
	return nil
}

// Remove deletes id.
func (s *SQLiteStore) Remove(id string) error {
	id = normalizeID(id)
	if id == "" {
		return errors.New("app id cannot be empty")
	}
	res, err := s.db.ExecContext(context.Background(), "DELETE FROM app_names WHERE app_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete name cache entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("app id %q not found in name cache", id)
	}
	return nil
}

// Clear drops every row.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.ExecContext(context.Background(), "DELETE FROM app_names"); err != nil {
		return fmt.Errorf("clear name cache: %w", err)
	}
	return nil
}

// List returns all entries sorted by id.
func (s *SQLiteStore) List() []Entry {
	rows, err := s.db.QueryContext(context.Background(), "SELECT app_id, name FROM app_names ORDER BY app_id")
	if err != nil {
		s.logger.Warn("list name cache failed", logging.Error(err))
		return nil
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Name); err != nil {
			s.logger.Warn("scan name cache row failed", logging.Error(err))
			return entries
		}
		entries = append(entries, entry)
	}
	return entries
}

// Count returns the number of rows.
func (s *SQLiteStore) Count() int {
	var count int
	if err := s.db.QueryRowContext(context.Background(), "SELECT COUNT(1) FROM app_names").Scan(&count); err != nil {
		return 0
	}
	return count
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
