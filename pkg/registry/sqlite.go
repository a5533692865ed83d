package registry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// schemaVersion is the current deployments database schema version.
const schemaVersion = 1

// schema contains the SQL statements to create the deployments schema.
const schema = `
CREATE TABLE IF NOT EXISTS deployments (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    base_url TEXT NOT NULL,
    prefix TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// SQLiteStore serves deployment records from a SQLite database. The proxy
// only reads; records are administered out of band.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteConfig contains configuration for the SQLite registry backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens the deployments database, enables WAL mode, and
// verifies the schema.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "registry.sqlite")

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	s := &SQLiteStore{db: db, logger: logger}

	if err := s.initialize(cfg); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite registry initialized", "path", cfg.Path)

	return s, nil
}

// initialize enables WAL mode, creates the schema, and verifies its version.
func (s *SQLiteStore) initialize(cfg SQLiteConfig) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return NewStorageError("sqlite", "enable_wal", err)
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)", schemaVersion,
	); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != schemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", schemaVersion, version))
	}

	return nil
}

// Deployments returns all deployment records ordered by id.
func (s *SQLiteStore) Deployments(ctx context.Context) ([]Deployment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, base_url, prefix FROM deployments ORDER BY id")
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		var d Deployment
		if err := rows.Scan(&d.ID, &d.Name, &d.BaseURL, &d.Prefix); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "iterate", err)
	}

	return deployments, nil
}

// Upsert inserts or replaces a deployment record. It exists for
// provisioning tooling and tests; the proxy request path never writes.
func (s *SQLiteStore) Upsert(ctx context.Context, d Deployment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deployments (id, name, base_url, prefix)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_url = excluded.base_url,
			prefix = excluded.prefix`,
		d.ID, d.Name, d.BaseURL, d.Prefix)
	if err != nil {
		return NewStorageError("sqlite", "upsert", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
