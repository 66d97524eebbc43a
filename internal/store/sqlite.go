// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Creates the schema, seeds roles and applies idempotent migrations

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/antecedentes/internal/model"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// foreign_keys is a per-connection pragma, so it goes in the DSN to
	// reach every pooled connection.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.seedRoles(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding roles: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS roles (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			names TEXT NOT NULL,
			lastname TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			role_id INTEGER NOT NULL REFERENCES roles(id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS persons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			identification TEXT NOT NULL UNIQUE COLLATE NOCASE,
			identification_type TEXT NOT NULL,
			names TEXT NOT NULL,
			lastnames TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			province TEXT NOT NULL DEFAULT '',
			observations TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			observations TEXT NOT NULL DEFAULT '',
			type_record TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_type ON records(type_record);
		CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);

		CREATE TABLE IF NOT EXISTS person_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			record_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
			type_relationship TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (person_id, record_id)
		);

		CREATE INDEX IF NOT EXISTS idx_person_records_record ON person_records(record_id);

		CREATE TABLE IF NOT EXISTS person_connections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			connected_person_id INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			connection_type TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (person_id, connected_person_id),
			CHECK (person_id <> connected_person_id)
		);

		CREATE INDEX IF NOT EXISTS idx_person_connections_other ON person_connections(connected_person_id);

		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			person_id INTEGER NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
			original_filename TEXT NOT NULL,
			stored_name TEXT NOT NULL UNIQUE,
			mime_type TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_files_person ON files(person_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first
	migrations := []struct {
		table  string
		column string
		apply  string
	}{
		{
			table:  "persons",
			column: "country",
			apply:  `ALTER TABLE persons ADD COLUMN country TEXT NOT NULL DEFAULT ''`,
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(
			`SELECT 1 FROM pragma_table_info(?) WHERE name = ?`, m.table, m.column,
		).Scan(&exists)
		if err == nil {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to %s: %w", m.column, m.table, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", m.table)
	}

	return nil
}

func (s *SQLiteStore) seedRoles() error {
	roles := []model.Role{
		{ID: model.RoleIDAdmin, Name: model.RoleAdmin},
		{ID: model.RoleIDModerate, Name: model.RoleModerate},
		{ID: model.RoleIDUser, Name: model.RoleUser},
		{ID: model.RoleIDView, Name: model.RoleView},
	}
	for _, r := range roles {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO roles (id, name) VALUES (?, ?)`, r.ID, r.Name); err != nil {
			return fmt.Errorf("inserting role %s: %w", r.Name, err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE or CHECK constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "CHECK constraint failed")
}

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nowString() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTimestamp(s string) (model.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return model.Timestamp{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return model.NewTimestamp(t), nil
}

// likePattern wraps v for a case-insensitive substring LIKE with escaping.
func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(v)) + "%"
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// exists reports whether a row with id exists in table.
func (s *SQLiteStore) exists(ctx context.Context, table string, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %d: %w", table, id, err)
	}
	return true, nil
}
