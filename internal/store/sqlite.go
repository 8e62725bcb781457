// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides schema creation, transactions, and shared row helpers

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
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers so a version check and the
	// update that follows it cannot interleave with another transaction.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			department    TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL,
			created_at    TEXT NOT NULL,

			CHECK (role IN ('USER', 'ADMIN', 'DEPARTMENT_HEAD'))
		);

		CREATE TABLE IF NOT EXISTS documents (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			department  TEXT NOT NULL,
			author_id   TEXT NOT NULL,
			status      TEXT NOT NULL,
			file_ref    TEXT,
			file_name   TEXT,
			file_type   TEXT,
			file_size   INTEGER,
			source_url  TEXT,
			version     INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,

			CHECK (status IN ('DRAFT', 'SUBMITTED', 'REVIEW_REQUIRED', 'APPROVED', 'REJECTED'))
		);

		CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
		CREATE INDEX IF NOT EXISTS idx_documents_department ON documents(department);
		CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at DESC);

		CREATE TABLE IF NOT EXISTS status_history (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			status      TEXT NOT NULL,
			comment     TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,
			FOREIGN KEY (document_id) REFERENCES documents(id)
		);

		CREATE INDEX IF NOT EXISTS idx_history_document ON status_history(document_id, seq);

		-- History is append-only.
		CREATE TRIGGER IF NOT EXISTS trg_history_no_update
			BEFORE UPDATE ON status_history
			BEGIN SELECT RAISE(ABORT, 'status_history is append-only'); END;
		CREATE TRIGGER IF NOT EXISTS trg_history_no_delete
			BEFORE DELETE ON status_history
			BEGIN SELECT RAISE(ABORT, 'status_history is append-only'); END;

		CREATE TABLE IF NOT EXISTS comments (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			text        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			FOREIGN KEY (document_id) REFERENCES documents(id)
		);

		CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id, seq);

		CREATE TABLE IF NOT EXISTS audit_log (
			audit_id    TEXT PRIMARY KEY,
			actor_id    TEXT NOT NULL,
			action      TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id   TEXT NOT NULL,
			ts          TEXT NOT NULL,
			detail_json TEXT,

			CHECK (action IN (
				'register_user',
				'login_succeeded',
				'login_failed',
				'delete_user',
				'import_legal_document'
			))
		);

		CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_log(actor_id);
		CREATE INDEX IF NOT EXISTS idx_audit_target ON audit_log(target_type, target_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn inside a database transaction, committing when fn returns
// nil and rolling back otherwise.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&sqliteTx{tx: sqlTx, logger: s.logger}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Error("rolling back transaction", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// sqliteTx implements Tx on top of a *sql.Tx
type sqliteTx struct {
	tx     *sql.Tx
	logger *slog.Logger
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation
func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "unique constraint"))
}

// timeLayout is fixed width so that lexical order of stored timestamps
// matches time order. RFC3339Nano trims trailing zeros and does not.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullString converts empty strings to SQL NULL
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
