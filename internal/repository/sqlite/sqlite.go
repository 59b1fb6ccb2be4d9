// Package sqlite implements the repository interfaces on top of SQLite.
//
// Referential integrity lives in the schema: foreign keys are switched on for
// the connection and every relation declares its ON DELETE behaviour, so
// deleting a project removes its issues and their comments in one statement.
//
// modernc.org/sqlite is a pure Go port of SQLite, so no C compiler is needed.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/softdesk/internal/repository"
)

// compile-time check that *DB implements the whole store
var _ repository.Store = (*DB)(nil)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway database in tests.
//
// The pool is limited to one connection. PRAGMAs are per connection in SQLite
// and an in-memory database only exists on the connection that created it,
// so a single connection keeps foreign keys on and the data visible.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			username           TEXT NOT NULL UNIQUE CHECK (username <> ''),
			password_hash      TEXT NOT NULL,
			age                INTEGER CHECK (age IS NULL OR age BETWEEN 15 AND 120),
			can_be_contacted   BOOLEAN NOT NULL DEFAULT 0,
			can_data_be_shared BOOLEAN NOT NULL DEFAULT 0,
			is_staff           BOOLEAN NOT NULL DEFAULT 0,
			is_superuser       BOOLEAN NOT NULL DEFAULT 0,
			is_active          BOOLEAN NOT NULL DEFAULT 1,
			github_id          INTEGER UNIQUE,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			type         TEXT NOT NULL CHECK (type IN ('BAE', 'FRE', 'IOS', 'AND')),
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_projects_author_id ON projects(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS contributors (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			UNIQUE (user_id, project_id)
		);
		CREATE INDEX IF NOT EXISTS idx_contributors_project_id ON contributors(project_id);
	`)
	if err != nil {
		return fmt.Errorf("creating contributors table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS issues (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			assignee_id  TEXT REFERENCES users(id) ON DELETE SET NULL,
			priority     TEXT NOT NULL CHECK (priority IN ('LOW', 'MED', 'HIGH')),
			tag          TEXT NOT NULL CHECK (tag IN ('BUG', 'FEAT', 'TASK')),
			status       TEXT NOT NULL DEFAULT 'TODO' CHECK (status IN ('TODO', 'INPR', 'FINI')),
			created_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_issues_project_id ON issues(project_id);
		CREATE INDEX IF NOT EXISTS idx_issues_assignee_id ON issues(assignee_id);
	`)
	if err != nil {
		return fmt.Errorf("creating issues table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id           TEXT PRIMARY KEY,
			description  TEXT NOT NULL,
			issue_id     TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_issue_id ON comments(issue_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// clampList applies the default and maximum page size.
func clampList(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint
// failure.
func isUniqueViolation(err error) bool {
	return isConstraint(err, "UNIQUE constraint failed",
		sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint failure.
func isForeignKeyViolation(err error) bool {
	return isConstraint(err, "FOREIGN KEY constraint failed", sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}

// isConstraint matches the extended result code, falling back to the message
// when only the primary SQLITE_CONSTRAINT code is reported.
func isConstraint(err error, message string, codes ...int) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	if slices.Contains(codes, code) {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), message)
}

// checkAffected turns "zero rows touched" into a NotFound error.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// Nullable column helpers. Pointers are flattened before reaching the driver.

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
