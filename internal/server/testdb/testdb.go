// Package testdb opens throwaway SQLite databases with the server schema
// applied, for repository and service tests.
package testdb

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/todolist/internal/server/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// OpenSQLite returns a migrated database file under t.TempDir(). The pool is
// limited to one connection so SQLite never reports a busy database.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "todolist.db"))
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

// Migrate applies the SQLite migrations without touching goose's global state.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations.Migrations, migrations.SQLiteDir)
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}
