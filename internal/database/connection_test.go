package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/choplin/dbhelpers/internal/config"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("DBHELPERS_DIR", tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func TestDatabaseCreationAndMigration(t *testing.T) {
	ctx := setupTestDB(t)

	dbPath := filepath.Join(config.GetDataDir(), "index.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file to exist at %s: %v", dbPath, err)
	}

	var version int
	var dirty bool
	if err := ctx.DB.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		t.Fatalf("failed to read schema_migrations: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("expected clean migration version 1, got %d dirty=%v", version, dirty)
	}

	if !tableExists(t, ctx.DB, "runs") {
		t.Fatalf("expected table runs to exist")
	}
}

func TestCreateDatabaseIsReentrant(t *testing.T) {
	setupTestDB(t)

	again, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("second CreateDatabase returned error: %v", err)
	}
	if err := CloseDatabase(again); err != nil {
		t.Fatalf("CloseDatabase error: %v", err)
	}
}

func TestClearDatabaseRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	insertRun(t, ctx.DB, "extract", "/tmp/exercise.txt")
	insertRun(t, ctx.DB, "truncate", "builtin")
	assertCount(t, ctx.DB, "runs", 2)

	count, err := ClearDatabase(context.Background(), ctx)
	if err != nil {
		t.Fatalf("ClearDatabase returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 deleted runs, got %d", count)
	}

	assertCount(t, ctx.DB, "runs", 0)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func insertRun(t *testing.T, db *sql.DB, kind, source string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO runs(kind, source, hash, snapshot_path) VALUES(?, ?, ?, ?)`, kind, source, "hash", "/tmp/snapshot.sql")
	if err != nil {
		t.Fatalf("insertRun failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertRun LastInsertId failed: %v", err)
	}
	return id
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
