package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/choplin/dbhelpers/internal/database"
)

func setupHistory(t *testing.T) *History {
	t.Helper()
	t.Setenv("DBHELPERS_DIR", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "")

	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	return NewHistory(dbCtx)
}

func writeTranscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exercise_01_borrowing_returning.txt")
	content := "mysql> SELECT * FROM book;\n" +
		"Empty set (0.00 sec)\n" +
		"mysql> INSERT INTO loan VALUES (1, 2);\n" +
		"Query OK, 1 row affected\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write transcript: %v", err)
	}
	return path
}

func TestExtractWritesDefaultOutput(t *testing.T) {
	in := writeTranscript(t)

	res, err := Extract(ExtractInput{InputPath: in})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if res.Statements != 2 {
		t.Fatalf("expected 2 statements, got %d", res.Statements)
	}

	got, err := os.ReadFile(in + ".sql")
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(got) != "SELECT * FROM book;\nINSERT INTO loan VALUES (1, 2);\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRecordExtractAndShow(t *testing.T) {
	ctx := context.Background()
	h := setupHistory(t)
	in := writeTranscript(t)

	res, err := Extract(ExtractInput{InputPath: in})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	id, err := h.RecordExtract(ctx, res)
	if err != nil {
		t.Fatalf("RecordExtract returned error: %v", err)
	}

	shown, err := h.Show(ctx, id)
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	if shown.Record.Kind != database.RunExtract || shown.Record.StatementCount != 2 {
		t.Fatalf("unexpected record %+v", shown.Record)
	}
	if !strings.HasPrefix(shown.Content, "SELECT * FROM book;\n") {
		t.Fatalf("unexpected snapshot content %q", shown.Content)
	}
	if !filepath.IsAbs(shown.Record.Source) {
		t.Fatalf("expected absolute source path, got %q", shown.Record.Source)
	}
}

func TestShowDetectsModifiedSnapshot(t *testing.T) {
	ctx := context.Background()
	h := setupHistory(t)

	id, err := h.RecordTruncate(ctx, BuiltinSource, []string{"author", "book"}, false)
	if err != nil {
		t.Fatalf("RecordTruncate returned error: %v", err)
	}

	shown, err := h.Show(ctx, id)
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	want := "set foreign_key_checks = 0;\ntruncate table author;\ntruncate table book;\nset foreign_key_checks = 1;\n"
	if shown.Content != want {
		t.Fatalf("unexpected snapshot %q", shown.Content)
	}

	if err := os.WriteFile(shown.Record.SnapshotPath, []byte("drop database library;\n"), 0o600); err != nil {
		t.Fatalf("failed to modify snapshot: %v", err)
	}
	if _, err := h.Show(ctx, id); err == nil {
		t.Fatalf("expected integrity error for modified snapshot")
	}
}

func TestListValidatesKind(t *testing.T) {
	h := setupHistory(t)

	if _, err := h.List(context.Background(), "vacuum", 0); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestClearRemovesRunsAndSnapshots(t *testing.T) {
	ctx := context.Background()
	h := setupHistory(t)

	id, err := h.RecordTruncate(ctx, BuiltinSource, []string{"loan"}, true)
	if err != nil {
		t.Fatalf("RecordTruncate returned error: %v", err)
	}
	shown, err := h.Show(ctx, id)
	if err != nil {
		t.Fatalf("Show returned error: %v", err)
	}
	if !shown.Record.Executed {
		t.Fatalf("expected executed run")
	}

	count, err := h.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cleared run, got %d", count)
	}

	if _, err := h.Show(ctx, id); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
	if _, err := os.Stat(shown.Record.SnapshotPath); !os.IsNotExist(err) {
		t.Fatalf("expected snapshot to be removed, stat err: %v", err)
	}
}
