package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("DBHELPERS_DIR", tmp)
	t.Setenv("XDG_DATA_HOME", "")
	return tmp
}

func TestSaveSnapshotReadAndVerify(t *testing.T) {
	tmp := setupEnv(t)
	source := "/home/student/exercises/exercise_01.txt"

	path, hash, err := SaveSnapshot(source, "SELECT 1;\n")
	if err != nil {
		t.Fatalf("SaveSnapshot returned error: %v", err)
	}

	content, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if content != "SELECT 1;\n" {
		t.Fatalf("unexpected content %q", content)
	}

	ok, err := VerifyFile(path, hash)
	if err != nil {
		t.Fatalf("VerifyFile error: %v", err)
	}
	if !ok {
		t.Fatalf("VerifyFile expected true")
	}

	if !strings.HasPrefix(path, GetSourceDir(source)) {
		t.Fatalf("expected path %s to reside under source dir %s", path, GetSourceDir(source))
	}
	if !strings.HasPrefix(GetSourceDir(source), filepath.Join(tmp, "objects")) {
		t.Fatalf("source dir should be under objects directory")
	}
}

func TestSaveSnapshotDeduplicates(t *testing.T) {
	setupEnv(t)

	first, _, err := SaveSnapshot("builtin", "truncate table book;\n")
	if err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	second, _, err := SaveSnapshot("builtin", "truncate table book;\n")
	if err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical content to share a path, got %s and %s", first, second)
	}
}

func TestVerifyFileDetectsTampering(t *testing.T) {
	setupEnv(t)

	path, hash, err := SaveSnapshot("builtin", "original")
	if err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	if err := os.WriteFile(path, []byte("changed"), 0o600); err != nil {
		t.Fatalf("failed to tamper file: %v", err)
	}

	ok, err := VerifyFile(path, hash)
	if err != nil {
		t.Fatalf("VerifyFile error: %v", err)
	}
	if ok {
		t.Fatalf("expected verification to fail after modification")
	}
}

func TestDeleteAllSnapshots(t *testing.T) {
	tmp := setupEnv(t)

	if _, _, err := SaveSnapshot("builtin", "x"); err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	if err := DeleteAllSnapshots(); err != nil {
		t.Fatalf("DeleteAllSnapshots error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "objects")); !os.IsNotExist(err) {
		t.Fatalf("expected objects dir to be removed, stat err: %v", err)
	}
}
