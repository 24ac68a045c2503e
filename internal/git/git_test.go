package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()

	steps := [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test User"},
	}
	for _, args := range steps {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if err := cmd.Run(); err != nil {
			t.Skipf("Skipping test: git %v failed: %v", args, err)
		}
	}

	testFile := filepath.Join(dir, "exercise_01.txt")
	if err := os.WriteFile(testFile, []byte("mysql> SELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	for _, args := range [][]string{{"add", "exercise_01.txt"}, {"commit", "-m", "Initial commit"}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if err := cmd.Run(); err != nil {
			t.Skipf("Skipping test: git %v failed: %v", args, err)
		}
	}
}

func TestGetRepoInfo_NotGitRepo(t *testing.T) {
	tmpDir := t.TempDir()

	info, err := GetRepoInfo(tmpDir)
	if err != nil {
		t.Fatalf("GetRepoInfo returned error: %v", err)
	}

	if info.IsGitRepo {
		t.Error("Expected IsGitRepo to be false for non-git directory")
	}
	if got := RepoRootForFile(filepath.Join(tmpDir, "log.txt")); got != "" {
		t.Errorf("Expected no repository root, got %q", got)
	}
}

func TestGetRepoInfo_GitRepo(t *testing.T) {
	tmpDir := t.TempDir()
	initRepo(t, tmpDir)

	info, err := GetRepoInfo(tmpDir)
	if err != nil {
		t.Fatalf("GetRepoInfo returned error: %v", err)
	}

	if !info.IsGitRepo {
		t.Fatal("Expected IsGitRepo to be true for git repository")
	}

	root := RepoRootForFile(filepath.Join(tmpDir, "exercise_01.txt"))
	if root == "" {
		t.Fatal("Expected repository root for tracked file")
	}

	// macOS temp dirs resolve through /private, so compare resolved paths.
	want, _ := filepath.EvalSymlinks(tmpDir)
	got, _ := filepath.EvalSymlinks(root)
	if got != want {
		t.Errorf("Expected root %q, got %q", want, got)
	}
}

func TestRepoRootForFile_RepoWithoutCommits(t *testing.T) {
	tmpDir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		t.Skipf("Skipping test: git init failed: %v", err)
	}

	root := RepoRootForFile(filepath.Join(tmpDir, "exercise_02.txt"))
	if root == "" {
		t.Fatal("Expected repository root before the first commit")
	}
}
