// Package git detects the repository a transcript or script belongs to so
// recorded runs can be traced back to the exercise set they came from.
package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RepoInfo describes the repository containing a directory.
type RepoInfo struct {
	IsGitRepo bool
	Root      string
}

// GetRepoInfo retrieves repository information for the given directory.
// If dir is empty, it uses the current working directory.
// Returns a RepoInfo with IsGitRepo=false if the directory is not a git repository.
func GetRepoInfo(dir string) (*RepoInfo, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			//nolint:nilerr // Intentionally return non-repo info instead of error
			return &RepoInfo{IsGitRepo: false}, nil
		}
	}

	root, err := runGitCommand(dir, "rev-parse", "--show-toplevel")
	if err != nil || root == "" {
		//nolint:nilerr // Intentionally return non-repo info instead of error
		return &RepoInfo{IsGitRepo: false}, nil
	}

	return &RepoInfo{IsGitRepo: true, Root: root}, nil
}

// RepoRootForFile returns the repository root containing path, or "" when path
// is not inside a repository.
func RepoRootForFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	info, err := GetRepoInfo(filepath.Dir(abs))
	if err != nil || !info.IsGitRepo {
		return ""
	}
	return info.Root
}

// runGitCommand executes a git command and returns the trimmed output
func runGitCommand(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	// Suppress stderr to avoid noise when not in a git repository
	cmd.Stderr = nil

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}
