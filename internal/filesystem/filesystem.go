// Package filesystem provides content-addressable storage for generated scripts.
package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/choplin/dbhelpers/internal/config"
)

// hashPrefixLen is how much of the sha256 names a snapshot file.
const hashPrefixLen = 16

// GetSourceDir returns the directory that stores snapshots taken from one source.
func GetSourceDir(source string) string {
	return filepath.Join(config.GetObjectsDir(), config.EncodeSourcePath(source))
}

// SaveSnapshot writes content under the source directory and returns the file
// path and full hash. Identical content from the same source shares one file.
func SaveSnapshot(source, content string) (string, string, error) {
	dir := GetSourceDir(source)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", "", err
	}

	hash := CalculateHash(content)
	filePath := filepath.Join(dir, hash[:hashPrefixLen]+".sql")

	if err := os.WriteFile(filePath, []byte(content), 0o600); err != nil {
		return "", "", err
	}

	return filePath, hash, nil
}

// ReadFile reads a file from disk and returns its contents as a string.
func ReadFile(path string) (string, error) {
	//nolint:gosec // G304: path is from database, controlled by application
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// FileExists reports whether the given path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// VerifyFile ensures the file exists and its SHA-256 hash matches the expected hash.
func VerifyFile(path, expectedHash string) (bool, error) {
	if !FileExists(path) {
		return false, nil
	}

	content, err := ReadFile(path)
	if err != nil {
		return false, err
	}

	return CalculateHash(content) == expectedHash, nil
}

// DeleteAllSnapshots removes the whole objects directory.
func DeleteAllSnapshots() error {
	dir := config.GetObjectsDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(dir)
}

// CalculateHash returns the hex encoded SHA-256 of content.
func CalculateHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
