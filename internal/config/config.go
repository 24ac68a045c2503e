// Package config resolves where dbhelpers keeps its data and which defaults the
// commands start from.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// DefaultTranscriptPath is the console log extracted when no path is given.
const DefaultTranscriptPath = "../exercises/exercise_01_borrowing_returning.txt"

// LoadEnvFile loads variables from a .env file in the working directory without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// GetDataDir resolves the base directory for the run index and snapshots. It
// checks DBHELPERS_DIR first, then XDG paths, and finally falls back to the
// user's home directory.
func GetDataDir() string {
	if explicit := os.Getenv("DBHELPERS_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "dbhelpers")
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "dbhelpers")
}

// GetDBPath returns the absolute path to the SQLite run index.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "index.db")
}

// GetObjectsDir returns the directory that stores script snapshots.
func GetObjectsDir() string {
	return filepath.Join(GetDataDir(), "objects")
}

// GetDSN returns the MySQL DSN used by truncate --exec.
func GetDSN() string {
	return os.Getenv("DB_DSN")
}

// GetLogFormat returns the configured log format, "pretty" when unset.
func GetLogFormat() string {
	if v := os.Getenv("DBHELPERS_LOG_FORMAT"); v != "" {
		return v
	}
	return "pretty"
}

// GetLogLevel returns the configured log level, "info" when unset.
func GetLogLevel() string {
	if v := os.Getenv("DBHELPERS_LOG_LEVEL"); v != "" {
		return v
	}
	return "info"
}

// EncodeSourcePath sanitizes input paths so they can be used as directory names.
func EncodeSourcePath(sourcePath string) string {
	replacer := strings.NewReplacer("/", "-", ".", "-", "_", "-", "\\", "-", ":", "-")
	return replacer.Replace(sourcePath)
}
