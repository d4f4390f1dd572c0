package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const currentDatabaseVersion = 1

// ensureDatabaseVersion checks the version file of the database at dbPath.
// It reports whether the database is new, in which case the caller writes
// the version file once the database is created.
func ensureDatabaseVersion(dbPath string) (isNew bool, err error) {
	versionBytes, err := os.ReadFile(versionFilePath(dbPath))
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.WithStack(err)
	}

	databaseVersion, err := strconv.Atoi(strings.TrimSpace(string(versionBytes)))
	if err != nil {
		return false, errors.Wrapf(err, "malformed database version file in %s", dbPath)
	}

	if databaseVersion != currentDatabaseVersion {
		return false, errors.Errorf("Invalid database version %d. Expected version: %d",
			databaseVersion, currentDatabaseVersion)
	}

	return false, nil
}

func createDatabaseVersionFile(dbPath string) error {
	err := os.WriteFile(versionFilePath(dbPath), []byte(strconv.Itoa(currentDatabaseVersion)), 0600)
	return errors.WithStack(err)
}

func versionFilePath(dbPath string) string {
	return filepath.Join(dbPath, "version")
}
