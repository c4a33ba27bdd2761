package storage

import (
	"database/sql"
)

// Schema version tracking. Bumping this invalidates every persisted
// scan result: the old table is dropped rather than migrated, since
// the cache can always be rebuilt from source.
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createScanCacheTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Debug("Scan cache schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// ensureSchema verifies an existing database matches the current
// schema version. Any mismatch is a full-invalidation event: the
// cache tables are dropped and recreated so no lookup can ever
// deserialize records written under a different layout.
func (db *DB) ensureSchema() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		// Unreadable version table counts as a mismatch.
		version = -1
	}

	if version == currentSchemaVersion {
		return nil
	}

	db.logger.Warn("Scan cache schema mismatch, invalidating", map[string]interface{}{
		"found":    version,
		"expected": currentSchemaVersion,
	})

	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DROP TABLE IF EXISTS scan_cache"); err != nil {
			return err
		}
		if _, err := tx.Exec("DROP TABLE IF EXISTS schema_version"); err != nil {
			return err
		}
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createScanCacheTable(tx); err != nil {
			return err
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createScanCacheTable creates the per-file scan result table.
// One row per path: INSERT OR REPLACE supersedes the previous entry
// when a file's signature changes, so there is never more than one
// authoritative entry per path.
func createScanCacheTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS scan_cache (
			path TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			mtime_ns INTEGER NOT NULL,
			records BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}
