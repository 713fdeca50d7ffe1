package archive

import (
	"database/sql"
	"errors"

	"github.com/rileyhilliard/sensormon/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS schema_versions (
	    version    INTEGER PRIMARY KEY,
	    applied_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sessions (
	    id         INTEGER PRIMARY KEY AUTOINCREMENT,
	    started_at INTEGER NOT NULL,
	    source     TEXT NOT NULL,
	    preset     TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS readings (
	    session_id INTEGER NOT NULL REFERENCES sessions(id),
	    ts         INTEGER NOT NULL,
	    elapsed    REAL NOT NULL,
	    channel    TEXT NOT NULL,
	    value      REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS readings_session ON readings(session_id, ts);`

	insertSessionSQL = `INSERT INTO sessions (started_at, source, preset) VALUES (?, ?, ?)`

	insertReadingSQL = `
	INSERT INTO readings (session_id, ts, elapsed, channel, value)
	VALUES (?, ?, ?, ?, ?)`
)

// initSchema creates the tables and records the schema version once.
func initSchema(db *sql.DB, log logger.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug("rollback schema: %v", err)
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return err
	}
	if _, err := tx.Exec(`
	    INSERT OR IGNORE INTO schema_versions (version, applied_at)
	    VALUES (?, datetime('now'))`, SchemaVersion); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
