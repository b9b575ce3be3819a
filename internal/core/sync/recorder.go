package sync

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS state_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	device_sn  TEXT NOT NULL,
	source     TEXT NOT NULL,
	key_count  INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_state_events_device ON state_events(device_sn, created_at);
`

// Recorder appends one row per successful state update to a local
// sqlite database, for debugging the interleaving of the two update
// channels. The engine never reads it back; it is not state
// persistence. A nil *Recorder records nothing.
type Recorder struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewRecorder opens (or creates) the event database.
func NewRecorder(path string, logger *logrus.Logger) (*Recorder, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}
	if _, err := db.Exec(createEventsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events schema: %w", err)
	}
	return &Recorder{db: db, logger: logger}, nil
}

// Record appends one update event. Write failures are logged, never
// raised: recording is diagnostics, not correctness.
func (r *Recorder) Record(deviceSN, source string, keyCount int) {
	if r == nil {
		return
	}
	_, err := r.db.Exec(
		`INSERT INTO state_events (device_sn, source, key_count, created_at) VALUES (?, ?, ?, ?)`,
		deviceSN, source, keyCount, time.Now().UTC(),
	)
	if err != nil {
		r.logger.WithError(err).Debug("Failed to record state event")
	}
}

// Close closes the database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}
