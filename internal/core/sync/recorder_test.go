package sync

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAppendsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	r, err := NewRecorder(path, logrus.New())
	require.NoError(t, err)
	defer r.Close()

	r.Record("ABC123", "seed", 3)
	r.Record("ABC123", "push", 1)
	r.Record("DEF456", "poll", 5)

	var count int
	require.NoError(t, r.db.Get(&count, `SELECT COUNT(*) FROM state_events WHERE device_sn = ?`, "ABC123"))
	assert.Equal(t, 2, count)

	var source string
	require.NoError(t, r.db.Get(&source, `SELECT source FROM state_events WHERE device_sn = ?`, "DEF456"))
	assert.Equal(t, "poll", source)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Record("ABC123", "seed", 1)
	assert.NoError(t, r.Close())
}
