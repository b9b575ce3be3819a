package sync

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/dreo-bridge-go/internal/config"
)

func newTestEngine() *Engine {
	cfg := &config.Config{
		Dreo: config.DreoConfig{Username: "user@example.com", Password: "secret"},
		Sync: config.SyncConfig{PollInterval: "60s", PollTimeout: "10s"},
		Push: config.PushConfig{Enabled: true, PingInterval: 15, ReconnectDelay: 5},
	}
	return NewEngine(cfg, nil, logrus.New())
}

func TestEngineStopIsIdempotent(t *testing.T) {
	e := newTestEngine()

	// Safe before Start and when called repeatedly
	e.Stop()
	e.Stop()
}

func TestEngineWithoutPushStaysDisconnected(t *testing.T) {
	e := newTestEngine()

	// No push client: polling-only operation is fully functional
	assert.False(t, e.Connected())
	require.NotNil(t, e.Registry())

	c := newTestCoordinator(&stubFetcher{}, nil)
	e.Registry().Register(c)
	e.Registry().Route("ABC123", map[string]interface{}{"power": true})

	assert.Equal(t, map[string]interface{}{"power": true}, c.CurrentState())
}
