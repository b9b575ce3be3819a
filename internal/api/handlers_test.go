package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/dreo-bridge-go/internal/adapters/dreo"
	"github.com/frostdev-ops/dreo-bridge-go/internal/config"
	devsync "github.com/frostdev-ops/dreo-bridge-go/internal/core/sync"
)

type stubEngine struct {
	registry  *devsync.Registry
	devices   []dreo.Device
	connected bool
}

func (s *stubEngine) Registry() *devsync.Registry { return s.registry }
func (s *stubEngine) Devices() []dreo.Device      { return s.devices }
func (s *stubEngine) Connected() bool             { return s.connected }

func newTestEngine(t *testing.T) *stubEngine {
	t.Helper()
	logger := logrus.New()

	registry := devsync.NewRegistry(nil, logger)
	coordinator := devsync.NewCoordinator(
		"ABC123", "DR-HTF008S", "fan", nil,
		nil, dreo.NewStateProcessor(), nil, nil, logger,
	)
	require.NoError(t, coordinator.Seed(context.Background(), map[string]interface{}{
		"power": true, "mode": "auto",
	}))
	registry.Register(coordinator)

	return &stubEngine{
		registry: registry,
		devices: []dreo.Device{
			{SN: "ABC123", Model: "DR-HTF008S", Type: "fan", Name: "Bedroom Fan"},
			{SN: "DEF456", Model: "DR-HSH004S", Type: "heater", Name: "Office Heater"},
		},
		connected: true,
	}
}

func newTestRouter(t *testing.T, engine SyncEngine) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Dreo:   config.DreoConfig{Username: "user@example.com", Password: "secret"},
		Sync:   config.SyncConfig{PollInterval: "60s"},
		Push:   config.PushConfig{Enabled: true},
	}
	return NewRouter(cfg, engine, logrus.New())
}

func doRequest(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, newTestEngine(t))

	rec, body := doRequest(t, router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["websocket_connected"])
	assert.Equal(t, float64(1), body["device_count"])
}

func TestListDevices(t *testing.T) {
	router := newTestRouter(t, newTestEngine(t))

	rec, body := doRequest(t, router, "/api/devices")
	require.Equal(t, http.StatusOK, rec.Code)

	devices := body["data"].([]interface{})
	require.Len(t, devices, 2)

	first := devices[0].(map[string]interface{})
	assert.Equal(t, "ABC123", first["device_sn"])
	assert.Equal(t, true, first["has_data"])

	second := devices[1].(map[string]interface{})
	assert.Equal(t, false, second["has_data"], "device without a coordinator has no data")
}

func TestGetDeviceState(t *testing.T) {
	router := newTestRouter(t, newTestEngine(t))

	rec, body := doRequest(t, router, "/api/devices/ABC123/state")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	state := data["state"].(map[string]interface{})
	assert.Equal(t, true, state["power"])
	assert.Equal(t, "auto", state["mode"])
}

func TestGetDeviceStateUnknownDevice(t *testing.T) {
	router := newTestRouter(t, newTestEngine(t))

	rec, _ := doRequest(t, router, "/api/devices/UNKNOWN/state")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiagnosticsRedactsSecrets(t *testing.T) {
	router := newTestRouter(t, newTestEngine(t))

	rec, body := doRequest(t, router, "/api/diagnostics")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	cfg := data["config"].(map[string]interface{})
	assert.Equal(t, redacted, cfg["username"])
	assert.Equal(t, redacted, cfg["password"])

	devices := data["devices"].([]interface{})
	for _, entry := range devices {
		assert.Equal(t, redacted, entry.(map[string]interface{})["device_sn"])
	}
	assert.Equal(t, true, data["websocket_connected"])
}
