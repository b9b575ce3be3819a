package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/adapters/dreo"
	"github.com/frostdev-ops/dreo-bridge-go/internal/config"
	devsync "github.com/frostdev-ops/dreo-bridge-go/internal/core/sync"
	"github.com/frostdev-ops/dreo-bridge-go/pkg/errors"
	"github.com/frostdev-ops/dreo-bridge-go/pkg/utils"
)

const redacted = "**REDACTED**"

// SyncEngine is the slice of the engine the API needs.
type SyncEngine interface {
	Registry() *devsync.Registry
	Devices() []dreo.Device
	Connected() bool
}

// Handlers serves the read/diagnostics API.
type Handlers struct {
	cfg    *config.Config
	engine SyncEngine
	logger *logrus.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(cfg *config.Config, engine SyncEngine, logger *logrus.Logger) *Handlers {
	return &Handlers{cfg: cfg, engine: engine, logger: logger}
}

// Health reports service liveness and push connectivity. Push being
// down is not unhealthy; polling keeps state flowing.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"websocket_connected": h.engine.Connected(),
		"device_count":        h.engine.Registry().Len(),
	})
}

// ListDevices returns the tracked devices and their sync status.
func (h *Handlers) ListDevices(c *gin.Context) {
	devices := h.engine.Devices()
	out := make([]gin.H, 0, len(devices))
	for _, device := range devices {
		entry := gin.H{
			"device_sn":   device.SN,
			"model":       device.Model,
			"device_type": device.Type,
			"name":        device.Name,
			"has_data":    false,
		}
		if coordinator, ok := h.engine.Registry().Get(device.SN); ok {
			entry["has_data"] = coordinator.HasData()
		}
		out = append(out, entry)
	}
	utils.SendSuccess(c, out)
}

// GetDeviceState returns the normalized state of one device.
func (h *Handlers) GetDeviceState(c *gin.Context) {
	deviceSN := c.Param("sn")

	coordinator, ok := h.engine.Registry().Get(deviceSN)
	if !ok {
		utils.SendAppError(c, errors.WithDetails(errors.ErrNotFound, "unknown device"))
		return
	}

	state := coordinator.CurrentState()
	if state == nil {
		utils.SendAppError(c, errors.WithDetails(errors.ErrNotFound, "no state available yet"))
		return
	}

	utils.SendSuccess(c, gin.H{
		"device_sn": deviceSN,
		"state":     state,
	})
}

// Diagnostics returns a redacted snapshot of the bridge configuration
// and per-device sync status, safe to attach to a bug report.
func (h *Handlers) Diagnostics(c *gin.Context) {
	devices := h.engine.Devices()
	deviceDiags := make([]gin.H, 0, len(devices))
	for _, device := range devices {
		entry := gin.H{
			"device_sn":   redacted,
			"model":       device.Model,
			"device_type": device.Type,
		}
		entry["coordinator_has_data"] = false
		if coordinator, ok := h.engine.Registry().Get(device.SN); ok {
			entry["coordinator_has_data"] = coordinator.HasData()
		}
		deviceDiags = append(deviceDiags, entry)
	}

	utils.SendSuccess(c, gin.H{
		"config": gin.H{
			"username":      redacted,
			"password":      redacted,
			"region":        h.cfg.Dreo.Region,
			"poll_interval": h.cfg.Sync.PollInterval,
			"push_enabled":  h.cfg.Push.Enabled,
		},
		"websocket_connected": h.engine.Connected(),
		"devices":             deviceDiags,
	})
}
