package sync

import (
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/metrics"
)

// Registry maps device serial numbers to their coordinators and routes
// incoming push frames. It is populated once during startup, before
// the push client starts, and read-only afterwards — lookups therefore
// need no locking.
type Registry struct {
	coordinators map[string]*Coordinator
	collector    *metrics.Collector
	logger       *logrus.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(collector *metrics.Collector, logger *logrus.Logger) *Registry {
	return &Registry{
		coordinators: make(map[string]*Coordinator),
		collector:    collector,
		logger:       logger,
	}
}

// Register adds a coordinator. The first registration for a serial
// wins; later ones are ignored.
func (r *Registry) Register(c *Coordinator) bool {
	if _, exists := r.coordinators[c.DeviceSN()]; exists {
		return false
	}
	r.coordinators[c.DeviceSN()] = c
	return true
}

// Get looks up the coordinator for a device.
func (r *Registry) Get(deviceSN string) (*Coordinator, bool) {
	c, ok := r.coordinators[deviceSN]
	return c, ok
}

// All returns every registered coordinator.
func (r *Registry) All() []*Coordinator {
	out := make([]*Coordinator, 0, len(r.coordinators))
	for _, c := range r.coordinators {
		out = append(out, c)
	}
	return out
}

// Len returns the number of registered coordinators.
func (r *Registry) Len() int {
	return len(r.coordinators)
}

// Route implements the push client's Router. A frame for an unknown
// device is a normal no-op: the device is not tracked here, or not
// known yet.
func (r *Registry) Route(deviceSN string, reported map[string]interface{}) {
	c, ok := r.coordinators[deviceSN]
	if !ok {
		r.collector.PushFrame("unroutable")
		r.logger.WithField("device_sn", deviceSN).Debug("Push frame for unknown device, ignoring")
		return
	}
	c.ApplyPushUpdate(reported)
}
