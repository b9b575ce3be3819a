package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus metrics for the sync engine. A nil
// *Collector is valid and records nothing, so components can be used
// without instrumentation in tests.
type Collector struct {
	pushFrames     *prometheus.CounterVec
	pushReconnects prometheus.Counter
	pushConnected  prometheus.Gauge
	polls          *prometheus.CounterVec
	updates        *prometheus.CounterVec
	rollbacks      prometheus.Counter
}

// NewCollector registers the engine metrics with the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		pushFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dreo_push_frames_total",
				Help: "Push frames by outcome (dispatched, dropped, unroutable)",
			},
			[]string{"outcome"},
		),
		pushReconnects: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dreo_push_reconnects_total",
				Help: "Number of websocket reconnect attempts",
			},
		),
		pushConnected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dreo_push_connected",
				Help: "Whether the push websocket is currently open",
			},
		),
		polls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dreo_polls_total",
				Help: "Device state polls by result",
			},
			[]string{"result"},
		),
		updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dreo_state_updates_total",
				Help: "Successful state updates by source (seed, poll, push)",
			},
			[]string{"source"},
		),
		rollbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dreo_push_rollbacks_total",
				Help: "Push merges rolled back after processing failure",
			},
		),
	}
}

// PushFrame counts one inbound frame outcome.
func (c *Collector) PushFrame(outcome string) {
	if c == nil {
		return
	}
	c.pushFrames.WithLabelValues(outcome).Inc()
}

// PushReconnect counts one reconnect attempt.
func (c *Collector) PushReconnect() {
	if c == nil {
		return
	}
	c.pushReconnects.Inc()
}

// SetPushConnected records push connectivity.
func (c *Collector) SetPushConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.pushConnected.Set(1)
	} else {
		c.pushConnected.Set(0)
	}
}

// Poll counts one poll by result.
func (c *Collector) Poll(result string) {
	if c == nil {
		return
	}
	c.polls.WithLabelValues(result).Inc()
}

// Update counts one successful state update by source.
func (c *Collector) Update(source string) {
	if c == nil {
		return
	}
	c.updates.WithLabelValues(source).Inc()
}

// Rollback counts one rolled-back push merge.
func (c *Collector) Rollback() {
	if c == nil {
		return
	}
	c.rollbacks.Inc()
}
