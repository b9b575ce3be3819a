package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/adapters/dreo"
	"github.com/frostdev-ops/dreo-bridge-go/internal/metrics"
)

// StateFetcher fetches the full raw state of one device from the
// cloud API.
type StateFetcher interface {
	GetDeviceState(ctx context.Context, deviceSN string) (map[string]interface{}, error)
}

// Coordinator owns the state of one device. It accepts full snapshots
// from the poll channel and partial updates from the push channel,
// keeps the last raw snapshot so partials can be merged against a
// complete base, and fans out change notifications.
//
// The two channels are independently paced and unordered; whichever
// update commits last wins for that instant. That is inherent to the
// design and tolerated through merge-not-replace semantics.
type Coordinator struct {
	deviceSN    string
	model       string
	deviceType  string
	modelConfig map[string]interface{}
	fetcher     StateFetcher
	processor   dreo.DataProcessor
	collector   *metrics.Collector
	recorder    *Recorder
	logger      *logrus.Logger

	mu        sync.Mutex
	lastRaw   map[string]interface{}
	data      map[string]interface{}
	listeners []func()
}

// NewCoordinator creates a coordinator for one device.
func NewCoordinator(
	deviceSN, model, deviceType string,
	modelConfig map[string]interface{},
	fetcher StateFetcher,
	processor dreo.DataProcessor,
	collector *metrics.Collector,
	recorder *Recorder,
	logger *logrus.Logger,
) *Coordinator {
	return &Coordinator{
		deviceSN:    deviceSN,
		model:       model,
		deviceType:  deviceType,
		modelConfig: modelConfig,
		fetcher:     fetcher,
		processor:   processor,
		collector:   collector,
		recorder:    recorder,
		logger:      logger,
	}
}

// DeviceSN returns the device serial number.
func (c *Coordinator) DeviceSN() string { return c.deviceSN }

// Model returns the device model.
func (c *Coordinator) Model() string { return c.model }

// DeviceType returns the device type.
func (c *Coordinator) DeviceType() string { return c.deviceType }

// HasData reports whether a normalized state has been established.
func (c *Coordinator) HasData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data != nil
}

// CurrentState returns the last good normalized state, or nil before
// the first successful seed or poll. Callers must treat the returned
// map as read-only.
func (c *Coordinator) CurrentState() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// AddListener registers a change-notification hook, invoked after
// every successful update from any source.
func (c *Coordinator) AddListener(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Seed establishes the initial state from a device-list snapshot
// without a network call. If the snapshot cannot be processed, it is
// discarded and one poll is issued to self-heal.
func (c *Coordinator) Seed(ctx context.Context, raw map[string]interface{}) error {
	snapshot := copyState(raw)

	c.mu.Lock()
	processed, err := c.processor.Process(snapshot, c.modelConfig)
	if err != nil {
		c.mu.Unlock()
		c.logger.WithError(err).WithField("device_sn", c.deviceSN).
			Warn("Failed to process initial state, fetching fresh")
		return c.Poll(ctx)
	}
	c.lastRaw = snapshot
	c.data = processed
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.collector.Update("seed")
	c.recorder.Record(c.deviceSN, "seed", len(snapshot))
	notify(listeners)
	return nil
}

// Poll fetches a fresh snapshot from the cloud, replaces the stored
// raw state wholesale and reprocesses. Fetch and processing failures
// leave the previous state intact and surface to the caller; retry
// policy belongs to the scheduler.
func (c *Coordinator) Poll(ctx context.Context) error {
	raw, err := c.fetcher.GetDeviceState(ctx, c.deviceSN)
	if err != nil {
		c.collector.Poll("error")
		return fmt.Errorf("failed to poll state for %s: %w", c.deviceSN, err)
	}

	c.mu.Lock()
	processed, err := c.processor.Process(raw, c.modelConfig)
	if err != nil {
		c.mu.Unlock()
		c.collector.Poll("unprocessable")
		return fmt.Errorf("failed to process polled state for %s: %w", c.deviceSN, err)
	}
	c.lastRaw = copyState(raw)
	c.data = processed
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.collector.Poll("ok")
	c.collector.Update("poll")
	c.recorder.Record(c.deviceSN, "poll", len(raw))
	notify(listeners)
	return nil
}

// ApplyPushUpdate merges a partial update into the stored raw snapshot
// and reprocesses. Keys absent from the update are preserved. If the
// merged snapshot cannot be processed, the merge is rolled back and
// the update dropped; push failures never disturb the last good state.
func (c *Coordinator) ApplyPushUpdate(reported map[string]interface{}) {
	if len(reported) == 0 {
		return
	}

	c.mu.Lock()
	merged := copyState(c.lastRaw)
	for k, v := range reported {
		merged[k] = v
	}

	processed, err := c.processor.Process(merged, c.modelConfig)
	if err != nil {
		// The merge only lives in the local copy, so the stored
		// snapshot is untouched.
		c.mu.Unlock()
		c.collector.Rollback()
		c.logger.WithError(err).WithField("device_sn", c.deviceSN).
			Warn("Dropping unprocessable push update")
		return
	}
	c.lastRaw = merged
	c.data = processed
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.collector.Update("push")
	c.recorder.Record(c.deviceSN, "push", len(reported))
	notify(listeners)
}

// snapshotListeners must be called with the mutex held.
func (c *Coordinator) snapshotListeners() []func() {
	out := make([]func(), len(c.listeners))
	copy(out, c.listeners)
	return out
}

// notify runs outside the coordinator lock so listeners may call back
// into CurrentState.
func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}

func copyState(state map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out
}
