package sync

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/adapters/dreo"
	"github.com/frostdev-ops/dreo-bridge-go/internal/config"
	"github.com/frostdev-ops/dreo-bridge-go/internal/metrics"
)

const modelConfigsPath = "configs/models.yaml"

// Engine assembles the whole sync pipeline: cloud login, device
// enumeration, one coordinator per device, scheduled polling, and the
// best-effort push channel. One engine instance is tied to one cloud
// account session and is explicitly owned by its creator.
type Engine struct {
	cfg       *config.Config
	logger    *logrus.Logger
	collector *metrics.Collector

	client    *dreo.Client
	registry  *Registry
	scheduler *Scheduler
	recorder  *Recorder
	push      *dreo.PushClient
	devices   []dreo.Device

	stopOnce sync.Once
}

// NewEngine creates an engine from configuration. Start performs the
// actual login and setup.
func NewEngine(cfg *config.Config, collector *metrics.Collector, logger *logrus.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		client:    dreo.NewClient(cfg.Dreo.Username, cfg.Dreo.Password, logger),
		registry:  NewRegistry(collector, logger),
		scheduler: NewScheduler(cfg.Sync.PollIntervalDuration(), cfg.Sync.PollTimeoutDuration(), logger),
	}
}

// Start logs in, builds one coordinator per device and starts the poll
// scheduler and the push channel. Only login and enumeration failures
// propagate; everything later is contained per device or degrades to
// poll-only operation.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.client.Login(ctx); err != nil {
		return err
	}

	devices, err := e.client.GetDevices(ctx)
	if err != nil {
		return err
	}
	e.devices = devices

	if e.cfg.Recorder.Enabled {
		recorder, err := NewRecorder(e.cfg.Recorder.Path, e.logger)
		if err != nil {
			e.logger.WithError(err).Warn("Event recorder disabled")
		} else {
			e.recorder = recorder
		}
	}

	fallbacks, err := dreo.LoadModelConfigs(modelConfigsPath)
	if err != nil {
		e.logger.WithError(err).Warn("Ignoring fallback model configs")
		fallbacks = dreo.ModelConfigSet{}
	}

	processor := dreo.NewStateProcessor()
	for _, device := range devices {
		e.setupCoordinator(ctx, device, processor, fallbacks)
	}
	e.logger.WithField("device_count", e.registry.Len()).Info("Device coordinators ready")

	e.scheduler.Start()

	if e.cfg.Push.Enabled {
		e.startPush(ctx)
	} else {
		e.logger.Info("Push channel disabled by configuration")
	}

	return nil
}

// setupCoordinator builds, seeds and registers the coordinator for one
// device-list entry. Failures stay contained to this device.
func (e *Engine) setupCoordinator(ctx context.Context, device dreo.Device, processor dreo.DataProcessor, fallbacks dreo.ModelConfigSet) {
	log := e.logger.WithFields(logrus.Fields{
		"device_sn": device.SN,
		"model":     device.Model,
	})

	if device.SN == "" || device.Model == "" || device.Type == "" {
		log.Warn("Skipping device-list entry with missing identity fields")
		return
	}
	if _, exists := e.registry.Get(device.SN); exists {
		return
	}

	modelConfig := device.ModelConfig
	if modelConfig == nil {
		modelConfig = fallbacks.For(device.Model)
		if modelConfig == nil {
			log.Warn("No model config available, exposing raw attributes")
		}
	}

	coordinator := NewCoordinator(
		device.SN, device.Model, device.Type,
		modelConfig, e.client, processor,
		e.collector, e.recorder, e.logger,
	)

	if len(device.State) > 0 {
		log.Debug("Seeding coordinator from device-list state")
		if err := coordinator.Seed(ctx, device.State); err != nil {
			log.WithError(err).Warn("Initial state unavailable, will retry on schedule")
		}
	} else if err := coordinator.Poll(ctx); err != nil {
		log.WithError(err).Warn("First poll failed, will retry on schedule")
	}

	e.registry.Register(coordinator)
	if err := e.scheduler.Add(coordinator); err != nil {
		log.WithError(err).Error("Failed to schedule polls")
	}
}

// startPush performs the app-api login and starts the websocket
// client. Any failure here disables push for the session; polling is
// unaffected.
func (e *Engine) startPush(ctx context.Context) {
	region := e.cfg.Dreo.Region
	if region == "" {
		region = dreo.RegionFromToken(e.client.AccessToken())
		if region == "" {
			e.logger.Warn("Token carries no region suffix, assuming NA")
			region = "NA"
		}
	}

	token := dreo.LoginAppAPI(ctx, e.cfg.Dreo.Username, e.client.PasswordHash(), region, e.logger)
	if token == "" {
		e.logger.Warn("Could not obtain app-api token; push channel disabled")
		return
	}

	e.push = dreo.NewPushClient(token, region, e.registry, e.collector, e.logger)
	e.push.SetIntervals(
		time.Duration(e.cfg.Push.PingInterval)*time.Second,
		time.Duration(e.cfg.Push.ReconnectDelay)*time.Second,
	)
	e.push.Start()
}

// Stop tears the engine down: push first, so no frame arrives for a
// coordinator being discarded, then the scheduler and the recorder.
// Idempotent.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.push != nil {
			e.push.Stop()
		}
		e.scheduler.Stop()
		if err := e.recorder.Close(); err != nil {
			e.logger.WithError(err).Debug("Failed to close event recorder")
		}
		e.logger.Info("Sync engine stopped")
	})
}

// Connected reports whether the push websocket is currently open.
// Informational only: polling is authoritative regardless.
func (e *Engine) Connected() bool {
	return e.push != nil && e.push.IsConnected()
}

// Registry returns the coordinator registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Devices returns the enumerated device list.
func (e *Engine) Devices() []dreo.Device {
	return e.devices
}
