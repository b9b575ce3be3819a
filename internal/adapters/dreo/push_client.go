package dreo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/metrics"
)

const (
	pushEndpointURL = "wss://wsb-%s.dreo-tech.com/websocket"

	// The server expects a bare "2" text frame as keep-alive and never
	// acknowledges it.
	pingMessage = "2"

	defaultPingInterval   = 15 * time.Second
	defaultReconnectDelay = 5 * time.Second
)

// Router routes a decoded push frame to the owning device coordinator.
// Unknown devices are a silent no-op, not an error.
type Router interface {
	Route(deviceSN string, reported map[string]interface{})
}

// PushClient maintains the websocket connection that carries real-time
// partial state updates. It reconnects forever with a fixed delay;
// push availability is best-effort and polling stays authoritative, so
// no failure here is ever surfaced beyond the connected flag.
type PushClient struct {
	token      string
	regionSlug string
	router     Router
	logger     *logrus.Logger
	collector  *metrics.Collector

	endpointURL    string
	dialer         *websocket.Dialer
	pingInterval   time.Duration
	reconnectDelay time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewPushClient creates a push client for the given region. The token
// must come from the app-api login; open-api tokens are rejected by
// the websocket endpoint.
func NewPushClient(token, region string, router Router, collector *metrics.Collector, logger *logrus.Logger) *PushClient {
	slug, _ := RegionSlug(region)
	return &PushClient{
		token:          token,
		regionSlug:     slug,
		router:         router,
		logger:         logger,
		collector:      collector,
		endpointURL:    pushEndpointURL,
		dialer:         &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		pingInterval:   defaultPingInterval,
		reconnectDelay: defaultReconnectDelay,
	}
}

// SetIntervals overrides the keep-alive and reconnect timing.
func (c *PushClient) SetIntervals(ping, reconnect time.Duration) {
	if ping > 0 {
		c.pingInterval = ping
	}
	if reconnect > 0 {
		c.reconnectDelay = reconnect
	}
}

// Start launches the connect/reconnect loop. Calling Start on a
// running client is a no-op.
func (c *PushClient) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

// Stop cancels the reconnect loop and closes any open connection.
// Safe to call multiple times and before Start.
func (c *PushClient) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	done := c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		conn.Close()
	}
	<-done
}

// IsConnected reports whether the websocket is currently open.
func (c *PushClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// run keeps reconnecting until the context is cancelled. Every exit
// from connectAndListen is treated as transient, including clean
// remote closes.
func (c *PushClient) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if err := c.connectAndListen(ctx); err != nil && ctx.Err() == nil {
			c.logger.WithError(err).Debugf("Push websocket disconnected, reconnecting in %s", c.reconnectDelay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

// connectAndListen opens one websocket session and consumes frames
// until it closes. The keep-alive goroutine lives exactly as long as
// the session.
func (c *PushClient) connectAndListen(ctx context.Context) error {
	c.collector.PushReconnect()

	endpoint := fmt.Sprintf(c.endpointURL, c.regionSlug) +
		fmt.Sprintf("?accessToken=%s&timestamp=%d", url.QueryEscape(c.token), time.Now().UnixMilli())

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	log := c.logger.WithFields(logrus.Fields{
		"session_id": uuid.NewString(),
		"region":     c.regionSlug,
	})

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.collector.SetPushConnected(true)
	log.Info("Push websocket connected")

	pingCtx, stopPing := context.WithCancel(ctx)
	go c.pingLoop(pingCtx, conn, log)

	// Unblocks the read loop when the client is stopped mid-session.
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	defer func() {
		stopPing()
		conn.Close()
		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
		c.collector.SetPushConnected(false)
	}()

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		// Dispatch synchronously: the next frame is not read until the
		// coordinator has consumed this one.
		c.processMessage(raw, log)
	}
}

// pingLoop sends the keep-alive frame on a fixed cadence from session
// start. A failed send closes the connection, which tears the whole
// session down through the read loop.
func (c *PushClient) pingLoop(ctx context.Context, conn *websocket.Conn, log *logrus.Entry) {
	for {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(pingMessage)); err != nil {
			log.WithError(err).Debug("Keep-alive send failed, closing session")
			conn.Close()
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.pingInterval):
		}
	}
}

// processMessage decodes one inbound frame and routes it. Frames
// missing the device serial or a non-empty reported object are dropped
// without terminating the stream.
func (c *PushClient) processMessage(raw []byte, log *logrus.Entry) {
	var frame map[string]interface{}
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.collector.PushFrame("dropped")
		return
	}

	deviceSN, _ := frame["devicesn"].(string)
	reported, _ := frame["reported"].(map[string]interface{})
	if deviceSN == "" || len(reported) == 0 {
		c.collector.PushFrame("dropped")
		log.Debug("Dropping malformed push frame")
		return
	}

	log.WithFields(logrus.Fields{
		"device_sn": deviceSN,
		"keys":      len(reported),
	}).Debug("Push frame received")

	c.collector.PushFrame("dispatched")
	c.router.Route(deviceSN, reported)
}
