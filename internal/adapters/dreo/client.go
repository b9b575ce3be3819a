package dreo

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	openAPIBaseURL = "https://open-api-%s.dreo-tech.com"
	loginPath      = "/api/oauth/login"
	deviceListPath = "/api/v2/user-devices/device/list"
	devicePath     = "/api/user-device/device/state"

	openClientID     = "89ef537b2202481aaaf9077068bcb0c9"
	openClientSecret = "8c2d9e8103a34b6e8cb5d4b9f5a2d1c8"
	openUserAgent    = "dreo/2.8.2"
)

// Client talks to the Dreo open-api: account login, device
// enumeration and per-device state polling. The websocket push channel
// uses a separate login (see LoginAppAPI) — the two tokens are not
// interchangeable.
type Client struct {
	username   string
	password   string
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	token      *oauth2.Token
	regionSlug string
}

// NewClient creates a Dreo open-api client. Login must be called
// before any other operation.
func NewClient(username, password string, logger *logrus.Logger) *Client {
	return &Client{
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		baseURL:    fmt.Sprintf(openAPIBaseURL, defaultRegionSlug),
		regionSlug: defaultRegionSlug,
	}
}

// PasswordHash returns the MD5 digest the cloud expects instead of the
// clear-text password. The app-api login reuses the same digest.
func (c *Client) PasswordHash() string {
	sum := md5.Sum([]byte(c.password))
	return hex.EncodeToString(sum[:])
}

// Login authenticates against the open-api and stores the access
// token. A rejected credential pair returns ErrAuthFailed; transport
// and server failures return ErrServiceUnavailable.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]interface{}{
		"client_id":     openClientID,
		"client_secret": openClientSecret,
		"grant_type":    "openapi",
		"scope":         "all",
		"email":         c.username,
		"password":      c.PasswordHash(),
	}

	var result loginResult
	if err := c.post(ctx, loginPath, body, &result); err != nil {
		return err
	}
	if result.AccessToken == "" {
		return fmt.Errorf("%w: login succeeded without token", ErrInvalidResponse)
	}

	c.token = &oauth2.Token{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	}
	if result.ExpiresIn > 0 {
		c.token.Expiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	}

	c.resolveRegion(result.AccessToken)
	c.logger.WithField("region", c.regionSlug).Info("Dreo open-api login successful")
	return nil
}

// resolveRegion derives the account region from the token suffix and
// repoints the client at the regional endpoint.
func (c *Client) resolveRegion(token string) {
	region := RegionFromToken(token)
	slug, known := RegionSlug(region)
	if !known {
		c.logger.WithField("region", region).Warn("Unrecognized token region, falling back to default")
	}
	c.regionSlug = slug
	c.baseURL = fmt.Sprintf(openAPIBaseURL, slug)
}

// Region returns the resolved region slug ("us", "eu").
func (c *Client) Region() string {
	return c.regionSlug
}

// AccessToken returns the open-api token, or empty before login.
func (c *Client) AccessToken() string {
	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

// GetDevices lists the account's devices. Entries may embed a state
// snapshot usable for coordinator seeding.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	if c.token == nil {
		return nil, ErrNotLoggedIn
	}

	var result deviceListResult
	if err := c.get(ctx, deviceListPath, nil, &result); err != nil {
		return nil, err
	}

	c.logger.WithField("device_count", len(result.List)).Debug("Fetched device list")
	return result.List, nil
}

// GetDeviceState fetches the full raw state of one device.
func (c *Client) GetDeviceState(ctx context.Context, deviceSN string) (map[string]interface{}, error) {
	if c.token == nil {
		return nil, ErrNotLoggedIn
	}

	query := url.Values{"deviceSn": {deviceSN}}
	var result deviceStateResult
	if err := c.get(ctx, devicePath, query, &result); err != nil {
		return nil, err
	}
	if result.Mixed == nil {
		return nil, fmt.Errorf("%w: state response missing payload", ErrInvalidResponse)
	}

	return result.Mixed, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + path + "?timestamp=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("UA", openUserAgent)

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if query == nil {
		query = url.Values{}
	}
	query.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	endpoint += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("UA", openUserAgent)
	if c.token != nil {
		c.token.SetAuthHeader(req)
	}

	return c.do(req, out)
}

// do executes a request and unwraps the {code, msg, data} envelope.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, string(raw))
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if envelope.Code != 0 {
		// Business-level rejections on the login path mean bad credentials
		if req.URL.Path == loginPath {
			return fmt.Errorf("%w: %s", ErrAuthFailed, envelope.Msg)
		}
		return fmt.Errorf("%w: code %d: %s", ErrServiceUnavailable, envelope.Code, envelope.Msg)
	}

	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return nil
}
