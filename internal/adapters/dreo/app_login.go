package dreo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	appAPIBaseURL = "https://app-api-%s.dreo-tech.com"
	appLoginPath  = "/api/oauth/login"

	// Mobile-app OAuth credentials, shared with the community pydreo
	// library. The websocket endpoint only accepts tokens from this
	// login, not the open-api ones.
	appClientID     = "7de37c362ee54dcf9c4561812309347a"
	appClientSecret = "32dfa0764f25451d99f94e1693498791"
	appHimei        = "faede31549d649f58864093158787ec9"
)

// appLoginEndpoint is a template taking the region slug; swapped out
// by tests.
var appLoginEndpoint = appAPIBaseURL + appLoginPath

// LoginAppAPI logs in via the app-api to obtain a token the websocket
// endpoint accepts. Returns an empty token on any failure; push is
// best-effort, so callers log a warning and continue without it.
func LoginAppAPI(ctx context.Context, username, passwordHash, region string, logger *logrus.Logger) string {
	slug, _ := RegionSlug(region)
	endpoint := fmt.Sprintf(appLoginEndpoint, slug) +
		"?timestamp=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	body := map[string]interface{}{
		"acceptLanguage": "en",
		"client_id":      appClientID,
		"client_secret":  appClientSecret,
		"email":          username,
		"encrypt":        "ciphertext",
		"grant_type":     "email-password",
		"himei":          appHimei,
		"password":       passwordHash,
		"scope":          "all",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		logger.WithError(err).Warn("Failed to encode app-api login request")
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		logger.WithError(err).Warn("Failed to create app-api login request")
		return ""
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("UA", openUserAgent)
	req.Header.Set("Lang", "en")
	req.Header.Set("User-Agent", "okhttp/4.9.1")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Warn("App-api login request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithField("status", resp.StatusCode).Warn("App-api login failed")
		return ""
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		logger.WithError(err).Warn("Invalid app-api login response")
		return ""
	}
	if envelope.Code != 0 {
		logger.WithField("msg", envelope.Msg).Warn("App-api login rejected")
		return ""
	}

	var result loginResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil || result.AccessToken == "" {
		logger.Warn("App-api login returned no token")
		return ""
	}

	logger.Info("App-api login succeeded for websocket")
	return result.AccessToken
}
