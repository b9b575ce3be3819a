package dreo

import "encoding/json"

// apiEnvelope is the standard response wrapper of both the open-api and
// the app-api: a business code (0 on success), a message, and a payload.
type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Device is one entry of the account's device list.
type Device struct {
	SN          string                 `json:"deviceSn"`
	Model       string                 `json:"model"`
	Type        string                 `json:"deviceType"`
	Name        string                 `json:"deviceName"`
	ModelConfig map[string]interface{} `json:"controlsConf"`
	State       map[string]interface{} `json:"state"`
}

// loginResult is the data payload of a successful login.
type loginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// deviceListResult is the data payload of the device-list call.
type deviceListResult struct {
	List []Device `json:"list"`
}

// deviceStateResult is the data payload of the per-device state call.
type deviceStateResult struct {
	Mixed map[string]interface{} `json:"mixed"`
}
