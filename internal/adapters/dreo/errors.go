package dreo

import (
	"errors"
	"fmt"
	"net/http"
)

// DreoError represents a Dreo cloud-specific error
type DreoError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *DreoError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("Dreo error %d: %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("Dreo error %d: %s", e.Code, e.Message)
}

// Predefined error types
var (
	ErrAuthFailed = &DreoError{
		Code:    http.StatusUnauthorized,
		Message: "Invalid username or password",
	}
	ErrServiceUnavailable = &DreoError{
		Code:    0,
		Message: "Error communicating with Dreo API",
	}
	ErrInvalidResponse = &DreoError{
		Code:    0,
		Message: "Invalid response from Dreo API",
	}
	ErrNotLoggedIn = &DreoError{
		Code:    0,
		Message: "Client is not logged in",
	}
)

// DataShapeError indicates a raw payload the data processor could not
// translate into a normalized attribute set.
type DataShapeError struct {
	Reason string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("unprocessable device state: %s", e.Reason)
}

// IsAuthError checks if the error is an authentication error
func IsAuthError(err error) bool {
	var de *DreoError
	if errors.As(err, &de) {
		return de.Code == http.StatusUnauthorized
	}
	return false
}

// IsDataShapeError checks if the error is a data-shape error
func IsDataShapeError(err error) bool {
	var dse *DataShapeError
	return errors.As(err, &dse)
}
