package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
)

const maxErrorBodyBytes = 64 << 10

// APIError is a non-2xx response from the Parse server
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parse server returned %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap makes every APIError a transport failure
func (e *APIError) Unwrap() error {
	return analytics.ErrTransportFailure
}

// decodeAPIError reads the error body of resp. Bodies that are not Parse
// JSON errors fall back to the HTTP status text.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
