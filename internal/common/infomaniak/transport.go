package infomaniak

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Transport performs authenticated API calls. The paginated variants return the
// items of every page already flattened.
type Transport interface {
	Request(ctx context.Context, method Method, path string, body interface{}, query map[string]interface{}) (interface{}, error)
	RequestAllItems(ctx context.Context, method Method, path string, body interface{}, query map[string]interface{}) ([]interface{}, error)
	RequestAllPages(ctx context.Context, method Method, path string, body interface{}, query map[string]interface{}) ([]interface{}, error)
}

// TransportSource hands out a Transport bound to an authentication mode
// ("apiKey" or "oauth2"). An empty mode selects the configured default.
type TransportSource interface {
	Transport(authentication string) (Transport, error)
}

// ErrTokenUnavailable wraps failures to obtain an access token.
var ErrTokenUnavailable = errors.New("infomaniak: access token unavailable")

// ErrUnknownAuthentication is returned for modes other than apiKey and oauth2.
var ErrUnknownAuthentication = errors.New("infomaniak: unknown authentication mode")

// ErrNoCredentials is returned when a known mode has no credentials configured.
var ErrNoCredentials = errors.New("infomaniak: no credentials configured")

// APIError is a non-2xx response, decoded from the
// {"result":"error","error":{"code":...,"description":...}} envelope when present.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Body        string
	RequestID   string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "infomaniak api: status %d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	switch {
	case e.Description != "":
		fmt.Fprintf(&b, ": %s", e.Description)
	case e.Body != "":
		fmt.Fprintf(&b, ": %s", truncate(e.Body, 512))
	}
	return b.String()
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
