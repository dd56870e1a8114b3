package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lubluniky/smsglobal-client-go/internal/signing"
)

// APIError represents a non-2xx response from the SMSGlobal API. Verb calls
// never return it directly; it is obtained from Result.Err.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("smsglobal: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is maps well-known status codes onto the sentinel errors below.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Sentinel errors for common HTTP status codes.
var (
	ErrUnauthorized = errors.New("smsglobal: unauthorized (401)")
	ErrForbidden    = errors.New("smsglobal: forbidden (403)")
	ErrNotFound     = errors.New("smsglobal: not found (404)")
	ErrRateLimited  = errors.New("smsglobal: rate limited (429)")
)

// Configuration sentinels, wrapped by ConfigurationError.
var (
	ErrUnsupportedHashAlgorithm = signing.ErrUnsupportedAlgorithm
	ErrInvalidProtocol          = errors.New("protocol must be http or https")
	ErrMissingValue             = errors.New("value is required")
)

// ConfigurationError indicates a client setting that cannot work. It is
// returned before any request is sent.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("smsglobal config: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransportError describes a request that got no HTTP response.
type TransportError struct {
	Method      string
	URL         string
	RequestDump string
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("smsglobal: %s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("smsglobal validation: %s: %s", e.Field, e.Message)
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
