package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Result is the normalized outcome of one verb call.
//
// When the server answered, StatusCode is set and Payload holds the decoded
// JSON body, whatever the status. When no response was received,
// StatusCode is 0 and RequestDump describes what was attempted.
type Result struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte

	// Payload is the decoded body: map[string]any, []any, string,
	// json.Number, bool or nil.
	Payload any

	RequestDump  string
	TransportErr error
}

// HasResponse reports whether the server returned an HTTP response.
func (r *Result) HasResponse() bool { return r.StatusCode != 0 }

// IsSuccess reports a 2xx response.
func (r *Result) IsSuccess() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Decode unmarshals the raw body into v.
func (r *Result) Decode(v any) error {
	if !r.HasResponse() {
		return r.Err()
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("smsglobal: decoding %s %s response: %w", r.Method, r.URL, err)
	}
	return nil
}

// Err returns nil for 2xx results, an *APIError for other statuses and a
// *TransportError when no response was received.
func (r *Result) Err() error {
	if !r.HasResponse() {
		return &TransportError{
			Method:      r.Method,
			URL:         r.URL,
			RequestDump: r.RequestDump,
			Err:         r.TransportErr,
		}
	}
	if r.IsSuccess() {
		return nil
	}

	msg := strings.TrimSpace(string(r.Body))
	if msg == "" {
		msg = http.StatusText(r.StatusCode)
	}
	path := r.URL
	if u, err := url.Parse(r.URL); err == nil {
		path = u.Path
	}
	return &APIError{
		StatusCode: r.StatusCode,
		Method:     r.Method,
		Path:       path,
		Message:    msg,
	}
}

// String returns the request dump for failed transports and the raw body
// otherwise.
func (r *Result) String() string {
	if !r.HasResponse() {
		return r.RequestDump
	}
	return string(r.Body)
}
