package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lubluniky/smsglobal-client-go/internal/signing"
	"github.com/lubluniky/smsglobal-client-go/internal/transport"
)

// Credentials holds the SMSGlobal REST API key pair and the HMAC algorithm
// name (for example "sha256").
type Credentials struct {
	APIKey        string
	SecretKey     string
	HashAlgorithm string
}

// ConnectionConfig locates the REST API.
type ConnectionConfig struct {
	Host       string
	Protocol   string // "http" or "https", any case
	Port       int    // signed, never added to the URL
	APIVersion string
}

// BaseURL returns protocol://host/apiVersion with the protocol lowercased.
func (c ConnectionConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s/%s", strings.ToLower(c.Protocol), c.Host, c.APIVersion)
}

// Client signs and dispatches requests to the SMSGlobal REST API.
// Its fields are fixed after NewClient, so one Client may serve concurrent
// calls as long as the underlying *http.Client allows it.
type Client struct {
	conn    ConnectionConfig
	baseURL string
	signer  *signing.Signer
	http    *transport.HTTPClient
	logger  zerolog.Logger

	loggerSet  bool
	httpClient *http.Client
	debug      bool
	signerOpts []signing.SignerOption
}

// Option configures a Client during construction in NewClient.
type Option func(*Client) error

// WithHTTPClient sets the *http.Client used for dispatch. The client is
// copied, so wrapping it for debug logging never mutates the caller's value.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("smsglobal: http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithDebugLogging dumps every request and response at debug level when
// enabled is true. Dumps include the Authorization header.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = c.debug || enabled
		return nil
	}
}

// WithLogger sets the logger for dispatch and debug output. Without it the
// client is silent unless debug logging is enabled, in which case the
// package-level zerolog logger is used.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		c.loggerSet = true
		return nil
	}
}

// WithSignerOptions passes options such as a fixed clock to the signer.
func WithSignerOptions(opts ...signing.SignerOption) Option {
	return func(c *Client) error {
		c.signerOpts = append(c.signerOpts, opts...)
		return nil
	}
}

// NewClient validates the connection settings and credentials and builds a
// Client. The hash algorithm is checked when a request is signed.
func NewClient(creds Credentials, conn ConnectionConfig, opts ...Option) (*Client, error) {
	conn.Protocol = strings.ToLower(strings.TrimSpace(conn.Protocol))
	if conn.Protocol != "http" && conn.Protocol != "https" {
		return nil, &ConfigurationError{Field: "Protocol", Err: fmt.Errorf("%w: %q", ErrInvalidProtocol, conn.Protocol)}
	}
	if conn.Host == "" {
		return nil, &ConfigurationError{Field: "Host", Err: ErrMissingValue}
	}
	if creds.APIKey == "" {
		return nil, &ConfigurationError{Field: "APIKey", Err: ErrMissingValue}
	}
	if creds.SecretKey == "" {
		return nil, &ConfigurationError{Field: "SecretKey", Err: ErrMissingValue}
	}

	c := &Client{
		conn:       conn,
		baseURL:    conn.BaseURL(),
		logger:     zerolog.Nop(),
		httpClient: &http.Client{},
		debug:      debugLoggingRequested(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.debug && !c.loggerSet {
		c.logger = log.Logger
	}

	hc := *c.httpClient
	topts := []transport.Option{transport.WithClient(&hc)}
	if c.debug {
		topts = append(topts, transport.WithRoundTripper(func(base http.RoundTripper) http.RoundTripper {
			return &debugTransport{base: base, logger: c.logger}
		}))
	}
	c.http = transport.NewHTTPClient(topts...)

	c.signer = signing.NewSigner(
		signing.Credentials{
			APIKey:        creds.APIKey,
			SecretKey:     creds.SecretKey,
			HashAlgorithm: creds.HashAlgorithm,
		},
		signing.Target{Host: conn.Host, Port: conn.Port, APIVersion: conn.APIVersion},
		c.signerOpts...,
	)
	return c, nil
}

// Connection returns the connection settings with the protocol normalized.
func (c *Client) Connection() ConnectionConfig { return c.conn }

// BaseURL returns the normalized protocol://host/apiVersion prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// URL returns the request URL for action.
func (c *Client) URL(action string) string { return c.baseURL + "/" + action }

// Get sends a signed GET with query as URL parameters.
func (c *Client) Get(ctx context.Context, action string, query map[string]string) (*Result, error) {
	return c.dispatch(http.MethodGet, action, func(url string, h http.Header) (*http.Response, error) {
		return c.http.Get(ctx, url, h, query)
	})
}

// Post sends a signed POST with form as a URL-encoded body.
func (c *Client) Post(ctx context.Context, action string, form map[string]string) (*Result, error) {
	return c.dispatch(http.MethodPost, action, func(url string, h http.Header) (*http.Response, error) {
		return c.http.Post(ctx, url, h, form)
	})
}

// Put sends a signed PUT with form as a URL-encoded body.
func (c *Client) Put(ctx context.Context, action string, form map[string]string) (*Result, error) {
	return c.dispatch(http.MethodPut, action, func(url string, h http.Header) (*http.Response, error) {
		return c.http.Put(ctx, url, h, form)
	})
}

// Patch sends a signed PATCH with form as a URL-encoded body.
func (c *Client) Patch(ctx context.Context, action string, form map[string]string) (*Result, error) {
	return c.dispatch(http.MethodPatch, action, func(url string, h http.Header) (*http.Response, error) {
		return c.http.Patch(ctx, url, h, form)
	})
}

// Delete sends a signed DELETE without body or query.
func (c *Client) Delete(ctx context.Context, action string) (*Result, error) {
	return c.dispatch(http.MethodDelete, action, func(url string, h http.Header) (*http.Response, error) {
		return c.http.Delete(ctx, url, h)
	})
}

type sendFunc func(url string, headers http.Header) (*http.Response, error)

// dispatch runs build URL -> sign -> send -> normalize for one call.
//
// Any HTTP response, 2xx or not, is decoded into the Result. A failure with
// no response yields a Result carrying the request dump and a nil error.
func (c *Client) dispatch(method, action string, send sendFunc) (*Result, error) {
	start := time.Now()
	url := c.URL(action)

	headers, rc, err := c.signer.BuildMACHeaders(method, action, url)
	if err != nil {
		observeRequest(method, outcomeSigningError, start)
		if errors.Is(err, signing.ErrUnsupportedAlgorithm) {
			err = &ConfigurationError{Field: "HashAlgorithm", Err: err}
		}
		c.logger.Error().Err(err).Str("method", method).Str("action", action).Msg("signing request failed")
		return nil, err
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Int64("ts", rc.Timestamp).
		Str("nonce", rc.Nonce).
		Msg("dispatching signed request")

	resp, err := send(url, headers)
	if err != nil {
		var reqErr *transport.RequestError
		if errors.As(err, &reqErr) {
			observeRequest(method, outcomeNoResponse, start)
			c.logger.Warn().Err(reqErr.Err).Str("method", method).Str("url", reqErr.URL).Msg("request failed without a response")
			return &Result{
				Method:       method,
				URL:          reqErr.URL,
				RequestDump:  reqErr.Dump,
				TransportErr: reqErr.Err,
			}, nil
		}
		observeRequest(method, outcomeError, start)
		return nil, err
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		observeRequest(method, outcomeError, start)
		return nil, err
	}

	result := &Result{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		result.URL = resp.Request.URL.String()
	}

	payload, err := decodePayload(body)
	if err != nil {
		observeRequest(method, outcomeError, start)
		return nil, fmt.Errorf("smsglobal: decoding %s %s response: %w", method, url, err)
	}
	result.Payload = payload

	if result.IsSuccess() {
		observeRequest(method, outcomeSuccess, start)
	} else {
		observeRequest(method, outcomeAPIError, start)
		c.logger.Debug().Str("method", method).Str("url", url).Int("status_code", resp.StatusCode).Msg("api returned error status")
	}
	return result, nil
}

// decodePayload decodes a JSON document of any shape. Numbers stay
// json.Number so large message IDs survive; an empty body decodes to nil.
func decodePayload(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}
