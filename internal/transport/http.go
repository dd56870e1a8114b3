package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// RequestError reports a request that produced no HTTP response at all
// (dial, DNS, TLS or deadline failures). Dump holds the outgoing request as
// it would have appeared on the wire.
type RequestError struct {
	Method string
	URL    string
	Dump   string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("smsglobal: %s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// HTTPClient sends signed requests through an *http.Client. It performs a
// single attempt per call.
type HTTPClient struct {
	client *http.Client
}

// Option is a functional option for configuring HTTPClient.
type Option func(*HTTPClient)

// WithClient replaces the underlying *http.Client.
func WithClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithRoundTripper wraps the current transport. wrap receives the existing
// RoundTripper (never nil) and returns its replacement.
func WithRoundTripper(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(c *HTTPClient) {
		base := c.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.client.Transport = wrap(base)
	}
}

// NewHTTPClient creates a new HTTPClient. The default *http.Client has no
// timeout; cancellation comes only from the caller's context.
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{client: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Client exposes the underlying *http.Client.
func (c *HTTPClient) Client() *http.Client { return c.client }

// Get performs an HTTP GET request. A non-empty query replaces any query
// string already present in rawURL.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, headers http.Header, query map[string]string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, headers, nil)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		q := make(url.Values, len(query))
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	return c.do(req)
}

// Post performs an HTTP POST request. The form is URL-encoded into the body.
func (c *HTTPClient) Post(ctx context.Context, rawURL string, headers http.Header, form map[string]string) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, rawURL, headers, form)
}

// Put performs an HTTP PUT request. The form is URL-encoded into the body.
func (c *HTTPClient) Put(ctx context.Context, rawURL string, headers http.Header, form map[string]string) (*http.Response, error) {
	return c.send(ctx, http.MethodPut, rawURL, headers, form)
}

// Patch performs an HTTP PATCH request. The form is URL-encoded into the body.
func (c *HTTPClient) Patch(ctx context.Context, rawURL string, headers http.Header, form map[string]string) (*http.Response, error) {
	return c.send(ctx, http.MethodPatch, rawURL, headers, form)
}

// Delete performs an HTTP DELETE request without a body.
func (c *HTTPClient) Delete(ctx context.Context, rawURL string, headers http.Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, rawURL, headers, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *HTTPClient) send(ctx context.Context, method, rawURL string, headers http.Header, form map[string]string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, rawURL, headers, strings.NewReader(EncodeForm(form)))
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// do executes req once. Any response, whatever its status, is handed back
// to the caller; only failures without a response become *RequestError.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RequestError{
			Method: req.Method,
			URL:    req.URL.String(),
			Dump:   DumpRequest(req),
			Err:    err,
		}
	}
	return resp, nil
}

// EncodeForm renders form as an application/x-www-form-urlencoded string
// with keys in sorted order.
func EncodeForm(form map[string]string) string {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	return values.Encode()
}

// newRequest builds an *http.Request with the given URL, body and headers.
func (c *HTTPClient) newRequest(ctx context.Context, method, rawURL string, headers http.Header, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("smsglobal: creating request: %w", err)
	}

	// Caller headers are copied verbatim. Content-Type stays whatever the
	// signer declared, even for form-encoded bodies.
	for key, vals := range headers {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}

	return req, nil
}

// DumpRequest renders req as an HTTP/1.1 message preceded by a
// "METHOD URL" line. The body is replayed through GetBody when available.
func DumpRequest(req *http.Request) string {
	var b strings.Builder
	b.WriteString(req.Method + " " + req.URL.String() + "\r\n")

	clone := req.Clone(context.Background())
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			clone.Body = body
		}
	}

	dump, err := httputil.DumpRequestOut(clone, true)
	if err != nil {
		// Fall back to the headers alone.
		dump, err = httputil.DumpRequestOut(clone, false)
		if err != nil {
			return b.String()
		}
	}
	b.Write(dump)
	return b.String()
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("smsglobal: reading response body: %w", err)
	}
	return body, nil
}
