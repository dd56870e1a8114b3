package signing

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header key constants used by the SMSGlobal REST API.
const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"

	MediaTypeJSON = "application/json"
)

// Credentials holds the API key pair and the HMAC algorithm name.
type Credentials struct {
	APIKey        string
	SecretKey     string
	HashAlgorithm string
}

// Target identifies the API endpoint fields that take part in the canonical
// string. Port is signed but never appears in the request URL.
type Target struct {
	Host       string
	Port       int
	APIVersion string
}

// RequestContext describes one outgoing request. It is built fresh for every
// call and must not be reused: the server rejects replayed nonces.
type RequestContext struct {
	Method     string
	ActionPath string
	URL        string
	Timestamp  int64
	Nonce      string
	ExtraData  string
}

// CanonicalString builds the newline-delimited string covered by the MAC.
// Field order is fixed; every line, including the last, ends in "\n".
func CanonicalString(t Target, rc RequestContext) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(rc.Timestamp, 10))
	b.WriteByte('\n')
	b.WriteString(rc.Nonce)
	b.WriteByte('\n')
	b.WriteString(rc.Method)
	b.WriteByte('\n')
	b.WriteString("/" + t.APIVersion + "/" + rc.ActionPath)
	b.WriteByte('\n')
	b.WriteString(t.Host)
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(t.Port))
	b.WriteByte('\n')
	b.WriteString(rc.ExtraData)
	b.WriteByte('\n')
	return b.String()
}

// FormatAuthorization renders the MAC Authorization header value.
func FormatAuthorization(apiKey string, timestamp int64, nonce, mac string) string {
	return fmt.Sprintf(`MAC id="%s", ts="%d", nonce="%s", mac="%s"`, apiKey, timestamp, nonce, mac)
}

// SignedHeader is the header set attached to a single request.
type SignedHeader struct {
	Authorization string
	Accept        string
	ContentType   string
}

// HTTPHeader converts the signed header set to an http.Header.
func (h SignedHeader) HTTPHeader() http.Header {
	hdr := http.Header{}
	hdr.Set(HeaderAuthorization, h.Authorization)
	hdr.Set(HeaderAccept, h.Accept)
	hdr.Set(HeaderContentType, h.ContentType)
	return hdr
}

// NewNonce returns 128 random bits as 32 lowercase hex characters.
func NewNonce() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("signing: generating nonce: %w", err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// Signer produces MAC headers for one set of credentials and one target.
// It holds no per-request state and is safe for concurrent use.
type Signer struct {
	creds  Credentials
	target Target
	now    func() time.Time
	nonce  func() (string, error)
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// WithNonceSource overrides the nonce generator.
func WithNonceSource(fn func() (string, error)) SignerOption {
	return func(s *Signer) {
		s.nonce = fn
	}
}

// NewSigner creates a Signer. The hash algorithm is resolved lazily, so an
// unsupported name surfaces from Sign rather than here.
func NewSigner(creds Credentials, target Target, opts ...SignerOption) *Signer {
	s := &Signer{
		creds:  creds,
		target: target,
		now:    time.Now,
		nonce:  NewNonce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRequestContext captures a fresh timestamp and nonce for a request.
func (s *Signer) NewRequestContext(method, actionPath, url string) (RequestContext, error) {
	nonce, err := s.nonce()
	if err != nil {
		return RequestContext{}, err
	}
	return RequestContext{
		Method:     method,
		ActionPath: actionPath,
		URL:        url,
		Timestamp:  s.now().Unix(),
		Nonce:      nonce,
	}, nil
}

// Sign computes the MAC for rc and assembles the header set. The id, ts and
// nonce declared in the header are the exact values that were signed.
func (s *Signer) Sign(rc RequestContext) (SignedHeader, error) {
	mac, err := BuildHMACSignature(s.creds.HashAlgorithm, s.creds.SecretKey, CanonicalString(s.target, rc))
	if err != nil {
		return SignedHeader{}, err
	}
	return SignedHeader{
		Authorization: FormatAuthorization(s.creds.APIKey, rc.Timestamp, rc.Nonce, mac),
		Accept:        MediaTypeJSON,
		ContentType:   MediaTypeJSON,
	}, nil
}

// BuildMACHeaders creates a fresh request context for method and actionPath
// and signs it in one step.
func (s *Signer) BuildMACHeaders(method, actionPath, url string) (http.Header, RequestContext, error) {
	rc, err := s.NewRequestContext(method, actionPath, url)
	if err != nil {
		return nil, RequestContext{}, err
	}
	sh, err := s.Sign(rc)
	if err != nil {
		return nil, RequestContext{}, err
	}
	return sh.HTTPHeader(), rc, nil
}
