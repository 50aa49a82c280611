// Package backend is the REST client for the bookmark/tag backend. Every
// remote call of the shell goes through a Client; entity types mirror the
// backend's JSON field names.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/google/uuid"
)

var (
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("request rejected")
)

const userAgent = "tagboard/1.0"

// Client talks to the backend rooted at baseURL (for example
// http://localhost:8071/v1). It keeps no per-user state; backend session
// cookies travel in the request context, see WithCredentials.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client with the given per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	c := &Client{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
	c.SetHTTPClient(&http.Client{Timeout: timeout})
	return c
}

// SetHTTPClient swaps the underlying HTTP client. The credential transport is
// always layered on top of the client's own transport.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if _, ok := base.(*credentialTransport); !ok {
		base = &credentialTransport{base: base}
	}
	c.http = &http.Client{
		Timeout:       hc.Timeout,
		Transport:     base,
		CheckRedirect: hc.CheckRedirect,
	}
}

// BaseURL reports the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestIDKey struct{}

// WithRequestID attaches the id sent as X-Request-ID on outgoing calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// endpoint joins path segments onto the base URL, escaping each one.
func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

func (c *Client) request(ctx context.Context, endpoint string) *requests.Builder {
	return requests.URL(endpoint).
		Client(c.http).
		Accept("application/json").
		UserAgent(userAgent).
		Header("X-Request-ID", requestID(ctx))
}

// classify wraps err with the sentinel matching the backend's status code.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case requests.HasStatusErr(err, http.StatusConflict):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	case requests.HasStatusErr(err, http.StatusUnauthorized, http.StatusForbidden):
		return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	case requests.HasStatusErr(err, http.StatusNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case requests.HasStatusErr(err, http.StatusBadRequest):
		return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
