package backend

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Credentials holds the backend session cookies of one shell user. The shell
// keeps them in its own session between requests and replays them through
// the request context.
type Credentials struct {
	mu      sync.Mutex
	cookies map[string]string
	changed bool
}

// NewCredentials parses a Cookie header value ("a=1; b=2"). Malformed input
// yields empty credentials.
func NewCredentials(header string) *Credentials {
	creds := &Credentials{cookies: make(map[string]string)}
	header = strings.TrimSpace(header)
	if header == "" {
		return creds
	}
	parsed, err := http.ParseCookie(header)
	if err != nil {
		return creds
	}
	for _, cookie := range parsed {
		creds.cookies[cookie.Name] = cookie.Value
	}
	return creds
}

// Header renders the cookies in Cookie header form, sorted by name.
func (c *Credentials) Header() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.cookies))
	for name := range c.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, (&http.Cookie{Name: name, Value: c.cookies[name]}).String())
	}
	return strings.Join(parts, "; ")
}

// Empty reports whether no backend cookie is held.
func (c *Credentials) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cookies) == 0
}

// Changed reports whether a response modified the cookie set since creation.
func (c *Credentials) Changed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Clear drops every cookie.
func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cookies) > 0 {
		c.changed = true
	}
	c.cookies = make(map[string]string)
}

func (c *Credentials) apply(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func (c *Credentials) absorb(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cookie := range cookies {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
		} else {
			c.cookies[cookie.Name] = cookie.Value
		}
		c.changed = true
	}
}

type credentialsKey struct{}

// WithCredentials makes calls issued with ctx carry and update creds.
func WithCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials attached to ctx, or nil.
func CredentialsFrom(ctx context.Context) *Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(*Credentials)
	return creds
}

type credentialTransport struct {
	base http.RoundTripper
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds := CredentialsFrom(req.Context())
	if creds == nil {
		return t.base.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	creds.apply(out)

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	creds.absorb(resp.Cookies())
	return resp, nil
}
