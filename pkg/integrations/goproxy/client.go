package goproxy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/gomodwatch/pkg/cache"
	"github.com/matzehuels/gomodwatch/pkg/integrations"
	"github.com/matzehuels/gomodwatch/pkg/semver"
)

// DefaultURL is the public Go module proxy.
const DefaultURL = "https://proxy.golang.org"

// Info is the @latest (or @v/<version>.info) response.
type Info struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// Client provides access to the Go module proxy protocol.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client for DefaultURL with the given
// cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached
//
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return NewClientWithURL(backend, cacheTTL, DefaultURL)
}

// NewClientWithURL creates a client for the proxy at baseURL.
func NewClientWithURL(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the proxy URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Versions returns the tagged versions the proxy knows for mod, newest
// first. Pseudo-versions are not listed by the proxy.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - the versions (possibly empty) on success
//   - [integrations.ErrNotFound] if the module doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) Versions(ctx context.Context, mod string, refresh bool) ([]string, error) {
	mod = normalizePath(mod)

	var versions []string
	err := c.Cached(ctx, mod+"/@v/list", refresh, &versions, func() error {
		body, err := c.GetText(ctx, fmt.Sprintf("%s/%s/@v/list", c.baseURL, escapePath(mod)))
		if err != nil {
			return notFound(err, mod)
		}
		versions = parseList(body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// Latest returns the version the proxy reports at @latest. For modules
// without tags this is a pseudo-version of the default branch.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) Latest(ctx context.Context, mod string, refresh bool) (*Info, error) {
	mod = normalizePath(mod)

	var info Info
	err := c.Cached(ctx, mod+"/@latest", refresh, &info, func() error {
		if err := c.Get(ctx, fmt.Sprintf("%s/%s/@latest", c.baseURL, escapePath(mod)), &info); err != nil {
			return notFound(err, mod)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func notFound(err error, mod string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: go module %s", err, mod)
	}
	return err
}

// parseList reads the newline-separated @v/list body, drops blank and
// malformed lines and duplicates, and sorts the rest newest first.
func parseList(body string) []string {
	seen := make(map[string]bool)
	var versions []string
	for _, line := range strings.Split(body, "\n") {
		// Some proxies append a timestamp after the version.
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		v := fields[0]
		if !semver.IsValid(v) || seen[v] {
			continue
		}
		seen[v] = true
		versions = append(versions, v)
	}
	semver.SortDesc(versions)
	return versions
}

func normalizePath(path string) string {
	return strings.TrimSpace(path)
}

// escapePath applies the proxy's case encoding: every uppercase letter
// becomes '!' followed by its lowercase form.
func escapePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('!')
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ProxyURL picks the first proxy from a GOPROXY-style list
// ("https://goproxy.io,direct"). "direct" entries are skipped and "off"
// ends the list. It returns "" when the list names no proxy, and
// DefaultURL when goproxy is empty.
func ProxyURL(goproxy string) string {
	if strings.TrimSpace(goproxy) == "" {
		return DefaultURL
	}
	for _, entry := range strings.FieldsFunc(goproxy, func(r rune) bool { return r == ',' || r == '|' }) {
		entry = strings.TrimSpace(entry)
		switch entry {
		case "", "direct":
			continue
		case "off":
			return ""
		}
		return strings.TrimSuffix(entry, "/")
	}
	return ""
}
