package integrations

import (
	"errors"
	"net"
	"net/http"
	"time"
)

const (
	connectTimeout = 5 * time.Second
	httpTimeout    = 10 * time.Second
)

var (
	// ErrNotFound is returned when a module or repository doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the registry refuses the request because
	// of rate limiting (429, or GitHub's 403 with an exhausted quota).
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with the standard connect and total
// timeouts for registry requests.
func NewHTTPClient() *http.Client {
	return NewHTTPClientWithTimeouts(connectTimeout, httpTimeout)
}

// NewHTTPClientWithTimeouts creates an HTTP client whose dial phase is
// bounded by connect and whose whole request is bounded by total.
// Zero values fall back to the defaults.
func NewHTTPClientWithTimeouts(connect, total time.Duration) *http.Client {
	if connect <= 0 {
		connect = connectTimeout
	}
	if total <= 0 {
		total = httpTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connect,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connect
	return &http.Client{Timeout: total, Transport: transport}
}
