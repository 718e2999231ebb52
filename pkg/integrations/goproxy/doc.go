// Package goproxy provides an HTTP client for the Go module proxy protocol.
//
// # Overview
//
// This package asks a module proxy (https://proxy.golang.org by default, or
// the first entry of GOPROXY) which versions of a module exist.
//
// # Usage
//
//	client := goproxy.NewClient(cache.NewNullCache(), time.Hour)
//
//	versions, err := client.Versions(ctx, "github.com/spf13/cobra", false)
//	info, err := client.Latest(ctx, "github.com/spf13/cobra", false)
//	fmt.Println(versions[0], info.Version)
//
// # Endpoints
//
//   - $base/<module>/@v/list: tagged versions, one per line
//   - $base/<module>/@latest: JSON {"Version", "Time"}; a pseudo-version when
//     the module has no tags
//
// Both may independently be empty or missing. A 404 or 410 from the proxy
// maps to [integrations.ErrNotFound].
//
// # Caching
//
// Responses are cached to reduce load on the proxy. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
//
// # Path Escaping
//
// Module paths with uppercase letters are escaped per the Go module proxy
// protocol (uppercase becomes !lowercase).
package goproxy
