// Package integrations provides HTTP clients for the registries that know
// about Go module versions.
//
// # Overview
//
// Each registry has its own subpackage:
//
//   - [goproxy]: the Go module proxy protocol (@v/list, @latest)
//   - [github]: the GitHub REST API (tags, latest release)
//
// # Client Pattern
//
// Registry clients embed the shared [Client] and follow the same pattern:
//
//	c := goproxy.NewClient(backend, time.Hour)
//	versions, err := c.Versions(ctx, "github.com/spf13/cobra", false) // false = use cache
//
// The shared [Client] handles:
//   - connect and total timeouts (see [NewHTTPClientWithTimeouts])
//   - retry with exponential backoff for transport failures and 5xx responses
//   - response caching through any [cache.Cache] backend
//   - status mapping to [ErrNotFound], [ErrRateLimited] and [ErrNetwork]
//   - request/response events for [observability.HTTP] hooks
//
// A canceled context is returned as ctx.Err() and never retried.
//
// [goproxy]: github.com/matzehuels/gomodwatch/pkg/integrations/goproxy
// [github]: github.com/matzehuels/gomodwatch/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/gomodwatch/pkg/cache.Cache
// [observability.HTTP]: github.com/matzehuels/gomodwatch/pkg/observability.HTTP
package integrations
