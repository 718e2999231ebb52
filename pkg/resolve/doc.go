// Package resolve finds the newest version of Go modules by asking an
// ordered list of sources and memoizing the answers for a fixed TTL.
//
// # Sources
//
// A [Source] is anything that can list the versions of a module and name
// its latest one. Two are provided: [ProxySource] (the Go module proxy) and
// [GitHubSource] (repository tags and releases). The resolver asks each
// source in turn and stops at the first usable answer. Errors, panics and
// empty answers from a source all count as "no result" and never reach the
// caller.
//
// # Caching
//
// Every answer is cached per key, including "nothing found", so a module
// no source knows about is not re-queried until its entry expires:
//
//	r := resolve.New(resolve.Options{TTL: 5 * time.Minute},
//	    resolve.NewProxySource(proxyClient, false),
//	    resolve.NewGitHubSource(githubClient, false),
//	)
//	latest, ok := r.Latest(ctx, "github.com/spf13/cobra")
//
// The cache belongs to the Resolver. [Resolver.ClearCache] empties it and
// [Resolver.Sweep] drops expired entries; [Resolver.StartSweeper] runs Sweep
// on a ticker for as long as the given context lives.
//
// # Concurrency
//
// [Resolver.CheckUpdates] resolves many keys at once with a bounded number
// of goroutines and returns results in input order. A lookup whose context
// is canceled returns no result and leaves the cache untouched. With
// Options.Dedupe set, concurrent misses for the same key share one fetch.
package resolve
