// Package github provides an HTTP client for the GitHub REST API, used as a
// fallback version source for modules hosted on github.com.
//
// # Overview
//
// The module proxy is the primary source of versions. When it has nothing
// (private mirrors, GOPROXY=off, or a module that was never fetched through
// it), the repository's tags and latest release are consulted instead.
//
// # Usage
//
//	client := github.NewClient(cache.NewNullCache(), os.Getenv("GITHUB_TOKEN"), time.Hour)
//
//	owner, repo, ok := github.SplitRepo("github.com/spf13/cobra")
//	if ok {
//	    tags, err := client.Tags(ctx, owner, repo, false)
//	    latest, err := client.LatestRelease(ctx, owner, repo, false)
//	}
//
// # Authentication
//
// Unauthenticated requests are limited to 60 per hour. Pass a token to
// raise the limit. A 403 with X-RateLimit-Remaining: 0 maps to
// [integrations.ErrRateLimited].
//
// # Validation
//
// [ValidateOwner], [ValidateRepo] and [ValidateRepoRef] check names against
// GitHub's rules before they are interpolated into request URLs.
package github
