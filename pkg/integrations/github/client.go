package github

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

// DefaultURL is the GitHub REST API endpoint.
const DefaultURL = "https://api.github.com"

const hostPrefix = "github.com/"

// Client provides access to the GitHub API for tag and release lookups.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	return NewClientWithURL(backend, token, cacheTTL, DefaultURL)
}

// NewClientWithURL creates a client for a GitHub-compatible API at baseURL.
func NewClientWithURL(backend cache.Cache, token string, cacheTTL time.Duration, baseURL string) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "github", cacheTTL, headers),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SplitRepo maps a module path hosted on GitHub to its repository.
// "github.com/owner/repo/v2/sub" yields ("owner", "repo", true). Paths on
// other hosts, or with an owner or repo GitHub would reject, yield ok=false.
func SplitRepo(module string) (owner, repo string, ok bool) {
	rest, found := strings.CutPrefix(module, hostPrefix)
	if !found {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 {
		return "", "", false
	}
	owner, repo = parts[0], parts[1]
	if ValidateRepoRef(owner, repo) != nil {
		return "", "", false
	}
	return owner, repo, true
}

// Tags returns the repository tags that look like versions, in the order
// GitHub lists them. Only the first page (100 tags) is consulted.
//
// If refresh is true, cached data is bypassed.
func (c *Client) Tags(ctx context.Context, owner, repo string, refresh bool) ([]string, error) {
	key := "tags:" + owner + "/" + repo

	var tags []string
	err := c.Cached(ctx, key, refresh, &tags, func() error {
		var data []tagResponse
		url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=100", c.baseURL, owner, repo)
		if err := c.Get(ctx, url, &data); err != nil {
			return notFound(err, owner, repo)
		}
		tags = versionTags(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// LatestRelease returns the tag name of the repository's latest published
// release. Drafts and pre-releases are never reported by this endpoint.
//
// If refresh is true, cached data is bypassed.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string, refresh bool) (string, error) {
	key := "release:" + owner + "/" + repo

	var rel releaseResponse
	err := c.Cached(ctx, key, refresh, &rel, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
		if err := c.Get(ctx, url, &rel); err != nil {
			return notFound(err, owner, repo)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rel.TagName, nil
}

func notFound(err error, owner, repo string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
	}
	return err
}

func versionTags(data []tagResponse) []string {
	var tags []string
	for _, t := range data {
		if semver.IsValid(t.Name) {
			tags = append(tags, t.Name)
		}
	}
	return tags
}

type tagResponse struct {
	Name string `json:"name"`
}

type releaseResponse struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
}
