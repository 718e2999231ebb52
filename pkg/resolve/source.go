package resolve

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/matzehuels/gomodwatch/pkg/integrations/github"
	"github.com/matzehuels/gomodwatch/pkg/integrations/goproxy"
	"github.com/matzehuels/gomodwatch/pkg/semver"
)

// ErrNotApplicable is returned by a source that cannot answer for a key
// at all, such as the GitHub source asked about a golang.org module.
var ErrNotApplicable = errors.New("source does not serve this module")

// Source answers version queries for a package key. An error or an empty
// result both mean "no result"; the resolver then tries the next source.
//
// Sources hold no shared state with each other.
type Source interface {
	// Name returns the source identifier (e.g., "proxy", "github").
	Name() string
	// Latest returns the newest version the source knows of.
	Latest(ctx context.Context, key string) (string, error)
	// Versions returns every version the source knows of, in any order.
	Versions(ctx context.Context, key string) ([]string, error)
}

// ProxySource answers from the Go module proxy.
type ProxySource struct {
	client  *goproxy.Client
	refresh bool
}

// NewProxySource wraps a module proxy client. When refresh is true the
// client's HTTP cache is bypassed; the resolver's own cache still applies.
func NewProxySource(client *goproxy.Client, refresh bool) *ProxySource {
	return &ProxySource{client: client, refresh: refresh}
}

func (s *ProxySource) Name() string { return "proxy" }

func (s *ProxySource) Latest(ctx context.Context, key string) (string, error) {
	info, err := s.client.Latest(ctx, key, s.refresh)
	if err != nil {
		return "", err
	}
	return info.Version, nil
}

func (s *ProxySource) Versions(ctx context.Context, key string) ([]string, error) {
	return s.client.Versions(ctx, key, s.refresh)
}

// GitHubSource answers from repository tags and releases for modules
// whose path starts with github.com/.
type GitHubSource struct {
	client  *github.Client
	refresh bool
}

// NewGitHubSource wraps a GitHub API client.
func NewGitHubSource(client *github.Client, refresh bool) *GitHubSource {
	return &GitHubSource{client: client, refresh: refresh}
}

func (s *GitHubSource) Name() string { return "github" }

// Latest prefers the latest published release when it belongs to the
// module's major version and falls back to the newest matching tag.
func (s *GitHubSource) Latest(ctx context.Context, key string) (string, error) {
	owner, repo, ok := github.SplitRepo(key)
	if !ok {
		return "", ErrNotApplicable
	}
	tag, err := s.client.LatestRelease(ctx, owner, repo, s.refresh)
	if err == nil && semver.IsValid(tag) && len(majorTags(key, []string{tag})) == 1 {
		return tag, nil
	}
	tags, err := s.client.Tags(ctx, owner, repo, s.refresh)
	if err != nil {
		return "", err
	}
	return semver.Max(majorTags(key, tags)), nil
}

func (s *GitHubSource) Versions(ctx context.Context, key string) ([]string, error) {
	owner, repo, ok := github.SplitRepo(key)
	if !ok {
		return nil, ErrNotApplicable
	}
	tags, err := s.client.Tags(ctx, owner, repo, s.refresh)
	if err != nil {
		return nil, err
	}
	return majorTags(key, tags), nil
}

// majorTags keeps the tags that belong to the module's major version:
// "github.com/o/r/v3" only wants v3.x.y tags, "github.com/o/r" only v0 and
// v1. Tags of nested modules ("sub/v1.0.0") never pass semver.IsValid and
// are already gone.
func majorTags(key string, tags []string) []string {
	want, hasSuffix := majorSuffix(key)
	var out []string
	for _, t := range tags {
		major := semver.Parse(t).Major()
		if (hasSuffix && major == want) || (!hasSuffix && major <= 1) {
			out = append(out, t)
		}
	}
	return out
}

func majorSuffix(key string) (uint64, bool) {
	i := strings.LastIndex(key, "/v")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(key[i+2:], 10, 64)
	if err != nil || n < 2 {
		return 0, false
	}
	return n, true
}
