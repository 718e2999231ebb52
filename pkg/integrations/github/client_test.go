package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/gomodwatch/pkg/cache"
	"github.com/matzehuels/gomodwatch/pkg/integrations"
)

func TestClient_Tags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/repos/owner/repo/tags":
			if r.URL.Query().Get("per_page") != "100" {
				t.Errorf("per_page = %q, want 100", r.URL.Query().Get("per_page"))
			}
			json.NewEncoder(w).Encode([]tagResponse{
				{Name: "v1.2.0"}, {Name: "nightly"}, {Name: "v1.1.0"}, {Name: "release-1.0"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL, "")

	tags, err := c.Tags(context.Background(), "owner", "repo", true)
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	want := []string{"v1.2.0", "v1.1.0"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("Tags = %v, want %v", tags, want)
	}
}

func TestClient_LatestRelease(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/repos/owner/repo/releases/latest":
			json.NewEncoder(w).Encode(releaseResponse{TagName: "v2.0.1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL, "secret")

	tag, err := c.LatestRelease(context.Background(), "owner", "repo", true)
	if err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}
	if tag != "v2.0.1" {
		t.Errorf("expected v2.0.1, got %s", tag)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", auth)
	}
}

func TestClient_NoRelease(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL, "")

	if _, err := c.LatestRelease(context.Background(), "owner", "repo", true); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		module    string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{"github.com/spf13/cobra", "spf13", "cobra", true},
		{"github.com/redis/go-redis/v9", "redis", "go-redis", true},
		{"github.com/charmbracelet/lipgloss/table", "charmbracelet", "lipgloss", true},
		{"github.com/onlyowner", "", "", false},
		{"golang.org/x/sync", "", "", false},
		{"gitlab.com/foo/bar", "", "", false},
		{"github.com/-bad/repo", "", "", false},
		{"github.com/owner/re po", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			owner, repo, ok := SplitRepo(tt.module)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), "test-token", time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.baseURL != DefaultURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultURL)
	}
}

func testClient(t *testing.T, serverURL, token string) *Client {
	t.Helper()
	return NewClientWithURL(cache.NewNullCache(), token, time.Hour, serverURL)
}
