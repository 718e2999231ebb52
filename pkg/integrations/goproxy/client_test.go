package goproxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/gomodwatch/pkg/cache"
	"github.com/matzehuels/gomodwatch/pkg/integrations"
)

func TestEscapePath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"github.com/gin-gonic/gin", "github.com/gin-gonic/gin"},
		{"github.com/Azure/azure-sdk-for-go", "github.com/!azure/azure-sdk-for-go"},
		{"github.com/BurntSushi/toml", "github.com/!burnt!sushi/toml"},
		{"golang.org/x/sync", "golang.org/x/sync"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapePath(tt.input); got != tt.want {
				t.Errorf("escapePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	body := "v1.0.0\nv1.10.0\n\nv1.2.0-rc.1\nnot-a-version\nv1.2.0 2024-01-01T00:00:00Z\nv1.0.0\n"

	got := parseList(body)
	want := []string{"v1.10.0", "v1.2.0", "v1.2.0-rc.1", "v1.0.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseList() = %v, want %v", got, want)
	}

	if got := parseList(""); len(got) != 0 {
		t.Errorf("parseList(\"\") = %v, want empty", got)
	}
}

func TestProxyURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", DefaultURL},
		{"  ", DefaultURL},
		{"direct", ""},
		{"off", ""},
		{"off,https://goproxy.io", ""},
		{"https://goproxy.io,direct", "https://goproxy.io"},
		{"direct,https://goproxy.cn/", "https://goproxy.cn"},
		{"https://a.example|https://b.example", "https://a.example"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ProxyURL(tt.in); got != tt.want {
				t.Errorf("ProxyURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClient_Versions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/github.com/!burnt!sushi/toml/@v/list":
			w.Write([]byte("v1.3.2\nv1.5.0\nv1.4.0\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	versions, err := c.Versions(context.Background(), "github.com/BurntSushi/toml", true)
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	want := []string{"v1.5.0", "v1.4.0", "v1.3.2"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("Versions = %v, want %v", versions, want)
	}
}

func TestClient_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/github.com/example/mylib/@latest":
			json.NewEncoder(w).Encode(Info{Version: "v1.2.3", Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.Latest(context.Background(), "github.com/example/mylib", true)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if info.Version != "v1.2.3" {
		t.Errorf("expected version v1.2.3, got %s", info.Version)
	}
	if info.Time.Year() != 2024 {
		t.Errorf("expected 2024 timestamp, got %v", info.Time)
	}
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	if _, err := c.Latest(context.Background(), "github.com/missing/module", true); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Latest error = %v, want ErrNotFound", err)
	}
	if _, err := c.Versions(context.Background(), "github.com/missing/module", true); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Versions error = %v, want ErrNotFound", err)
	}
}

func TestClient_CachesResponses(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("v0.1.0\n"))
	}))
	defer server.Close()

	c := &Client{
		Client:  integrations.NewClient(cache.NewMemoryCache(), "goproxy", time.Hour, nil),
		baseURL: server.URL,
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Versions(context.Background(), "example.com/m", false); err != nil {
			t.Fatal(err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("proxy hit %d times, want 1", hits.Load())
	}

	if _, err := c.Versions(context.Background(), "example.com/m", true); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh should bypass cache, hits = %d", hits.Load())
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClientWithURL(cache.NewNullCache(), time.Hour, serverURL)
}
