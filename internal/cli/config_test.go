package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
	"github.com/matzehuels/gomodwatch/pkg/integrations/goproxy"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GOPROXY", "")
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.CacheTTL.Duration != resolve.DefaultTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, resolve.DefaultTTL)
	}
	if cfg.Proxy != goproxy.DefaultURL {
		t.Errorf("Proxy = %q", cfg.Proxy)
	}
	if !reflect.DeepEqual(cfg.Sources, []string{"proxy", "github"}) {
		t.Errorf("Sources = %v", cfg.Sources)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("GOPROXY", "")
	t.Setenv("GITHUB_TOKEN", "")

	path := writeConfig(t, `
cache_ttl = "90s"
http_cache_ttl = "2h"
proxy = "https://goproxy.example"
github_token = "from-file"
sources = ["github"]
workers = 3
dedupe = true
redis_url = "redis://localhost:6379/0"
listen = ":9000"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	want := Config{
		CacheTTL:     duration{90 * time.Second},
		HTTPCacheTTL: duration{2 * time.Hour},
		Proxy:        "https://goproxy.example",
		GitHubToken:  "from-file",
		Sources:      []string{"github"},
		Workers:      3,
		Dedupe:       true,
		RedisURL:     "redis://localhost:6379/0",
		Listen:       ":9000",
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("loadConfig() =\n%+v\nwant\n%+v", cfg, want)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GOPROXY", "https://corp.example/go,direct")
	t.Setenv("GITHUB_TOKEN", "from-env")

	cfg, err := loadConfig(writeConfig(t, `github_token = "from-file"`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Proxy != "https://corp.example/go" {
		t.Errorf("Proxy = %q", cfg.Proxy)
	}
	if cfg.GitHubToken != "from-env" {
		t.Errorf("GitHubToken = %q", cfg.GitHubToken)
	}
}

func TestLoadConfigProxyDisabled(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	for _, v := range []string{"off", "direct"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("GOPROXY", v)

			cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
			if err != nil {
				t.Fatalf("loadConfig() error: %v", err)
			}
			if cfg.Proxy != "" {
				t.Errorf("Proxy = %q, want empty", cfg.Proxy)
			}
			if !reflect.DeepEqual(cfg.Sources, []string{"github"}) {
				t.Errorf("Sources = %v, want [github]", cfg.Sources)
			}

			_, err = loadConfig(writeConfig(t, `sources = ["proxy"]`))
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("proxy-only config error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("GOPROXY", "")
	t.Setenv("GITHUB_TOKEN", "")

	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `cache_ttl = `},
		{"bad duration", `cache_ttl = "soon"`},
		{"unknown source", `sources = ["npm"]`},
		{"no sources", `sources = []`},
		{"negative workers", `workers = -1`},
		{"bad proxy", `proxy = "ftp://example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("loadConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "gomodwatch", "config.toml"); got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}
}

func TestProxyScope(t *testing.T) {
	tests := []struct {
		proxy string
		want  string
	}{
		{"https://proxy.golang.org", "proxy.golang.org:"},
		{"https://corp.example:8443/go", "corp.example:8443:"},
		{"not a url", "not a url:"},
	}
	for _, tt := range tests {
		if got := proxyScope(tt.proxy); got != tt.want {
			t.Errorf("proxyScope(%q) = %q, want %q", tt.proxy, got, tt.want)
		}
	}
}
