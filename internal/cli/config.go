package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
	"github.com/matzehuels/gomodwatch/pkg/integrations/goproxy"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
)

// Source names accepted in the sources list.
const (
	sourceProxy  = "proxy"
	sourceGitHub = "github"
)

const defaultHTTPCacheTTL = time.Hour

// Config is the on-disk configuration ($XDG_CONFIG_HOME/gomodwatch/config.toml).
//
//	cache_ttl = "5m"
//	http_cache_ttl = "1h"
//	proxy = "https://proxy.golang.org"
//	github_token = ""
//	sources = ["proxy", "github"]
//	workers = 8
//	dedupe = false
//	redis_url = ""
//	listen = "127.0.0.1:8080"
type Config struct {
	CacheTTL     duration `toml:"cache_ttl"`
	HTTPCacheTTL duration `toml:"http_cache_ttl"`
	Proxy        string   `toml:"proxy"`
	GitHubToken  string   `toml:"github_token"`
	Sources      []string `toml:"sources"`
	Workers      int      `toml:"workers"`
	Dedupe       bool     `toml:"dedupe"`
	RedisURL     string   `toml:"redis_url"`
	Listen       string   `toml:"listen"`
}

// duration decodes TOML strings such as "90s" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func defaultConfig() Config {
	return Config{
		CacheTTL:     duration{resolve.DefaultTTL},
		HTTPCacheTTL: duration{defaultHTTPCacheTTL},
		Proxy:        goproxy.DefaultURL,
		Sources:      []string{sourceProxy, sourceGitHub},
		Workers:      resolve.DefaultWorkers,
		Listen:       "127.0.0.1:8080",
	}
}

// loadConfig reads the TOML file at path on top of the defaults, then
// applies GOPROXY and GITHUB_TOKEN from the environment. A missing file is
// not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		}
	}

	if v := os.Getenv("GOPROXY"); v != "" {
		cfg.Proxy = goproxy.ProxyURL(v)
		if cfg.Proxy == "" {
			cfg.Sources = slices.DeleteFunc(slices.Clone(cfg.Sources), func(s string) bool { return s == sourceProxy })
			if len(cfg.Sources) == 0 {
				return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "GOPROXY=%s disables the module proxy and no other source is configured", v)
			}
		}
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if len(c.Sources) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "sources: at least one source is required")
	}
	for _, s := range c.Sources {
		if s != sourceProxy && s != sourceGitHub {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "sources: unknown source %q (want %q or %q)", s, sourceProxy, sourceGitHub)
		}
	}
	if c.Workers < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "workers: must not be negative")
	}
	if c.CacheTTL.Duration < 0 || c.HTTPCacheTTL.Duration < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache TTLs must not be negative")
	}
	if !slices.Contains(c.Sources, sourceProxy) {
		return nil
	}
	if err := apperrors.ValidateURL(c.Proxy); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "proxy")
	}
	return nil
}

// configPath returns the default config file location.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
