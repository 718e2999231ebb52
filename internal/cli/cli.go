// Package cli implements the gomodwatch command-line interface.
//
// Every command works on one project directory (-C, default ".") and builds
// its collaborators from the TOML config: an HTTP response cache, the
// version sources in configured order, a resolver and a project loader.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gomodwatch/pkg/buildinfo"
	"github.com/matzehuels/gomodwatch/pkg/cache"
	"github.com/matzehuels/gomodwatch/pkg/deps"
	"github.com/matzehuels/gomodwatch/pkg/integrations/github"
	"github.com/matzehuels/gomodwatch/pkg/integrations/goproxy"
	"github.com/matzehuels/gomodwatch/pkg/observability"
	"github.com/matzehuels/gomodwatch/pkg/resolve"
	"github.com/matzehuels/gomodwatch/pkg/snapshot"
	"github.com/matzehuels/gomodwatch/pkg/toolchain"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gomodwatch"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	dir        string
	noCache    bool
	refresh    bool

	goExec toolchain.ExecFunc // go command override for tests
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), dir: "."}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gomodwatch reports outdated and unused Go module requirements",
		Long:         `gomodwatch reads a project's go.mod, looks up the newest version of every requirement on the Go module proxy and GitHub, and shows which requirements have updates and which are no longer imported.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/gomodwatch/config.toml)")
	flags.StringVarP(&c.dir, "dir", "C", ".", "project directory containing go.mod")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the HTTP response cache")
	flags.BoolVar(&c.refresh, "refresh", false, "bypass cached HTTP responses (results are still stored)")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.latestCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.dropCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// App - per-command collaborators
// =============================================================================

// app bundles the collaborators a command works with.
type app struct {
	cfg      Config
	dir      string
	http     cache.Cache
	resolver *resolve.Resolver
	project  *deps.Project
	stats    *hookStats
}

// newApp loads the config and wires the HTTP cache, the sources, the
// resolver and the project loader. Callers must Close the app.
func (c *CLI) newApp(ctx context.Context) (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(c.dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}

	backend, err := c.newHTTPCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	stats := newHookStats(c.Logger)
	observability.SetResolveHooks(stats)
	observability.SetCacheHooks(stats)
	observability.SetHTTPHooks(stats)

	r := resolve.New(resolve.Options{
		TTL:     cfg.CacheTTL.Duration,
		Workers: cfg.Workers,
		Dedupe:  cfg.Dedupe,
		Logger:  c.Logger,
	}, c.newSources(cfg, backend)...)

	return &app{
		cfg:      cfg,
		dir:      dir,
		http:     backend,
		resolver: r,
		project:  deps.NewProject(r, deps.ProjectOptions{Logger: c.Logger}),
		stats:    stats,
	}, nil
}

// Close releases the HTTP cache backend.
func (a *app) Close() error {
	return a.http.Close()
}

func (c *CLI) loadConfig() (Config, error) {
	path := c.configFile
	if path == "" {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", path, "sources", cfg.Sources, "proxy", cfg.Proxy)
	return cfg, nil
}

// newHTTPCache picks the response cache: none with --no-cache, Redis when
// redis_url is configured, otherwise files under the user cache dir.
func (c *CLI) newHTTPCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache dir, using memory cache", "err", err)
		return cache.NewMemoryCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSources builds the version sources in the order the config lists them.
func (c *CLI) newSources(cfg Config, backend cache.Cache) []resolve.Source {
	ttl := cfg.HTTPCacheTTL.Duration
	sources := make([]resolve.Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case sourceProxy:
			client := goproxy.NewClientWithURL(backend, ttl, cfg.Proxy)
			client.WithKeyer(cache.NewScopedKeyer(nil, proxyScope(cfg.Proxy)))
			sources = append(sources, resolve.NewProxySource(client, c.refresh))
		case sourceGitHub:
			client := github.NewClient(backend, cfg.GitHubToken, ttl)
			sources = append(sources, resolve.NewGitHubSource(client, c.refresh))
		}
	}
	return sources
}

// proxyScope returns the cache key prefix for responses from proxy.
func proxyScope(proxy string) string {
	if u, err := url.Parse(proxy); err == nil && u.Host != "" {
		return u.Host + ":"
	}
	return proxy + ":"
}

// newStore opens the snapshot history under the user data dir.
func newStore() (*snapshot.FileStore, error) {
	return snapshot.NewFileStore("")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gomodwatch/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
