package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/gomodwatch/pkg/observability"
	"github.com/matzehuels/gomodwatch/pkg/semver"
)

const (
	DefaultTTL     = 5 * time.Minute // Default resolution cache lifetime
	DefaultWorkers = 8               // Default CheckUpdates concurrency
)

// Options configures a Resolver.
type Options struct {
	TTL     time.Duration    // Cache lifetime (default: 5m)
	Workers int              // Concurrent lookups in CheckUpdates (default: 8)
	Dedupe  bool             // Share one in-flight fetch per key
	Logger  *log.Logger      // Debug logging of source failures (optional)
	Now     func() time.Time // Clock override for tests (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// Result is the outcome of one lookup in CheckUpdates.
type Result struct {
	Key    string `json:"path"`
	Latest string `json:"latest,omitempty"`
	Found  bool   `json:"found"`
}

// Resolver looks up versions through an ordered list of sources and
// memoizes the answers. Each Resolver owns its caches; nothing is shared
// between instances.
//
// A Resolver is safe for concurrent use. Without Dedupe, two concurrent
// misses for the same key both query the sources and the later write wins.
type Resolver struct {
	sources  []Source
	opts     Options
	latest   *Cache
	versions *Cache
	flight   singleflight.Group
}

// New creates a Resolver that tries sources in order.
func New(opts Options, sources ...Source) *Resolver {
	opts = opts.WithDefaults()
	return &Resolver{
		sources:  sources,
		opts:     opts,
		latest:   NewCache(opts.TTL, opts.Now),
		versions: NewCache(opts.TTL, opts.Now),
	}
}

// Sources returns the names of the configured sources in query order.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// Latest returns the newest version of key, and false when no source had
// one. A live cache entry is returned without querying any source.
//
// If ctx is canceled during the lookup the result is ("", false) and
// nothing is cached.
func (r *Resolver) Latest(ctx context.Context, key string) (string, bool) {
	e, ok := r.lookup(ctx, r.latest, "latest", key, r.fetchLatest)
	return e.Value, ok && e.Found
}

// Versions returns every known version of key, newest first and without
// duplicates. It returns nil when no source had any.
func (r *Resolver) Versions(ctx context.Context, key string) []string {
	e, ok := r.lookup(ctx, r.versions, "versions", key, r.fetchVersions)
	if !ok || !e.Found {
		return nil
	}
	return append([]string(nil), e.Versions...)
}

// CheckUpdates resolves the latest version of every key concurrently and
// returns one Result per key, in the order of keys.
func (r *Resolver) CheckUpdates(ctx context.Context, keys []string) []Result {
	results := make([]Result, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, key := range keys {
		g.Go(func() error {
			latest, found := r.Latest(gctx, key)
			results[i] = Result{Key: key, Latest: latest, Found: found}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ClearCache drops every memoized result.
func (r *Resolver) ClearCache() {
	r.latest.Clear()
	r.versions.Clear()
}

// Sweep removes expired entries and returns how many were removed.
func (r *Resolver) Sweep() int {
	return r.latest.Sweep() + r.versions.Sweep()
}

// Len returns the number of cached entries.
func (r *Resolver) Len() int {
	return r.latest.Len() + r.versions.Len()
}

// TTL returns the cache lifetime in effect.
func (r *Resolver) TTL() time.Duration { return r.opts.TTL }

// StartSweeper calls Sweep every interval until ctx is done. A non-positive
// interval sweeps once per TTL.
func (r *Resolver) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.opts.TTL
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.opts.Logger.Debug("swept resolution cache", "removed", n)
				}
			}
		}
	}()
}

type fetchFunc func(ctx context.Context, key string) (Entry, string)

func (r *Resolver) lookup(ctx context.Context, c *Cache, kind, key string, fetch fetchFunc) (Entry, bool) {
	if e, ok := c.Get(key); ok {
		observability.Cache().OnCacheHit(ctx, "resolve:"+kind)
		return e, true
	}
	observability.Cache().OnCacheMiss(ctx, "resolve:"+kind)

	run := func(ctx context.Context) (Entry, bool) {
		hooks := observability.Resolve()
		hooks.OnResolveStart(ctx, key)
		start := time.Now()

		e, source := fetch(ctx, key)
		if ctx.Err() != nil {
			return Entry{}, false
		}
		hooks.OnResolveComplete(ctx, key, source, e.Found, time.Since(start))
		c.Put(key, e)
		return e, true
	}

	if !r.opts.Dedupe {
		return run(ctx)
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	type shared struct {
		entry Entry
		ok    bool
	}
	ch := r.flight.DoChan(kind+"\x00"+key, func() (any, error) {
		e, ok := run(context.WithoutCancel(ctx))
		return shared{e, ok}, nil
	})
	select {
	case res := <-ch:
		s := res.Val.(shared)
		return s.entry, s.ok
	case <-ctx.Done():
		return Entry{}, false
	}
}

func (r *Resolver) fetchLatest(ctx context.Context, key string) (Entry, string) {
	for _, s := range r.sources {
		v, err := query(r, ctx, s, key, func() (string, error) { return s.Latest(ctx, key) })
		if err == nil && v != "" {
			return Entry{Value: v, Found: true, FetchedAt: r.opts.Now()}, s.Name()
		}
		if ctx.Err() != nil {
			break
		}
	}
	return Entry{FetchedAt: r.opts.Now()}, ""
}

func (r *Resolver) fetchVersions(ctx context.Context, key string) (Entry, string) {
	for _, s := range r.sources {
		vs, err := query(r, ctx, s, key, func() ([]string, error) { return s.Versions(ctx, key) })
		if err == nil && len(vs) > 0 {
			return Entry{Versions: dedupeSorted(vs), Found: true, FetchedAt: r.opts.Now()}, s.Name()
		}
		if ctx.Err() != nil {
			break
		}
	}
	return Entry{FetchedAt: r.opts.Now()}, ""
}

// query runs one source call. A panic in the source becomes an error.
func query[T any](r *Resolver, ctx context.Context, s Source, key string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("source panicked: %v", p)
		}
		r.report(ctx, s, key, err)
	}()
	return fn()
}

func (r *Resolver) report(ctx context.Context, s Source, key string, err error) {
	if err == nil || errors.Is(err, ErrNotApplicable) || ctx.Err() != nil {
		return
	}
	r.opts.Logger.Debug("source failed", "module", key, "source", s.Name(), "err", err)
	observability.Resolve().OnSourceError(ctx, key, s.Name(), err)
}

func dedupeSorted(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	semver.SortDesc(out)
	return out
}
