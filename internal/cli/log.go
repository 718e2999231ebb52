package cli

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Resolved 42 requirements (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Hooks
// =============================================================================

// hookStats receives resolver, cache and HTTP events. It logs each one at
// debug level and keeps counters for the end-of-command summary.
type hookStats struct {
	logger *log.Logger

	lookups      atomic.Int64
	found        atomic.Int64
	sourceErrors atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	requests     atomic.Int64
}

func newHookStats(l *log.Logger) *hookStats {
	return &hookStats{logger: l}
}

func (h *hookStats) OnResolveStart(_ context.Context, module string) {
	h.lookups.Add(1)
}

func (h *hookStats) OnResolveComplete(_ context.Context, module, source string, found bool, d time.Duration) {
	if found {
		h.found.Add(1)
	}
	h.logger.Debug("resolved", "module", module, "source", source, "found", found, "duration", d.Round(time.Millisecond))
}

func (h *hookStats) OnSourceError(_ context.Context, module, source string, err error) {
	h.sourceErrors.Add(1)
}

func (h *hookStats) OnCacheHit(_ context.Context, keyType string) { h.cacheHits.Add(1) }

func (h *hookStats) OnCacheMiss(_ context.Context, keyType string) { h.cacheMisses.Add(1) }

func (h *hookStats) OnCacheSet(_ context.Context, keyType string, size int) {}

func (h *hookStats) OnRequest(_ context.Context, method, host, path string) {
	h.requests.Add(1)
}

func (h *hookStats) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *hookStats) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http failed", "method", method, "host", host, "path", path, "err", err)
}

// summarize logs the counters collected so far.
func (h *hookStats) summarize() {
	h.logger.Debug("lookup summary",
		"lookups", h.lookups.Load(),
		"found", h.found.Load(),
		"source_errors", h.sourceErrors.Load(),
		"cache_hits", h.cacheHits.Load(),
		"cache_misses", h.cacheMisses.Load(),
		"requests", h.requests.Load())
}
