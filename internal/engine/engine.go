package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dshills/logseek/internal/importer"
	"github.com/dshills/logseek/internal/metrics"
	"github.com/dshills/logseek/internal/search"
	"github.com/dshills/logseek/internal/stats"
	"github.com/dshills/logseek/internal/storage"
)

// ErrImportInProgress is returned when an import is requested while
// another import is still running.
var ErrImportInProgress = errors.New("import already in progress")

// Metadata keys maintained by the engine after each successful import.
const (
	metaLastImportAt    = "last_import_at"
	metaLastImportCount = "last_import_count"
)

// Config carries the plain values the engine needs. The engine never reads
// files or the environment itself.
type Config struct {
	BatchSize int           // records per transaction
	PageSize  int           // default search page cap
	CacheSize int           // search cache entries, 0 disables
	CacheTTL  time.Duration // search cache entry lifetime
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Engine ties one Store to the importer, search service and stats
// reporter, and owns the cross-cutting concerns none of them can: import
// serialization and search-cache invalidation on writes.
type Engine struct {
	store    storage.Store
	importer *importer.Importer
	search   *search.Service
	stats    *stats.Reporter
	lock     importLock
	log      *slog.Logger
}

// New wires an Engine over an already-open store. The store is injected so
// tests can substitute doubles and callers can run several independent
// engines side by side.
func New(store storage.Store, cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	searchOpts := []search.Option{
		search.WithPageSize(cfg.PageSize),
		search.WithLogger(log),
		search.WithMetrics(cfg.Metrics),
	}
	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		searchOpts = append(searchOpts, search.WithCache(cfg.CacheSize, cfg.CacheTTL))
	}

	return &Engine{
		store: store,
		importer: importer.New(store,
			importer.WithBatchSize(cfg.BatchSize),
			importer.WithLogger(log),
			importer.WithMetrics(cfg.Metrics),
		),
		search: search.NewService(store, searchOpts...),
		stats:  stats.NewReporter(store),
		log:    log,
	}
}

// Open opens the store at path and wires an Engine over it.
func Open(ctx context.Context, path string, cfg Config) (*Engine, error) {
	store, err := storage.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return New(store, cfg), nil
}

// ImportFile imports a file source. Only one import runs at a time; a
// concurrent call fails fast with ErrImportInProgress rather than queueing.
func (e *Engine) ImportFile(ctx context.Context, path string, dedupe bool) (*importer.Stats, error) {
	if !e.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer e.lock.Release()

	st, err := e.importer.ImportFile(ctx, path, dedupe)
	e.afterWrite(ctx, st, err)
	return st, err
}

// Import imports from an arbitrary reader under the same serialization
// rules as ImportFile.
func (e *Engine) Import(ctx context.Context, source io.Reader, dedupe bool) (*importer.Stats, error) {
	if !e.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer e.lock.Release()

	st, err := e.importer.Import(ctx, source, dedupe)
	e.afterWrite(ctx, st, err)
	return st, err
}

// afterWrite invalidates cached search pages and records last-import
// metadata. Cached pages must go even on a failed import: the batches
// committed before the failure are visible.
func (e *Engine) afterWrite(ctx context.Context, st *importer.Stats, importErr error) {
	if st != nil && st.Imported > 0 || importErr == nil {
		e.search.InvalidateCache()
	}
	if importErr != nil || st == nil {
		return
	}
	if err := e.store.SetMeta(ctx, metaLastImportAt, st.EndTime.UTC().Format(time.RFC3339)); err != nil {
		e.log.Warn("failed to record import metadata", "key", metaLastImportAt, "error", err)
	}
	if err := e.store.SetMeta(ctx, metaLastImportCount, strconv.FormatInt(st.Imported, 10)); err != nil {
		e.log.Warn("failed to record import metadata", "key", metaLastImportCount, "error", err)
	}
}

// Search delegates to the search service.
func (e *Engine) Search(ctx context.Context, rawQuery string, limit, offset int) ([]string, int, error) {
	return e.search.Search(ctx, rawQuery, limit, offset)
}

// Stats delegates to the stats reporter.
func (e *Engine) Stats(ctx context.Context) stats.Report {
	return e.stats.Report(ctx)
}

// LastImport returns the completion time and record count of the most
// recent successful import, or ok=false if none was recorded.
func (e *Engine) LastImport(ctx context.Context) (at time.Time, count int64, ok bool) {
	atStr, err := e.store.GetMeta(ctx, metaLastImportAt)
	if err != nil {
		return time.Time{}, 0, false
	}
	countStr, err := e.store.GetMeta(ctx, metaLastImportCount)
	if err != nil {
		return time.Time{}, 0, false
	}
	at, err = time.Parse(time.RFC3339, atStr)
	if err != nil {
		return time.Time{}, 0, false
	}
	count, err = strconv.ParseInt(countStr, 10, 64)
	if err != nil {
		return time.Time{}, 0, false
	}
	return at, count, true
}

// ClearAll deletes every record and drops cached search pages.
func (e *Engine) ClearAll(ctx context.Context) error {
	if err := e.store.ClearAll(ctx); err != nil {
		return err
	}
	e.search.InvalidateCache()
	e.log.Warn("all records cleared from store")
	return nil
}

// Close closes the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}
