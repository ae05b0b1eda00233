package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dshills/logseek/internal/metrics"
	"github.com/dshills/logseek/internal/storage"
)

// ErrSourceNotFound is returned when the import source is missing or
// unreadable. Fatal to that import call; never retried automatically.
var ErrSourceNotFound = errors.New("source not found")

const (
	// progressInterval is how many raw lines pass between progress logs.
	progressInterval = 100000

	// maxLineBytes caps a single record; one line is resident at a time.
	maxLineBytes = 1024 * 1024
)

// Stats accumulates counters across one import run. On failure mid-run the
// counters are still meaningful: they describe the partially committed
// import up to the failing batch.
type Stats struct {
	TotalLines int64 // non-empty lines seen
	Imported   int64 // records committed to the store
	Duplicates int64 // records dropped by in-run dedup
	EmptyLines int64 // empty lines skipped
	StartTime  time.Time
	EndTime    time.Time
}

// Duration returns the wall time of the run.
func (s *Stats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Throughput returns imported records per second, 0 for a zero-duration run.
func (s *Stats) Throughput() float64 {
	secs := s.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Imported) / secs
}

// Importer drives an end-to-end import of a line-delimited source into the
// Store. One Importer may run many imports; each run gets its own
// Deduplicator, so dedup state never leaks across runs.
type Importer struct {
	store     storage.Store
	batchSize int
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithBatchSize sets records per transaction. Values <= 0 keep the default.
func WithBatchSize(n int) Option {
	return func(imp *Importer) {
		if n > 0 {
			imp.batchSize = n
		}
	}
}

// WithLogger sets the logger used for progress and summary output.
func WithLogger(log *slog.Logger) Option {
	return func(imp *Importer) {
		imp.log = log
	}
}

// WithMetrics attaches Prometheus collectors. Nil is fine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(imp *Importer) {
		imp.metrics = m
	}
}

// New creates an Importer writing to store.
func New(store storage.Store, opts ...Option) *Importer {
	imp := &Importer{
		store:     store,
		batchSize: storage.DefaultBatchSize,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportFile opens path and imports it. A missing or unreadable file
// reports ErrSourceNotFound.
func (imp *Importer) ImportFile(ctx context.Context, path string, dedupe bool) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return &Stats{}, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	defer func() { _ = f.Close() }()
	return imp.Import(ctx, f, dedupe)
}

// Import streams source line by line into the store in batches, bounded to
// one resident line plus the in-flight batch regardless of source size.
// Lines are trimmed; empty lines are counted and skipped; invalid UTF-8
// bytes are dropped rather than aborting the run.
//
// The returned Stats are best-effort even when err is non-nil: a storage
// failure aborts the run but the batches committed before it stay counted.
// Cancellation is honored between batches only; a batch transaction is the
// atomic unit of cancellation granularity.
func (imp *Importer) Import(ctx context.Context, source io.Reader, dedupe bool) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	dedup := NewDeduplicator()
	batch := make([]string, 0, imp.batchSize)

	imp.log.Info("starting import", "dedupe", dedupe, "batch_size", imp.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		submit := batch
		if dedupe {
			before := len(submit)
			submit = dedup.Filter(submit)
			dropped := before - len(submit)
			stats.Duplicates += int64(dropped)
			imp.metrics.AddDuplicates(dropped)
		}
		if len(submit) > 0 {
			n, err := imp.store.InsertBatch(ctx, submit, imp.batchSize)
			stats.Imported += int64(n)
			imp.metrics.AddImported(n)
			imp.metrics.IncBatch()
			if err != nil {
				return err
			}
		}
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var rawLines int64
	for scanner.Scan() {
		rawLines++
		if rawLines%progressInterval == 0 {
			imp.log.Info("import progress", "lines_read", rawLines, "imported", stats.Imported)
		}

		line := strings.ToValidUTF8(strings.TrimSpace(scanner.Text()), "")
		if line == "" {
			stats.EmptyLines++
			imp.metrics.AddEmptyLines(1)
			continue
		}
		stats.TotalLines++
		batch = append(batch, line)

		if len(batch) >= imp.batchSize {
			if err := flush(); err != nil {
				return imp.finish(stats, err)
			}
			// Cancellation lands between batches: the committed batch
			// stays, nothing half-inserted is ever aborted from outside.
			if err := ctx.Err(); err != nil {
				return imp.finish(stats, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return imp.finish(stats, fmt.Errorf("read source: %w", err))
	}

	// Final partial batch.
	if err := flush(); err != nil {
		return imp.finish(stats, err)
	}

	return imp.finish(stats, nil)
}

func (imp *Importer) finish(stats *Stats, err error) (*Stats, error) {
	stats.EndTime = time.Now()
	imp.metrics.ObserveImport(stats.Duration().Seconds())

	if err != nil {
		imp.log.Error("import aborted",
			"error", err,
			"total_lines", stats.TotalLines,
			"imported", stats.Imported,
		)
		return stats, err
	}

	imp.log.Info("import completed",
		"total_lines", stats.TotalLines,
		"imported", stats.Imported,
		"duplicates", stats.Duplicates,
		"empty_lines", stats.EmptyLines,
		"duration", stats.Duration().Round(time.Millisecond),
		"records_per_second", int64(stats.Throughput()),
	)
	return stats, nil
}
