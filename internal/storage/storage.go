package storage

import "context"

// Default operating parameters, matching the store's tuning for bulk load.
const (
	// DefaultBatchSize is the number of records committed per transaction
	// when the caller doesn't specify one.
	DefaultBatchSize = 10000

	// DefaultPageSize is the result page cap when the caller doesn't
	// specify one.
	DefaultPageSize = 30
)

// Store defines the interface for persisting and querying text records.
// Implementations must support concurrent readers alongside a single
// in-progress bulk insert.
type Store interface {
	// InsertBatch inserts records in transaction groups of at most
	// batchSize. Each group is atomic; a failed group rolls back alone
	// and earlier groups stay committed. The returned count is the
	// number of records actually committed, meaningful even on error.
	InsertBatch(ctx context.Context, records []string, batchSize int) (int, error)

	// Search executes a ranked full-text match against a sanitized
	// expression. The returned total is the full match count,
	// independent of limit/offset. An empty or whitespace-only
	// expression returns (nil, 0, nil) without touching the engine.
	Search(ctx context.Context, match string, limit, offset int) ([]string, int, error)

	// Stats reports the exact record count and current on-disk footprint.
	Stats(ctx context.Context) (Stats, error)

	// ClearAll deletes every record and its index entries. Irreversible.
	// File-system space is not reclaimed; a subsequent Stats call still
	// reflects the pre-clear footprint until the engine recycles pages.
	ClearAll(ctx context.Context) error

	// SetMeta and GetMeta access the store's key/value metadata table.
	// GetMeta returns ErrNotFound for a missing key.
	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, error)

	// Close releases resources. Safe to call at most once; operations
	// after Close fail with ErrNotConnected.
	Close() error
}

// Stats is a point-in-time view of the store.
type Stats struct {
	RecordCount int64
	SizeBytes   int64
	Path        string
}
