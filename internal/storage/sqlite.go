package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
)

// startupPragmas tune the engine for high write throughput with crash-safe
// concurrent readers: WAL journaling, relaxed-but-durable sync, in-memory
// temp storage and a 64MB page cache. Reopening a store re-applies them.
var startupPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA cache_size=-64000",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA busy_timeout=30000",
}

// SQLiteStore implements the Store interface using SQLite FTS5
type SQLiteStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// Open opens or creates a store at path and applies the operating
// configuration and any pending schema migrations. The context bounds the
// whole open sequence, so callers can put a deadline on store startup.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, storageErr("open", err)
	}

	// Single pooled connection: SQLite benefits from a single writer and
	// a :memory: store stays coherent across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range startupPragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, storageErr("open", fmt.Errorf("%s: %w", pragma, err))
		}
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, storageErr("migrate", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection. Operations after Close fail with
// ErrNotConnected, as does a second Close.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return ErrNotConnected
	}
	if err := s.db.Close(); err != nil {
		return storageErr("close", err)
	}
	return nil
}

func (s *SQLiteStore) ready() error {
	if s.db == nil || s.closed.Load() {
		return ErrNotConnected
	}
	return nil
}

// InsertBatch inserts records in transaction groups of at most batchSize.
// A failing group rolls back alone; groups already committed stay
// committed, and the returned count reflects them even when an error is
// returned. After the last group an FTS index consolidation pass runs so
// subsequent searches don't pay for fragmented segments.
func (s *SQLiteStore) InsertBatch(ctx context.Context, records []string, batchSize int) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	inserted := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		if err := s.insertGroup(ctx, records[start:end]); err != nil {
			return inserted, err
		}
		inserted += end - start
	}

	if inserted > 0 {
		// Merge internal FTS5 index segments (the 'optimize' command).
		if _, err := s.db.ExecContext(ctx, "INSERT INTO records_fts(records_fts) VALUES('optimize')"); err != nil {
			return inserted, storageErr("optimize", err)
		}
	}

	return inserted, nil
}

// insertGroup commits one transaction group. All-or-nothing: any failure
// rolls the whole group back.
func (s *SQLiteStore) insertGroup(ctx context.Context, group []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records_fts(content) VALUES (?)")
	if err != nil {
		_ = tx.Rollback()
		return storageErr("prepare", err)
	}

	for _, record := range group {
		if _, err := stmt.ExecContext(ctx, record); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return storageErr("insert", err)
		}
	}
	_ = stmt.Close()

	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

// Search executes a ranked FTS5 MATCH against a sanitized expression.
// The total is computed with a separate COUNT so pagination can be driven
// without re-scanning; the page itself is ordered by the engine's BM25
// rank (lower is better, surfaced most-relevant-first).
func (s *SQLiteStore) Search(ctx context.Context, match string, limit, offset int) ([]string, int, error) {
	if err := s.ready(); err != nil {
		return nil, 0, err
	}
	if strings.TrimSpace(match) == "" {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records_fts WHERE records_fts MATCH ?", match,
	).Scan(&total)
	if err != nil {
		return nil, 0, &QueryError{Expr: match, Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content
		FROM records_fts
		WHERE records_fts MATCH ?
		ORDER BY rank
		LIMIT ? OFFSET ?
	`, match, limit, offset)
	if err != nil {
		return nil, 0, &QueryError{Expr: match, Err: err}
	}
	defer func() { _ = rows.Close() }()

	results := make([]string, 0, limit)
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, 0, &QueryError{Expr: match, Err: err}
		}
		results = append(results, content)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &QueryError{Expr: match, Err: err}
	}

	return results, total, nil
}

// Stats reports the exact record count and the store's current on-disk
// footprint, index structures included.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	if err := s.ready(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Path: s.path}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records_fts").Scan(&stats.RecordCount)
	if err != nil {
		return Stats{}, storageErr("count", err)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return Stats{}, storageErr("page_count", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return Stats{}, storageErr("page_size", err)
	}
	stats.SizeBytes = pageCount * pageSize

	return stats, nil
}

// ClearAll deletes every record and its index entries. The file is not
// vacuumed: freed pages are recycled by later inserts, so Stats may keep
// reporting the pre-clear footprint.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records_fts"); err != nil {
		return storageErr("clear", err)
	}
	return nil
}

// SetMeta stores a key/value pair in the metadata table, replacing any
// existing value.
func (s *SQLiteStore) SetMeta(ctx context.Context, key, value string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return storageErr("set meta", err)
	}
	return nil
}

// GetMeta returns the value for key, or ErrNotFound.
func (s *SQLiteStore) GetMeta(ctx context.Context, key string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", storageErr("get meta", err)
	}
	return value, nil
}
