// Package storage provides SQLite-based persistence for imported text
// records with an FTS5 full-text index.
//
// The storage layer manages:
//   - Transactional bulk inserts with bounded group sizes
//   - Ranked full-text retrieval with independent total counts
//   - Exact record counts and on-disk footprint reporting
//   - A key/value metadata table for operational markers
//
// # Database Schema
//
// Tables:
//   - records_fts: FTS5 virtual table over the raw record text
//     (porter + unicode61 tokenizer with diacritic removal)
//   - metadata: key/value pairs (last import stats, markers)
//   - schema_version: applied migration versions
//
// # Basic Usage
//
//	store, err := storage.Open(ctx, "logseek.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	inserted, err := store.InsertBatch(ctx, records, 10000)
//
//	results, total, err := store.Search(ctx, `"alpha" OR "beta"`, 30, 0)
//
// # Concurrency
//
// The store opens in WAL mode with a single pooled connection. Readers and
// the one bulk writer serialize at the pool rather than deadlocking, and a
// crash never tears a transaction group. Search expressions are expected
// to be pre-sanitized; a rejected expression surfaces as a QueryError.
package storage
