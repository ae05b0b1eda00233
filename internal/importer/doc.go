// Package importer streams line-delimited text sources into the record
// store in bounded memory.
//
// The pipeline is: read one line at a time -> trim and repair UTF-8 ->
// accumulate into a batch -> optionally deduplicate the batch against the
// run's seen-hash set -> submit surviving records as one transactional
// bulk insert. Statistics (lines, imported, duplicates, empties, timing)
// accumulate across the run and are returned alongside any error, so a
// partially committed import is still observable.
//
// Deduplication is scoped to a single run and held entirely in memory;
// it never consults the store's existing contents.
package importer
