// Package engine assembles the record store, importer, search service and
// stats reporter into one facade with explicit dependency injection.
//
// The engine owns two cross-cutting rules the components can't enforce
// alone: imports are serialized through a non-blocking try-lock (a second
// concurrent import fails fast), and every write (import completion or
// clear) invalidates the search result cache so reads stay consistent
// with the store.
package engine
