// Package search turns free user text into safe FTS5 match expressions
// and executes ranked, paginated retrieval against the record store.
//
// Sanitization strips the engine's control characters and rebuilds the
// query as a disjunction of exact-phrase tokens, so arbitrary input can
// never inject query syntax. The Service layers an optional TTL'd LRU
// result cache over the store; the owning engine invalidates it on writes.
package search
