package importer

import "crypto/md5" //nolint:gosec // content identity, not security

// Deduplicator classifies records as first-seen or duplicate within one
// import run. It keys on a 128-bit content digest so memory per unique
// record is a fixed-size hash rather than the record itself. MD5 is used
// for identity, not security; the astronomically unlikely collision
// (two distinct records treated as identical) is an accepted trade-off.
//
// The seen-set is scoped to a single run and never consults the store:
// re-importing the same file in a second run adds a full second copy.
// That is a design limitation of per-run dedup, not an oversight.
type Deduplicator struct {
	seen map[[md5.Size]byte]struct{}
}

// NewDeduplicator creates an empty run-scoped Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[[md5.Size]byte]struct{}),
	}
}

// IsDuplicate reports whether record was seen earlier in this run,
// marking first-seen records as seen.
func (d *Deduplicator) IsDuplicate(record string) bool {
	digest := md5.Sum([]byte(record)) //nolint:gosec
	if _, ok := d.seen[digest]; ok {
		return true
	}
	d.seen[digest] = struct{}{}
	return false
}

// Seen returns the number of distinct records observed so far.
func (d *Deduplicator) Seen() int {
	return len(d.seen)
}

// Filter returns the records not seen earlier in this run, preserving
// order. Dropped count is len(records) - len(result).
func (d *Deduplicator) Filter(records []string) []string {
	unique := records[:0:len(records)]
	for _, record := range records {
		if !d.IsDuplicate(record) {
			unique = append(unique, record)
		}
	}
	return unique
}
