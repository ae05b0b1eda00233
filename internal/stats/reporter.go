// Package stats reports aggregate store statistics in a value-based shape
// suitable for callers that render rather than handle errors.
package stats

import (
	"context"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/logseek/internal/storage"
)

// Report is a point-in-time view of the store. A failure is surfaced in
// the Err field rather than as a returned error, so presentation layers
// get one fixed shape either way.
type Report struct {
	TotalRecords int64   `json:"total_records"`
	SizeMB       float64 `json:"db_size_mb"`
	Path         string  `json:"db_path"`
	Err          string  `json:"error,omitempty"`
}

// Reporter is a thin pass-through to Store.Stats. Concurrent calls
// collapse into a single store round-trip; the result is never cached
// beyond the in-flight call.
type Reporter struct {
	store storage.Store
	group singleflight.Group
}

// NewReporter creates a Reporter over store.
func NewReporter(store storage.Store) *Reporter {
	return &Reporter{store: store}
}

// Report computes the current record count and human-scaled store size.
func (r *Reporter) Report(ctx context.Context) Report {
	v, err, _ := r.group.Do("stats", func() (interface{}, error) {
		s, err := r.store.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	if err != nil {
		return Report{Err: err.Error()}
	}

	s := v.(storage.Stats)
	return Report{
		TotalRecords: s.RecordCount,
		SizeMB:       roundMB(s.SizeBytes),
		Path:         s.Path,
	}
}

// roundMB converts bytes to megabytes rounded to two decimal places.
func roundMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}
