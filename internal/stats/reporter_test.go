package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/logseek/internal/storage"
)

func TestReporter(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	r := NewReporter(store)

	report := r.Report(ctx)
	assert.Empty(t, report.Err)
	assert.Equal(t, int64(0), report.TotalRecords)
	assert.Equal(t, ":memory:", report.Path)

	_, err = store.InsertBatch(ctx, []string{"one", "two", "three"}, 10)
	require.NoError(t, err)

	report = r.Report(ctx)
	assert.Empty(t, report.Err)
	assert.Equal(t, int64(3), report.TotalRecords)
	assert.GreaterOrEqual(t, report.SizeMB, 0.0)
}

func TestReporter_ErrorShape(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Failure comes back as a populated Err field, not a panic or a
	// returned error.
	r := NewReporter(store)
	report := r.Report(ctx)
	assert.NotEmpty(t, report.Err)
	assert.Equal(t, int64(0), report.TotalRecords)
}

func TestRoundMB(t *testing.T) {
	assert.Equal(t, 0.0, roundMB(0))
	assert.Equal(t, 1.0, roundMB(1024*1024))
	assert.Equal(t, 2.5, roundMB(2621440))
	assert.Equal(t, 0.01, roundMB(10486)) // ~0.01 MB
}
