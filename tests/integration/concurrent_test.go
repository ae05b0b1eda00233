package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/logseek/internal/engine"
)

// TestConcurrentSearchDuringImport drives read traffic against the store
// while a bulk import is running. Searches and stats are read-only and
// need no external locking; they serialize against the writer inside the
// store without ever failing.
func TestConcurrentSearchDuringImport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}

	dir := t.TempDir()
	eng, err := engine.Open(context.Background(), filepath.Join(dir, "store.db"), engine.Config{
		BatchSize: 50,
		PageSize:  30,
	})
	require.NoError(t, err)
	defer eng.Close()

	ctx := context.Background()

	// Seed some data so searches have something to rank.
	seed := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		seed = append(seed, fmt.Sprintf("seed record %d with searchable text", i))
	}
	path := writeLines(t, dir, "seed.log", seed)
	_, err = eng.ImportFile(ctx, path, true)
	require.NoError(t, err)

	bulk := make([]string, 0, 2000)
	for i := 0; i < 2000; i++ {
		bulk = append(bulk, fmt.Sprintf("bulk record %d with searchable text", i))
	}
	bulkPath := writeLines(t, dir, "bulk.log", bulk)

	var importDone atomic.Bool
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer importDone.Store(true)
		st, err := eng.ImportFile(gctx, bulkPath, true)
		if err != nil {
			return err
		}
		if st.Imported != 2000 {
			return fmt.Errorf("expected 2000 imported, got %d", st.Imported)
		}
		return nil
	})

	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for !importDone.Load() {
				if _, _, err := eng.Search(gctx, "searchable", 10, 0); err != nil {
					return err
				}
				report := eng.Stats(gctx)
				if report.Err != "" {
					return fmt.Errorf("stats failed mid-import: %s", report.Err)
				}
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())

	// Everything landed once the dust settles.
	report := eng.Stats(ctx)
	require.Empty(t, report.Err)
	assert.Equal(t, int64(2200), report.TotalRecords)
}
