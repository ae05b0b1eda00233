package engine

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/logseek/internal/storage"
)

func setupEngine(t *testing.T, cfg Config) *Engine {
	eng, err := Open(context.Background(), ":memory:", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngine_ImportAndSearch(t *testing.T) {
	eng := setupEngine(t, Config{BatchSize: 10, PageSize: 30})
	ctx := context.Background()

	st, err := eng.Import(ctx, strings.NewReader("alpha line\nbeta line\nalpha line\n"), true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Imported)
	assert.Equal(t, int64(1), st.Duplicates)

	results, total, err := eng.Search(ctx, "alpha", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"alpha line"}, results)
}

func TestEngine_ImportRecordsMetadata(t *testing.T) {
	eng := setupEngine(t, Config{BatchSize: 10, PageSize: 30})
	ctx := context.Background()

	_, _, ok := eng.LastImport(ctx)
	assert.False(t, ok)

	_, err := eng.Import(ctx, strings.NewReader("one\ntwo\n"), true)
	require.NoError(t, err)

	at, count, ok := eng.LastImport(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(2), count)
	assert.WithinDuration(t, time.Now(), at, 5*time.Second)
}

func TestEngine_SerializesImports(t *testing.T) {
	eng := setupEngine(t, Config{BatchSize: 1, PageSize: 30})
	ctx := context.Background()

	// A reader that parks the first import until released.
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &blockingReader{
		data:    "slow import line\n",
		started: started,
		release: release,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := eng.Import(ctx, blocking, false)
		assert.NoError(t, err)
	}()

	<-started
	_, err := eng.Import(ctx, strings.NewReader("second import\n"), false)
	assert.ErrorIs(t, err, ErrImportInProgress)

	close(release)
	wg.Wait()

	// With the first import done the lock is free again.
	_, err = eng.Import(ctx, strings.NewReader("third import\n"), false)
	assert.NoError(t, err)
}

// blockingReader yields its data only after release is closed, signalling
// started on the first Read call.
type blockingReader struct {
	data    string
	started chan struct{}
	release chan struct{}
	once    sync.Once
	done    bool
}

func (r *blockingReader) Read(p []byte) (int, error) {
	r.once.Do(func() {
		close(r.started)
		<-r.release
	})
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestEngine_CacheInvalidatedByImport(t *testing.T) {
	eng := setupEngine(t, Config{
		BatchSize: 10,
		PageSize:  30,
		CacheSize: 16,
		CacheTTL:  time.Minute,
	})
	ctx := context.Background()

	_, err := eng.Import(ctx, strings.NewReader("cached term one\n"), true)
	require.NoError(t, err)

	_, total, err := eng.Search(ctx, "cached", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = eng.Import(ctx, strings.NewReader("cached term two\n"), true)
	require.NoError(t, err)

	// The second import invalidated the cached page.
	_, total, err = eng.Search(ctx, "cached", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestEngine_ClearAll(t *testing.T) {
	eng := setupEngine(t, Config{
		BatchSize: 10,
		PageSize:  30,
		CacheSize: 16,
		CacheTTL:  time.Minute,
	})
	ctx := context.Background()

	_, err := eng.Import(ctx, strings.NewReader("doomed record\n"), true)
	require.NoError(t, err)

	_, total, err := eng.Search(ctx, "doomed", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.NoError(t, eng.ClearAll(ctx))

	report := eng.Stats(ctx)
	assert.Empty(t, report.Err)
	assert.Equal(t, int64(0), report.TotalRecords)

	results, total, err := eng.Search(ctx, "doomed", 30, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, total)
}

func TestEngine_Stats(t *testing.T) {
	eng := setupEngine(t, Config{BatchSize: 10, PageSize: 30})
	ctx := context.Background()

	report := eng.Stats(ctx)
	assert.Empty(t, report.Err)
	assert.Equal(t, int64(0), report.TotalRecords)

	_, err := eng.Import(ctx, strings.NewReader("a\nb\nc\n"), false)
	require.NoError(t, err)

	report = eng.Stats(ctx)
	assert.Equal(t, int64(3), report.TotalRecords)
}

func TestEngine_InjectedStore(t *testing.T) {
	// New accepts any Store implementation, so engines over separate
	// stores are fully independent.
	ctx := context.Background()
	storeA, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer storeA.Close()
	storeB, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer storeB.Close()

	engA := New(storeA, Config{BatchSize: 10, PageSize: 30})
	engB := New(storeB, Config{BatchSize: 10, PageSize: 30})

	_, err = engA.Import(ctx, strings.NewReader("only in a\n"), true)
	require.NoError(t, err)

	_, totalA, err := engA.Search(ctx, "only", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, totalA)

	_, totalB, err := engB.Search(ctx, "only", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, totalB)
}
