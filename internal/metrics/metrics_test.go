package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.AddImported(10)
	m.AddDuplicates(1)
	m.AddEmptyLines(2)
	m.IncBatch()
	m.ObserveImport(1.5)
	m.ObserveSearch("hit", "miss", 0.01, 5)
	m.IncCacheHit()
	m.IncCacheMiss()
}

func TestScrape(t *testing.T) {
	m := New()
	m.AddImported(42)
	m.ObserveSearch("hit", "miss", 0.02, 3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "records_imported_total 42")
	assert.Contains(t, body, `search_queries_total{result_type="hit"} 1`)
}

func TestIndependentRegistries(t *testing.T) {
	// Each Metrics owns a private registry, so two instances never
	// collide on registration.
	a := New()
	b := New()
	a.AddImported(1)
	b.AddImported(2)
}
