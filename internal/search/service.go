package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/logseek/internal/metrics"
	"github.com/dshills/logseek/internal/storage"
)

// cacheEntry holds one cached result page with its expiration time.
type cacheEntry struct {
	results   []string
	total     int
	expiresAt time.Time
}

// Service is the public search entry point: it sanitizes free-text
// queries, executes ranked retrieval against the store, and pages results.
// An optional TTL'd LRU cache sits in front of the store; whoever drives
// writes must call InvalidateCache so cached pages never outlive the data
// they were computed from.
type Service struct {
	store    storage.Store
	pageSize int
	cache    *lru.Cache[string, cacheEntry]
	cacheTTL time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithPageSize sets the default result page cap used when a caller passes
// limit <= 0.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithCache enables the result cache with the given entry budget and TTL.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size <= 0 || ttl <= 0 {
			return
		}
		cache, err := lru.New[string, cacheEntry](size)
		if err != nil {
			// Only reachable with a non-positive size, guarded above.
			panic(fmt.Sprintf("failed to create LRU cache: %v", err))
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for query timings.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithMetrics attaches Prometheus collectors. Nil is fine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a search Service over store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		pageSize: storage.DefaultPageSize,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search sanitizes rawQuery and returns one ranked result page plus the
// total match count. A query that sanitizes to nothing short-circuits to
// ([], 0) without a store round-trip. Results are the original, unmodified
// record text; formatting is the caller's concern.
func (s *Service) Search(ctx context.Context, rawQuery string, limit, offset int) ([]string, int, error) {
	start := time.Now()

	if limit <= 0 {
		limit = s.pageSize
	}
	if offset < 0 {
		offset = 0
	}

	match := Sanitize(rawQuery)
	if match == MatchNone {
		s.metrics.ObserveSearch("zero_result", "bypass", time.Since(start).Seconds(), 0)
		return []string{}, 0, nil
	}

	key := cacheKey(match, limit, offset)
	if entry, ok := s.cacheGet(key); ok {
		s.metrics.IncCacheHit()
		s.metrics.ObserveSearch(resultType(entry.total), "hit", time.Since(start).Seconds(), len(entry.results))
		return entry.results, entry.total, nil
	}
	s.metrics.IncCacheMiss()

	results, total, err := s.store.Search(ctx, match, limit, offset)
	if err != nil {
		// The sanitizer guarantees well-formed expressions, so a rejection
		// here is an invariant violation worth logging loudly.
		s.log.Error("sanitized query rejected by store",
			"raw_query", rawQuery,
			"match", match,
			"error", err,
		)
		s.metrics.ObserveSearch("error", "miss", time.Since(start).Seconds(), 0)
		return nil, 0, err
	}
	if results == nil {
		results = []string{}
	}

	s.cachePut(key, cacheEntry{results: results, total: total})

	elapsed := time.Since(start)
	s.log.Debug("search executed",
		"match", match,
		"total", total,
		"returned", len(results),
		"duration", elapsed.Round(time.Microsecond),
	)
	s.metrics.ObserveSearch(resultType(total), "miss", elapsed.Seconds(), len(results))
	return results, total, nil
}

// InvalidateCache drops every cached result page. Called after any write
// to the store (import completion, clear).
func (s *Service) InvalidateCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *Service) cacheGet(key string) (cacheEntry, bool) {
	if s.cache == nil {
		return cacheEntry{}, false
	}
	entry, ok := s.cache.Get(key)
	if !ok {
		return cacheEntry{}, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(key)
		return cacheEntry{}, false
	}
	return entry, true
}

func (s *Service) cachePut(key string, entry cacheEntry) {
	if s.cache == nil {
		return
	}
	entry.expiresAt = time.Now().Add(s.cacheTTL)
	s.cache.Add(key, entry)
}

func cacheKey(match string, limit, offset int) string {
	return fmt.Sprintf("%s\x00%d\x00%d", match, limit, offset)
}

func resultType(total int) string {
	if total == 0 {
		return "zero_result"
	}
	return "hit"
}
