package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/versematch/versematch/internal/observe"
	"github.com/versematch/versematch/internal/scripture"
)

// Cache builds and retains one [Index] per translation id for the lifetime of
// the process. Concurrent first-use calls for the same translation share a
// single in-flight build.
//
// All methods are safe for concurrent use.
type Cache struct {
	library *scripture.Library
	metrics *observe.Metrics

	mu      sync.RWMutex
	indexes map[string]*Index

	group  singleflight.Group
	builds atomic.Int64
}

// CacheOption configures a [Cache].
type CacheOption func(*Cache)

// WithMetrics records index build counts and durations on m.
func WithMetrics(m *observe.Metrics) CacheOption {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache creates an empty cache over library.
func NewCache(library *scripture.Library, opts ...CacheOption) *Cache {
	c := &Cache{
		library: library,
		indexes: make(map[string]*Index),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the index for translationID, building it on first use.
func (c *Cache) Get(translationID string) (*Index, error) {
	c.mu.RLock()
	ix, ok := c.indexes[translationID]
	c.mu.RUnlock()
	if ok {
		return ix, nil
	}

	v, err, _ := c.group.Do(translationID, func() (any, error) {
		// Another caller may have completed between the RLock and Do.
		c.mu.RLock()
		ix, ok := c.indexes[translationID]
		c.mu.RUnlock()
		if ok {
			return ix, nil
		}

		t := c.library.Translation(translationID)
		if t == nil {
			return nil, fmt.Errorf("index: unknown translation %q", translationID)
		}
		start := time.Now()
		built := Build(t)
		c.builds.Add(1)
		c.metrics.RecordIndexBuild(context.Background(), translationID, time.Since(start))

		c.mu.Lock()
		c.indexes[translationID] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

// Search runs a query against the translation's index. Failures are logged
// and swallowed: a missing translation or failed build yields an empty
// result, never an error to the caller.
func (c *Cache) Search(translationID, query string, limit int, opts Options) []Result {
	ix, err := c.Get(translationID)
	if err != nil {
		slog.Warn("text search unavailable", "translation", translationID, "error", err)
		return nil
	}
	return ix.Search(query, limit, opts)
}

// Builds reports how many index builds have completed. Exposed for tests and
// metrics.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

// Reset drops every cached index. The next Get rebuilds from the library's
// current state; call after [scripture.Library.Refresh].
func (c *Cache) Reset() {
	c.mu.Lock()
	c.indexes = make(map[string]*Index)
	c.mu.Unlock()
}
