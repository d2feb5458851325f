package insights

import (
	"sync"
	"time"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// chartEntry represents cached chart data.
type chartEntry struct {
	expiry time.Time
	data   model.ChartData
}

// chartCache provides thread-safe caching of successful chart responses.
type chartCache struct {
	entries map[string]chartEntry
	stopCh  chan struct{}
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// newChartCache creates a new cache with the specified TTL.
func newChartCache(ttl time.Duration) *chartCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	cache := &chartCache{
		entries: make(map[string]chartEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

func chartKey(t model.ChartType, period string) string {
	return string(t) + "|" + period
}

// get retrieves chart data if it exists and hasn't expired.
func (c *chartCache) get(key string) (model.ChartData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return model.ChartData{}, false
	}
	return cloneChart(entry.data), true
}

// set stores chart data in the cache.
func (c *chartCache) set(key string, data model.ChartData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = chartEntry{
		data:   cloneChart(data),
		expiry: c.now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *chartCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := c.now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// clear removes all entries from the cache.
func (c *chartCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]chartEntry)
}

// size returns the number of entries in the cache.
func (c *chartCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// close stops the cleanup goroutine. It is safe to call more than once.
func (c *chartCache) close() {
	c.once.Do(func() { close(c.stopCh) })
}

func cloneChart(d model.ChartData) model.ChartData {
	out := model.ChartData{
		Labels:   append([]string(nil), d.Labels...),
		Datasets: make([]model.ChartDataset, len(d.Datasets)),
	}
	for i, ds := range d.Datasets {
		out.Datasets[i] = model.ChartDataset{Label: ds.Label, Data: append([]float64(nil), ds.Data...)}
	}
	return out
}
