package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

func TestChartCache_Expiry(t *testing.T) {
	cache := newChartCache(time.Minute)
	defer cache.close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	key := chartKey(model.ChartExpense, "month")
	cache.set(key, model.ChartData{Labels: []string{"Ene"}})

	got, ok := cache.get(key)
	assert.True(t, ok)
	assert.Equal(t, []string{"Ene"}, got.Labels)
	assert.Equal(t, 1, cache.size())

	now = now.Add(2 * time.Minute)
	_, ok = cache.get(key)
	assert.False(t, ok)

	cache.clear()
	assert.Equal(t, 0, cache.size())
}

func TestChartCache_CloseTwice(_ *testing.T) {
	cache := newChartCache(0)
	cache.close()
	cache.close()
}
