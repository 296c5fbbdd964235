package translate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_PutAndGet(t *testing.T) {
	c := newCache(10)
	c.put("k", "v")

	value, ok := c.get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestCache_EvictsOldestHalfAtCapacity(t *testing.T) {
	c := newCache(4)
	for i := 1; i <= 4; i++ {
		c.put(fmt.Sprintf("k%d", i), "v")
	}

	evicted := c.put("k5", "v")
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 3, c.len())

	_, ok := c.get("k1")
	assert.False(t, ok)
	_, ok = c.get("k2")
	assert.False(t, ok)
	_, ok = c.get("k3")
	assert.True(t, ok)
	_, ok = c.get("k5")
	assert.True(t, ok)
}

func TestCache_NeverExceedsMax(t *testing.T) {
	c := newCache(6)
	for i := 0; i < 100; i++ {
		c.put(fmt.Sprintf("k%d", i), "v")
		assert.LessOrEqual(t, c.len(), 6)
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := newCache(2)
	c.put("a", "1")
	c.put("b", "2")

	evicted := c.put("a", "updated")
	assert.Zero(t, evicted)
	assert.Equal(t, 2, c.len())

	value, _ := c.get("a")
	assert.Equal(t, "updated", value)
}
