// Package translate resolves chat message translations through an external
// boundary, deduplicating in-flight requests and caching results.
package translate

// cache is a bounded insertion-ordered map from cache key to translated
// text. When full it evicts the oldest half of its entries, matching the
// original deployment's behavior; recency of use is deliberately ignored.
type cache struct {
	max     int
	entries map[string]string
	order   []string
}

func newCache(max int) *cache {
	return &cache{
		max:     max,
		entries: make(map[string]string),
	}
}

func (c *cache) get(key string) (string, bool) {
	value, ok := c.entries[key]
	return value, ok
}

// put inserts a translation, evicting len/2 oldest entries first when the
// cache is at capacity. Returns how many entries were evicted. The entry
// being inserted is never evicted.
func (c *cache) put(key, value string) int {
	evicted := 0
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		evicted = len(c.entries) / 2
		for _, old := range c.order[:evicted] {
			delete(c.entries, old)
		}
		c.order = append(c.order[:0], c.order[evicted:]...)
	}

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value
	return evicted
}

func (c *cache) len() int {
	return len(c.entries)
}
