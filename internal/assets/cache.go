package assets

import "sync"

// Cache holds the raw bytes of sources that parsed successfully, so another
// object requesting a mesh already on the GPU skips the I/O. Entries are
// dropped when their mesh is reclaimed. Fetch goroutines share it.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get returns the bytes cached for source and counts the hit or miss.
func (c *Cache) Get(source string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[source]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores data for source, replacing any previous entry.
func (c *Cache) Set(source string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[source] = data
}

// Delete drops source. Unknown sources are ignored.
func (c *Cache) Delete(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, source)
}

// Len is the number of cached sources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
