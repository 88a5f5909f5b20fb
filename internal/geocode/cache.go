package geocode

import (
	"fmt"
	"sync"
)

// DefaultCacheSize bounds the address cache; at ~11 m bucket precision this
// comfortably covers one family's recent positions.
const DefaultCacheSize = 100

// Cache maps rounded coordinates to resolved addresses. Keys round both
// coordinates to 4 decimal places, so pairs within the same bucket share an
// entry. Eviction is oldest-inserted-first, not LRU: a hit does not refresh
// an entry's position.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]string
	order   []string
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]string),
	}
}

// CacheKey is the bucket key for a coordinate pair.
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

func (c *Cache) Get(lat, lon float64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr, ok := c.entries[CacheKey(lat, lon)]
	return addr, ok
}

func (c *Cache) Set(lat, lon float64, address string) {
	key := CacheKey(lat, lon)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = address
		return
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = address
	c.order = append(c.order, key)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
