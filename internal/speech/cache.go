package speech

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheMetrics receives cache accounting
type CacheMetrics interface {
	RecordTTSCacheHit()
	RecordTTSCacheMiss()
	SetTTSCacheEntries(n int)
}

type cacheEntry struct {
	text      string
	audio     *Audio
	expiresAt time.Time
}

// Cache is a bounded LRU of synthesized clips keyed by prepared text.
// Concurrent misses for the same text share one upstream call.
type Cache struct {
	next    Provider
	size    int
	ttl     time.Duration
	metrics CacheMetrics
	now     func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

// NewCache wraps next with a cache of at most size clips, each kept for ttl.
// A non-positive size disables caching.
func NewCache(next Provider, size int, ttl time.Duration, metrics CacheMetrics) *Cache {
	return &Cache{
		next:    next,
		size:    size,
		ttl:     ttl,
		metrics: metrics,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Synthesize returns the cached clip for text or fetches it from the wrapped provider
func (c *Cache) Synthesize(ctx context.Context, text string) (*Audio, error) {
	if c.size <= 0 {
		return c.next.Synthesize(ctx, text)
	}

	if audio, ok := c.get(text); ok {
		if c.metrics != nil {
			c.metrics.RecordTTSCacheHit()
		}
		return audio, nil
	}
	if c.metrics != nil {
		c.metrics.RecordTTSCacheMiss()
	}

	// The shared call must outlive any single caller giving up.
	v, err, _ := c.group.Do(text, func() (interface{}, error) {
		audio, err := c.next.Synthesize(context.WithoutCancel(ctx), text)
		if err != nil {
			return nil, err
		}
		c.put(text, audio)
		return audio, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Audio), nil
}

// Len returns the number of cached clips, including expired ones not yet evicted
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(text string) (*Audio, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.ttl > 0 && !c.now().Before(entry.expiresAt) {
		c.removeElement(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.audio, true
}

func (c *Cache) put(text string, audio *Audio) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.entries[text]; ok {
		entry := el.Value.(*cacheEntry)
		entry.audio = audio
		entry.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.entries[text] = c.order.PushFront(&cacheEntry{text: text, audio: audio, expiresAt: expiresAt})
	for c.order.Len() > c.size {
		c.removeElement(c.order.Back())
	}
	c.reportSize()
}

// Must be called with c.mu held.
func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).text)
	c.reportSize()
}

func (c *Cache) reportSize() {
	if c.metrics != nil {
		c.metrics.SetTTSCacheEntries(c.order.Len())
	}
}
