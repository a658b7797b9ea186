// Package cache memoizes index searches until the index changes.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
	"sync"
	"time"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// QueryCache is an LRU of search results with a TTL. Invalidate bumps a
// generation so entries stored before the bump are never served.
type QueryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front is most recently used
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	now      func() time.Time

	hits, misses int
}

type cacheEntry struct {
	key       string
	results   domain.RetrievalResult
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(query string, topK int) string {
	hash := sha256.Sum256([]byte(strconv.Itoa(topK) + "\x00" + query))
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(query string, topK int) (domain.RetrievalResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topK)
	el, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false
	}

	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		c.order.Remove(el)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(el)
	c.hits++
	return entry.results, true
}

func (c *QueryCache) Put(query string, topK int, results domain.RetrievalResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topK)
	entry := &cacheEntry{
		key:       key,
		results:   results,
		timestamp: c.now(),
		indexGen:  c.indexGen,
	}

	if el, exists := c.entries[key]; exists {
		el.Value = entry
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(entry)
}

func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.indexGen++
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counts since creation.
func (c *QueryCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// CachedIndex serves repeated searches from a QueryCache and invalidates it
// whenever the wrapped index is mutated.
type CachedIndex struct {
	port.Index
	cache *QueryCache
}

func NewCachedIndex(index port.Index, cache *QueryCache) *CachedIndex {
	return &CachedIndex{
		Index: index,
		cache: cache,
	}
}

func (ix *CachedIndex) Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	if results, hit := ix.cache.Get(query, k); hit {
		return results, nil
	}

	results, err := ix.Index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	ix.cache.Put(query, k, results)
	return results, nil
}

func (ix *CachedIndex) Insert(ctx context.Context, chunks []domain.Chunk) error {
	defer ix.cache.Invalidate()
	return ix.Index.Insert(ctx, chunks)
}

func (ix *CachedIndex) Clear(ctx context.Context) error {
	defer ix.cache.Invalidate()
	return ix.Index.Clear(ctx)
}

// Close closes the wrapped index if it holds resources.
func (ix *CachedIndex) Close() error {
	if c, ok := ix.Index.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Cache exposes the underlying cache.
func (ix *CachedIndex) Cache() *QueryCache {
	return ix.cache
}
