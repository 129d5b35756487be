package embedmodel

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/latticeforge/mnemo/internal/vecmath"
)

type cacheEntry struct {
	value     vecmath.Vec
	expiresAt time.Time
}

type lruNode struct {
	key   string
	entry cacheEntry
}

// Cache is a thread-safe LRU+TTL memoization cache for embedding calls,
// keyed by a hash of the input text.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
}

// NewCache creates an embedding cache with the given capacity and TTL.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *Cache) get(key string) (vecmath.Vec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	node := elem.Value.(*lruNode)
	if time.Now().After(node.entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return node.entry.value, true
}

func (c *Cache) set(key string, value vecmath.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruNode).entry = cacheEntry{value: value, expiresAt: expiresAt}
		return
	}
	elem := c.order.PushFront(&lruNode{key: key, entry: cacheEntry{value: value, expiresAt: expiresAt}})
	c.items[key] = elem
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruNode).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// HashKey derives a stable cache key from input text.
func HashKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// CachedModel wraps a Model, memoizing InferBatch results per input text so
// repeated embedding requests for the same content skip the provider call.
type CachedModel struct {
	Model
	cache *Cache
}

// NewCachedModel wraps model with an LRU+TTL cache of the given capacity
// and entry lifetime.
func NewCachedModel(model Model, capacity int, ttl time.Duration) *CachedModel {
	return &CachedModel{Model: model, cache: NewCache(capacity, ttl)}
}

func (c *CachedModel) InferBatch(ctx context.Context, texts []string) ([]vecmath.Vec, error) {
	out := make([]vecmath.Vec, len(texts))
	var miss []string
	var missIdx []int
	for i, t := range texts {
		key := HashKey(t)
		if v, ok := c.cache.get(key); ok {
			out[i] = v
			continue
		}
		miss = append(miss, t)
		missIdx = append(missIdx, i)
	}
	if len(miss) == 0 {
		return out, nil
	}
	fetched, err := c.Model.InferBatch(ctx, miss)
	if err != nil {
		return nil, err
	}
	for i, idx := range missIdx {
		out[idx] = fetched[i]
		c.cache.set(HashKey(miss[i]), fetched[i])
	}
	return out, nil
}

func (c *CachedModel) InferAndFuse(ctx context.Context, texts []string) (vecmath.Vec, error) {
	vecs, err := c.InferBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return vecmath.MeanPool(vecs)
}

func (c *CachedModel) InferWithChunk(ctx context.Context, text string) (vecmath.Vec, error) {
	return InferWithChunkDefault(ctx, c, text)
}
