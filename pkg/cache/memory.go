package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/debate"
	"github.com/kadirpekel/agora/pkg/embedders"
	"github.com/kadirpekel/agora/pkg/utils"
)

type memoryEntry struct {
	query     string
	vector    []float32
	response  *debate.PanelResponse
	storedAt  time.Time
	entryHits int
}

// MemoryCache is an in-process cache with exact-hash lookup plus a
// semantic scan over stored query embeddings. Entries expire after
// the TTL; when full, the oldest entry is evicted.
type MemoryCache struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	ttl       time.Duration
	threshold float64
	maxSize   int

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time
}

// NewMemoryCache builds an in-memory response cache.
func NewMemoryCache(cfg *config.CacheConfig) *MemoryCache {
	slog.Info("Initialized memory response cache",
		"ttl_hours", cfg.TTLHours,
		"similarity_threshold", cfg.SimilarityThreshold,
		"max_entries", cfg.MaxEntries)

	return &MemoryCache{
		entries:   make(map[string]*memoryEntry),
		ttl:       time.Duration(cfg.TTLHours) * time.Hour,
		threshold: cfg.SimilarityThreshold,
		maxSize:   cfg.MaxEntries,
		now:       time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, query string, queryVector []float32) (*debate.PanelResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Exact match first.
	hash := hashQuery(query)
	if entry, ok := c.entries[hash]; ok {
		if !c.expired(entry) {
			c.hits++
			entry.entryHits++
			slog.Info("Cache hit (exact)", "query", utils.Truncate(query, 50))
			return entry.response, true
		}
		delete(c.entries, hash)
	}

	// Semantic scan, dropping expired entries along the way.
	for entryHash, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, entryHash)
			continue
		}
		similarity := embedders.CosineSimilarity(queryVector, entry.vector)
		if similarity >= c.threshold {
			c.hits++
			entry.entryHits++
			slog.Info("Cache hit (semantic)",
				"query", utils.Truncate(query, 50),
				"similarity", similarity)
			return entry.response, true
		}
	}

	c.misses++
	slog.Info("Cache miss", "query", utils.Truncate(query, 50))
	return nil, false
}

func (c *MemoryCache) Set(ctx context.Context, query string, queryVector []float32, response *debate.PanelResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[hashQuery(query)] = &memoryEntry{
		query:    query,
		vector:   queryVector,
		response: response,
		storedAt: c.now(),
	}
}

func (c *MemoryCache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*memoryEntry)
	c.hits, c.misses, c.evictions = 0, 0, 0
	slog.Info("Cache cleared")
}

func (c *MemoryCache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:          len(c.entries),
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		TotalRequests: total,
		HitRate:       rate,
	}
}

func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) expired(entry *memoryEntry) bool {
	return c.now().Sub(entry.storedAt) > c.ttl
}

func (c *MemoryCache) evictOldest() {
	var oldestHash string
	var oldest time.Time
	for hash, entry := range c.entries {
		if oldestHash == "" || entry.storedAt.Before(oldest) {
			oldestHash = hash
			oldest = entry.storedAt
		}
	}
	if oldestHash != "" {
		delete(c.entries, oldestHash)
		c.evictions++
	}
}
