// Package cache provides best-effort response caching with exact and
// semantic matching. A miss is never an error; cache failures only
// cost a recomputation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/debate"
)

// Stats reports cache effectiveness.
type Stats struct {
	Size          int
	Hits          int64
	Misses        int64
	Evictions     int64
	TotalRequests int64
	HitRate       float64
}

// ResponseCache stores panel responses keyed by query.
type ResponseCache interface {
	// Get returns a cached response for the query, matching exactly
	// or by embedding similarity depending on the implementation.
	Get(ctx context.Context, query string, queryVector []float32) (*debate.PanelResponse, bool)

	// Set stores a response for the query.
	Set(ctx context.Context, query string, queryVector []float32, response *debate.PanelResponse)

	// Clear drops all entries and resets counters.
	Clear(ctx context.Context)

	// Stats reports hit/miss counters.
	Stats(ctx context.Context) Stats

	Close() error
}

// NewFromConfig builds the configured cache backend. Returns nil when
// caching is disabled.
func NewFromConfig(cfg *config.CacheConfig) (ResponseCache, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(cfg), nil
	case "redis":
		return NewRedisCache(cfg)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// hashQuery normalizes and hashes a query for exact-match lookup.
func hashQuery(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}
