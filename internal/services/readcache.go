package services

import (
	json "github.com/goccy/go-json"

	"github.com/wavenation/wavenation/internal/cache"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/metrics"
)

// Read cache keys
const (
	cacheKeyPublished = "charts:published:"
	cacheKeySlug      = "charts:slug:"
	cacheKeyMetrics   = "charts:metrics"
	cacheKeyOverview  = "charts:overview"
	cacheKeySchedule  = "schedule:normalized"
)

// readThrough serves key from c when present, otherwise calls load and
// stores its JSON encoding. Load errors are returned and nothing is cached.
func readThrough[T any](c cache.Cache, m metrics.Recorder, log logger.Logger, key string, load func() (T, error)) (T, error) {
	if raw, ok := c.Get(key); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			m.IncCacheHits()
			return cached, nil
		}
		log.Warn("Discarding undecodable cache entry", "key", key)
		c.Delete(key)
	}
	m.IncCacheMisses()

	v, err := load()
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		c.Set(key, raw)
	}
	return v, nil
}
