// Package cache provides the read cache in front of published charts and the
// normalized radio schedule.
package cache

import (
	"time"
	"unsafe"

	"github.com/coocood/freecache"

	"github.com/wavenation/wavenation/internal/config"
	"github.com/wavenation/wavenation/internal/logger"
)

// Cache stores serialized read models by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Clear()
}

// FreeCache is a Cache backed by a fixed-size freecache ring
type FreeCache struct {
	cache *freecache.Cache
	ttl   int
}

// New returns a freecache-backed Cache, or a no-op one when caching is
// disabled or sized to zero.
func New(cfg config.CacheConfig, log logger.Logger) Cache {
	if !cfg.Enabled || cfg.SizeMB <= 0 {
		log.Info("Read cache disabled")
		return Noop()
	}

	ttl := max(int(cfg.TTL/time.Second), 1)
	log.Info("Read cache initialized", "size_mb", cfg.SizeMB, "ttl_seconds", ttl)

	return &FreeCache{
		cache: freecache.NewCache(cfg.SizeMB * 1024 * 1024),
		ttl:   ttl,
	}
}

// unsafeStringToBytes converts without allocating; freecache copies keys.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *FreeCache) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

func (c *FreeCache) Delete(key string) {
	c.cache.Del(unsafeStringToBytes(key))
}

// Clear drops every entry. Writes call this since one chart can appear in
// several cached listings.
func (c *FreeCache) Clear() {
	c.cache.Clear()
}

type noopCache struct{}

// Noop returns a Cache that never stores anything
func Noop() Cache { return noopCache{} }

func (noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (noopCache) Set(_ string, _ []byte)      {}
func (noopCache) Delete(_ string)             {}
func (noopCache) Clear()                      {}
