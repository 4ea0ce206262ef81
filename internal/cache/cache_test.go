package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wavenation/wavenation/internal/config"
	"github.com/wavenation/wavenation/internal/logger"
)

func cacheConfig(enabled bool, size int, ttl time.Duration) config.CacheConfig {
	return config.CacheConfig{Enabled: enabled, SizeMB: size, TTL: ttl}
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	c := New(cacheConfig(false, 10, time.Minute), logger.Nop())
	_, ok := c.Get("any")
	assert.False(t, ok)
	assert.IsType(t, noopCache{}, c)
}

func TestNew_ZeroSizeReturnsNoop(t *testing.T) {
	c := New(cacheConfig(true, 0, time.Minute), logger.Nop())
	assert.IsType(t, noopCache{}, c)
}

func TestNew_EnabledReturnsFreeCache(t *testing.T) {
	c := New(cacheConfig(true, 1, time.Minute), logger.Nop())
	assert.IsType(t, &FreeCache{}, c)
}

func TestNew_SubSecondTTLClampsToOne(t *testing.T) {
	c := New(cacheConfig(true, 1, 10*time.Millisecond), logger.Nop())
	assert.Equal(t, 1, c.(*FreeCache).ttl)
}

func TestFreeCache_SetGetDelete(t *testing.T) {
	c := New(cacheConfig(true, 1, time.Minute), logger.Nop())

	c.Set("charts:published", []byte("[1,2]"))
	val, ok := c.Get("charts:published")
	assert.True(t, ok)
	assert.Equal(t, []byte("[1,2]"), val)

	c.Delete("charts:published")
	_, ok = c.Get("charts:published")
	assert.False(t, ok)
}

func TestFreeCache_Clear(t *testing.T) {
	c := New(cacheConfig(true, 1, time.Minute), logger.Nop())
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	c.Clear()

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestFreeCache_MissingKey(t *testing.T) {
	c := New(cacheConfig(true, 1, time.Minute), logger.Nop())
	val, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestNoop(t *testing.T) {
	c := Noop()
	c.Set("k", []byte("v"))
	c.Delete("k")
	c.Clear()
	_, ok := c.Get("k")
	assert.False(t, ok)
}
