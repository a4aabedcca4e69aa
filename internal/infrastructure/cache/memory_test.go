package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_DeletePrefix(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	c.Set("products:list:a", 1, time.Minute)
	c.Set("products:list:b", 2, time.Minute)
	c.Set("categories", 3, time.Minute)

	c.DeletePrefix("products:")

	_, ok := c.Get("products:list:a")
	assert.False(t, ok)
	_, ok = c.Get("products:list:b")
	assert.False(t, ok)
	v, ok := c.Get("categories")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}
