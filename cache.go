package bmpdb

import (
	"image"
	"sync"
)

// Cache remembers decoded images by the absolute path they were loaded
// from. It is safe for use from concurrent scan workers.
type Cache struct {
	mu sync.RWMutex
	m  map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{
		m: make(map[string]image.Image),
	}
}

func (c *Cache) Get(path string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.m[path]
	return img, ok
}

func (c *Cache) Put(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[path] = img
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
