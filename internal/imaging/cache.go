package imaging

import (
	"fmt"
	"os"
	"sync"
)

// BufferCache provides thread-safe caching of decoded images to avoid
// redundant disk reads and decodes.
//
// The cache stores Buffers keyed by their file path. Once an image is loaded,
// subsequent Load() calls for the same path return the cached Buffer without
// disk I/O. Cached Buffers are shared between callers; transforms never write
// to their input, so sharing is safe as long as callers do not modify Pix.
//
// # Memory Management
//
// Cached buffers remain in memory until explicitly removed via Evict() or
// Clear(). For long-running processes handling many images, consider periodic
// cleanup to prevent unbounded memory growth.
type BufferCache struct {
	mu      sync.RWMutex
	buffers map[string]Buffer
}

// NewBufferCache creates and initializes a new empty cache.
func NewBufferCache() *BufferCache {
	return &BufferCache{
		buffers: make(map[string]Buffer),
	}
}

// Load retrieves a buffer from the cache or reads and decodes it from disk.
//
// The buffer is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error wrapping ErrDecode if the file is not a supported image
func (c *BufferCache) Load(path string) (Buffer, error) {
	c.mu.RLock()
	if b, ok := c.buffers[path]; ok {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to open image: %w", err)
	}

	b, err := Decode(data)
	if err != nil {
		return Buffer{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	c.mu.Lock()
	c.buffers[path] = b
	c.mu.Unlock()

	return b, nil
}

// Len reports the number of cached buffers.
func (c *BufferCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}

// Clear removes all buffers from the cache.
func (c *BufferCache) Clear() {
	c.mu.Lock()
	c.buffers = make(map[string]Buffer)
	c.mu.Unlock()
}

// Evict removes a specific buffer from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *BufferCache) Evict(path string) {
	c.mu.Lock()
	delete(c.buffers, path)
	c.mu.Unlock()
}
