package imaging

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestNewBufferCache(t *testing.T) {
	cache := NewBufferCache()
	if cache == nil {
		t.Fatal("NewBufferCache returned nil")
	}
	if cache.buffers == nil {
		t.Fatal("NewBufferCache did not initialize buffers map")
	}
}

func TestBufferCache_Load(t *testing.T) {
	cache := NewBufferCache()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	b1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b1.Width != 100 || b1.Height != 80 || b1.Channels != 3 {
		t.Errorf("unexpected shape: got %dx%dx%d, want 100x80x3", b1.Width, b1.Height, b1.Channels)
	}

	b2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if &b1.Pix[0] != &b2.Pix[0] {
		t.Error("second Load did not return cached buffer")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestBufferCache_Load_NonExistent(t *testing.T) {
	cache := NewBufferCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestBufferCache_Load_InvalidImage(t *testing.T) {
	cache := NewBufferCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Load error: got %v, want ErrDecode", err)
	}
	if cache.Len() != 0 {
		t.Error("failed load should not be cached")
	}
}

func TestBufferCache_ClearAndEvict(t *testing.T) {
	cache := NewBufferCache()
	p1 := createTestImageFile(t, 10, 10, color.RGBA{0, 255, 0, 255})
	p2 := createTestImageFile(t, 10, 10, color.RGBA{0, 0, 255, 255})

	for _, p := range []string{p1, p2} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(p1)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}
	cache.Evict("/nonexistent/path") // no-op

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries, want 0", cache.Len())
	}
}

func TestBufferCache_ConcurrentAccess(t *testing.T) {
	cache := NewBufferCache()
	imgPath := createTestImageFile(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}
