package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTestImageFile creates a PNG file filled with c and returns its path.
// The file is removed when the test finishes.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}

// solidBuffer creates an RGB buffer filled with one colour.
func solidBuffer(width, height int, r, g, b uint8) Buffer {
	buf := NewBuffer(width, height, 3)
	for i := 0; i < width*height; i++ {
		buf.Pix[i*3], buf.Pix[i*3+1], buf.Pix[i*3+2] = r, g, b
	}
	return buf
}

// quadrantBuffer creates an RGB buffer with red, green, blue and white
// quadrants.
func quadrantBuffer(width, height int) Buffer {
	buf := NewBuffer(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c [3]uint8
			switch {
			case x < width/2 && y < height/2:
				c = [3]uint8{255, 0, 0}
			case x >= width/2 && y < height/2:
				c = [3]uint8{0, 255, 0}
			case x < width/2:
				c = [3]uint8{0, 0, 255}
			default:
				c = [3]uint8{255, 255, 255}
			}
			for ch := 0; ch < 3; ch++ {
				buf.Set(x, y, ch, c[ch])
			}
		}
	}
	return buf
}

// gradientGray creates a single-channel horizontal ramp.
func gradientGray(width, height int) Buffer {
	buf := NewBuffer(width, height, 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.Set(x, y, 0, uint8(x*255/max(width-1, 1)))
		}
	}
	return buf
}

// discsBuffer draws two overlapping white discs on black, the classic
// watershed separation fixture.
func discsBuffer(width, height int) Buffer {
	buf := NewBuffer(width, height, 3)
	cx1, cx2, cy, r := width/3, 2*width/3, height/2, width/4
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d1 := (x-cx1)*(x-cx1) + (y-cy)*(y-cy)
			d2 := (x-cx2)*(x-cx2) + (y-cy)*(y-cy)
			if d1 <= r*r || d2 <= r*r {
				for ch := 0; ch < 3; ch++ {
					buf.Set(x, y, ch, 255)
				}
			}
		}
	}
	return buf
}

// distinctColors counts the unique pixel values in a buffer.
func distinctColors(b Buffer) int {
	seen := make(map[string]struct{})
	for i := 0; i < b.Width*b.Height; i++ {
		seen[string(b.Pix[i*b.Channels:(i+1)*b.Channels])] = struct{}{}
	}
	return len(seen)
}

// onlyValues reports whether every sample is one of the allowed values.
func onlyValues(b Buffer, allowed ...uint8) bool {
	for _, v := range b.Pix {
		ok := false
		for _, a := range allowed {
			if v == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
