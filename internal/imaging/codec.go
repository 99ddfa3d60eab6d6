package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// MimeType is the content type of every encoded Buffer.
const MimeType = "image/png"

// Decode converts an encoded image container into a Buffer.
//
// Any format registered with the image package is accepted: PNG, JPEG, GIF,
// BMP, TIFF and WebP. EXIF orientation is applied for JPEG input.
//
// # Channel Mapping
//
//   - Gray and Gray16 images decode to 1 channel
//   - Opaque colour images decode to 3 channels (RGB)
//   - Colour images with any non-opaque pixel decode to 4 channels (RGBA,
//     straight alpha)
//
// 16-bit samples keep their high byte.
//
// # Errors
//
// Returns an error wrapping ErrDecode if data is empty, truncated, or not a
// recognized container.
func Decode(data []byte) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, fmt.Errorf("empty input: %w", ErrDecode)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img), nil
}

// Encode converts a Buffer into PNG bytes.
//
// PNG is lossless for 8-bit data, so Decode(Encode(b)) reproduces b exactly
// for 1- and 3-channel buffers and for 4-channel buffers that carry some
// transparency. A 4-channel buffer that is fully opaque is written as RGB
// and decodes back as 3 channels.
//
// An empty buffer encodes to nil bytes; PNG has no zero-sized form.
func Encode(b Buffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.Empty() {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, b.Image(), imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBase64 decodes standard base64 text wrapping an image container.
// A leading "data:<mime>;base64," prefix and surrounding whitespace are
// ignored.
func DecodeBase64(s string) (Buffer, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Buffer{}, fmt.Errorf("invalid base64: %v: %w", err, ErrDecode)
	}
	return Decode(data)
}

// EncodeBase64 encodes a Buffer as PNG and wraps it in standard base64.
func EncodeBase64(b Buffer) (string, error) {
	data, err := Encode(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// FromImage copies a decoded image into a new Buffer using the channel
// mapping documented on Decode.
func FromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out := NewBuffer(w, h, 1)
		for y := 0; y < h; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Pix[y*w:(y+1)*w], src.Pix[start:start+w])
		}
		return out
	case *image.Gray16:
		out := NewBuffer(w, h, 1)
		for y := 0; y < h; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = src.Pix[start+x*2]
			}
		}
		return out
	}

	nrgba := imaging.Clone(img)
	channels := 4
	if nrgba.Opaque() {
		channels = 3
	}
	out := NewBuffer(w, h, channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := y*nrgba.Stride + x*4
			d := (y*w + x) * channels
			copy(out.Pix[d:d+channels], nrgba.Pix[s:s+channels])
		}
	}
	return out
}

// Image returns the buffer as an image.Image: *image.Gray for one channel,
// *image.NRGBA otherwise. The pixel data is copied.
func (b Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	if b.Channels == 1 {
		img := image.NewGray(rect)
		copy(img.Pix, b.Pix)
		return img
	}
	img := image.NewNRGBA(rect)
	n := b.Width * b.Height
	for i := 0; i < n; i++ {
		s := i * b.Channels
		d := i * 4
		copy(img.Pix[d:d+3], b.Pix[s:s+3])
		if b.Channels == 4 {
			img.Pix[d+3] = b.Pix[s+3]
		} else {
			img.Pix[d+3] = 0xff
		}
	}
	return img
}
