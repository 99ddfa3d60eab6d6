// Package imaging implements the image-transform catalogue: codec, grayscale
// conversion, median denoising, CLAHE contrast equalization, Otsu
// binarization, k-means colour quantization, watershed region segmentation,
// Canny edge detection and point distance measurement.
//
// All transforms operate on Buffer, a plain 8-bit interleaved pixel buffer,
// rather than image.Image. Decode and Encode convert at the boundary.
//
// # Coordinate System
//
// Pixel (0,0) is the top-left corner, X increases rightward and Y increases
// downward. Buffer samples are stored row-major: the sample for channel c of
// pixel (x, y) lives at Pix[(y*Width+x)*Channels+c].
//
// # Value Semantics
//
// No transform modifies its input. Every call allocates and returns a new
// Buffer, except that an empty Buffer (Width*Height == 0) is returned as-is.
// Intermediate label maps and cluster centres never escape a call.
//
// # Thread Safety
//
// Transforms are stateless and safe for concurrent use. BufferCache is safe
// for concurrent use. QuantizeColors draws its random centres from per-call,
// per-attempt generators, so concurrent calls share no generator state.
//
// # Determinism
//
// Every transform except QuantizeColors is deterministic. QuantizeColors is
// reproducible only when KMeansOptions.Seed is non-zero; with the default
// seed only structural properties hold across runs (at most k colours, the
// mean colour for k == 1).
//
// # Error Handling
//
// Errors wrap one of ErrDecode, ErrInvalidInput or ErrComputation:
//   - Undecodable or truncated input containers
//   - Point counts other than two for MeasureDistance
//   - Buffers whose shape does not match their pixel data
//   - Clustering that cannot proceed (fewer pixels than clusters)
//
// Parameters with documented defaults (cluster count, thresholds, kernel
// and tile sizes) fall back silently instead of failing.
package imaging
