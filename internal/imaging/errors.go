package imaging

import "errors"

// Error categories returned by this package. Callers should test with
// errors.Is; every returned error wraps exactly one of these with context.
var (
	// ErrDecode reports input bytes that are not a recognized or complete
	// image container.
	ErrDecode = errors.New("decode failed")

	// ErrInvalidInput reports a parameter or buffer outside the accepted
	// domain where no default applies.
	ErrInvalidInput = errors.New("invalid input")

	// ErrComputation reports an algorithmic step that could not complete.
	ErrComputation = errors.New("computation failed")
)
