package ops

import (
	"context"
	"errors"

	"github.com/ironsheep/imageops/internal/imaging"
)

// Kind separates failures caused by the request from failures inside the
// service.
type Kind int

const (
	// KindServer is a computation failure or anything unrecognized.
	KindServer Kind = iota

	// KindClient is a malformed image, invalid argument or unknown
	// operation.
	KindClient
)

func (k Kind) String() string {
	if k == KindClient {
		return "client"
	}
	return "server"
}

// Classify reports whether err was caused by the caller.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, imaging.ErrDecode),
		errors.Is(err, imaging.ErrInvalidInput),
		errors.Is(err, ErrUnknownOperation),
		errors.Is(err, context.Canceled):
		return KindClient
	default:
		return KindServer
	}
}
