package parcel

import (
	"github.com/rotisserie/eris"

	"github.com/PhelelaniM/UrbanMind/internal/coords"
)

// Resolver outcomes other than success. Callers match with eris.Is.
var (
	// ErrInvalidInput is shared with the coords package so a parse failure
	// and a resolver range check are the same kind of error.
	ErrInvalidInput = coords.ErrInvalid

	// ErrNotFound means no feature matched. It is a normal outcome, not a fault.
	ErrNotFound = eris.New("parcel not found")

	// ErrTransport means a remote resolver could not be reached or answered
	// with something unusable.
	ErrTransport = eris.New("resolver transport failure")
)
