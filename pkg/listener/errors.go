package listener

import "errors"

var (
	// ErrBind indicates that an endpoint could not be bound: the address or
	// port is unavailable or the OS rejected the bind. It is fatal both at
	// construction and at restore.
	ErrBind = errors.New("failed to bind listening socket")

	// ErrInvalidScheme is returned when a scheme name is neither plain nor
	// secure.
	ErrInvalidScheme = errors.New("invalid listener scheme")
)
