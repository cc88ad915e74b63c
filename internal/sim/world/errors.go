package world

import "errors"

// Sentinel errors surfaced by the public API. Transports map these onto the
// protocol error codes; kernel-internal violations panic instead.
var (
	ErrOutOfRange         = errors.New("out of range")
	ErrConfigRejected     = errors.New("config rejected")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
