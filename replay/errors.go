package replay

import "errors"

// Error wraps an error with the operation that produced it, matching
// buffer/expreplay's ExpReplayError convention in GoLearn.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errInsufficientSamples = errors.New("fewer experiences in the buffer than requested")

// IsInsufficientSamples returns whether err reports that Sample was
// called with k greater than the buffer's current size. Recovered
// locally by the caller skipping the update.
func IsInsufficientSamples(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Err == errInsufficientSamples
}
