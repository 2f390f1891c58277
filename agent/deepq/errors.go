package deepq

import "errors"

// Error wraps an error with the operation that produced it, matching
// the Op/Err convention used throughout this repo's packages
// (replay.Error, chess.Error).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

var (
	errNoLegalActions    = errors.New("no legal actions available to select from")
	errBatchSizeMismatch = errors.New("experience batch does not match configured batch size")
)

// IsNoLegalActions reports whether err indicates SelectAction was
// called with an empty legal-action set.
func IsNoLegalActions(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Err == errNoLegalActions
}
