package chess

import "errors"

// Error wraps an error with the operation that produced it, matching the
// "<op>: <message>" convention used throughout this codebase.
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

var (
	errInvalidFEN  = errors.New("invalid FEN")
	errIllegalMove = errors.New("illegal move")
)

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// IsInvalidFEN returns whether err reports a FEN parse/validation failure.
func IsInvalidFEN(err error) bool {
	return unwrapIs(err, errInvalidFEN)
}

// IsIllegalMove returns whether err reports an illegal move application.
func IsIllegalMove(err error) bool {
	return unwrapIs(err, errIllegalMove)
}

func unwrapIs(err, target error) bool {
	return errors.Is(err, target)
}
