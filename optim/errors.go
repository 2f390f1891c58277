package optim

import "errors"

// ErrNumericalInstability is returned by Step when a NaN or Inf value
// is detected in a gradient or the weights it would produce. The step
// is rolled back (moment state and weights are left exactly as they
// were) and the solver's own LearnRate is halved before the error is
// returned, so the caller's recovery is simply: skip this batch and
// keep training.
var ErrNumericalInstability = errors.New("optim: numerical instability detected (NaN/Inf in gradient or weights)")

// ErrInstabilityUnrecoverable is returned by Step in place of
// ErrNumericalInstability once LearnRate has already been halved down
// to minLearnRate and the step is still unstable: halving further
// would not help, so Step gives up
// instead of silently spinning. The caller should halt the run.
var ErrInstabilityUnrecoverable = errors.New("optim: numerical instability persists at minimum learning rate")

// IsNumericalInstability reports whether err (or anything it wraps) is
// ErrNumericalInstability, including the unrecoverable variant.
func IsNumericalInstability(err error) bool {
	return errors.Is(err, ErrNumericalInstability) || errors.Is(err, ErrInstabilityUnrecoverable)
}

// IsInstabilityUnrecoverable reports whether err (or anything it
// wraps) is ErrInstabilityUnrecoverable, meaning the caller should
// halt rather than retry.
func IsInstabilityUnrecoverable(err error) bool {
	return errors.Is(err, ErrInstabilityUnrecoverable)
}
