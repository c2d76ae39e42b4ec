// Package transient classifies external-service failures for retry
// accounting: only wrapped errors are retried within a pipeline stage's
// budget; everything else fails the stage immediately.
package transient

import "errors"

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Wrap marks err as retryable. Wrapping nil returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Is reports whether any error in the chain was marked retryable.
func Is(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
