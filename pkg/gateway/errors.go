package gateway

import (
	"errors"
	"fmt"
)

// ErrOutcomeUnknown marks a call that timed out without a response. The
// effect may or may not have been applied by the processor.
var ErrOutcomeUnknown = errors.New("gateway call outcome unknown")

// Error is the single failure type surfaced by gateway adapters.
type Error struct {
	Op        string
	Retryable bool
	Code      string
	Err       error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s failed (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a gateway error worth retrying.
func IsRetryable(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Retryable
}

// IsOutcomeUnknown reports whether err leaves the processor state undetermined.
func IsOutcomeUnknown(err error) bool {
	return errors.Is(err, ErrOutcomeUnknown)
}

// ErrMalformedEvent is returned by webhook verifiers when an authentic
// notification cannot be decoded.
var ErrMalformedEvent = errors.New("malformed processor event")
