package errors

import "fmt"

// FromStatus classifies an unexpected HTTP status for the given operation.
// 408 and 429 are retried; every other 4xx is definitive. 5xx and unknown
// codes are retried.
func FromStatus(operation string, statusCode int) *ClassifiedError {
	cat := Recoverable
	if statusCode >= 400 && statusCode < 500 && statusCode != 408 && statusCode != 429 {
		cat = Irrecoverable
	}
	return &ClassifiedError{
		Category:   cat,
		StatusCode: statusCode,
		Underlying: fmt.Errorf("%s: status %d", operation, statusCode),
	}
}

// FromNetwork classifies a transport-level failure. Network errors may be
// transient, so they are always recoverable.
func FromNetwork(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s: %w", operation, err),
	}
}
