// Package errors classifies request failures so the background refetch
// executor can decide between retrying with backoff and failing fast.
package errors

import "fmt"

// Category determines how a failure is handled by retry logic.
type Category int

const (
	// Recoverable failures are retried with exponential backoff:
	// 5xx responses, timeouts, connection resets.
	Recoverable Category = iota

	// Irrecoverable failures are surfaced immediately without retry:
	// 400, 403, 404 and other definitive client errors.
	Irrecoverable
)

func (c Category) String() string {
	switch c {
	case Recoverable:
		return "recoverable"
	case Irrecoverable:
		return "irrecoverable"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ClassifiedError attaches a retry category to an underlying failure.
type ClassifiedError struct {
	Category   Category
	StatusCode int // 0 for non-HTTP failures
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable reports whether err carries the Irrecoverable category.
func IsIrrecoverable(err error) bool {
	ce, ok := err.(*ClassifiedError)
	return ok && ce.Category == Irrecoverable
}
