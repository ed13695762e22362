package client

import (
	"errors"
	"fmt"

	"github.com/instiwise/client-go/internal/mutation"
	"github.com/instiwise/client-go/internal/refetch"
	"github.com/instiwise/client-go/internal/session"
	"github.com/instiwise/client-go/internal/types"
)

// ErrBackPressure is returned when the background refetch queue is full.
var ErrBackPressure = errors.New("back-pressure (refetch queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool {
	return errors.Is(err, ErrBackPressure) || errors.Is(err, refetch.ErrQueueFull)
}

// mapQueueErr translates the internal queue-full sentinel into the public
// ErrBackPressure at the API boundary, keeping the shard detail in the
// message.
func mapQueueErr(err error) error {
	if errors.Is(err, refetch.ErrQueueFull) {
		return fmt.Errorf("%w: %v", ErrBackPressure, err)
	}
	return err
}

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	// ErrNotFound marks an entity absent from the server and every cache.
	ErrNotFound = types.ErrNotFound

	// ErrNoSession marks an operation that requires an authenticated user.
	ErrNoSession = session.ErrNoSession

	// ErrMutationPending marks a mutation rejected because another one is
	// still in flight for the same entity.
	ErrMutationPending = mutation.ErrMutationPending
)
