package client

import (
	"errors"
	"testing"

	"github.com/instiwise/client-go/internal/refetch"
)

func TestMapQueueErr_TranslatesQueueFull(t *testing.T) {
	t.Parallel()

	err := mapQueueErr(&refetch.QueueFullError{Shard: 0, Length: 8, Capacity: 8})
	if !errors.Is(err, ErrBackPressure) {
		t.Fatalf("err = %v, want ErrBackPressure", err)
	}
	if !IsBackPressure(err) {
		t.Fatal("IsBackPressure = false for a translated queue-full error")
	}
}

func TestMapQueueErr_PassesOtherErrorsThrough(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("offline")
	if got := mapQueueErr(sentinel); got != sentinel {
		t.Fatalf("err = %v, want the original error untouched", got)
	}
	if mapQueueErr(nil) != nil {
		t.Fatal("nil must map to nil")
	}
}
