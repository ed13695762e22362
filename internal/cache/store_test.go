package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/refetch"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	exec := refetch.NewExecutor(refetch.Config{Shards: 2, BaseBackoff: time.Millisecond}, zerolog.Nop())
	t.Cleanup(exec.Stop)
	return NewStore(exec, zerolog.Nop())
}

func listQuery(key Key, calls *int32, data []string) Query {
	return Query{
		Key: key,
		Fetch: func(ctx context.Context) (any, error) {
			atomic.AddInt32(calls, 1)
			return data, nil
		},
		Tags: func(any) []Tag { return []Tag{Tag(key + ":LIST")} },
	}
}

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var calls int32
	q := listQuery("events/list", &calls, []string{"e1"})

	for i := 0; i < 3; i++ {
		got, err := s.Fetch(context.Background(), q)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if got.([]string)[0] != "e1" {
			t.Fatalf("bad data: %v", got)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("network calls = %d, want 1", n)
	}

	s.Invalidate([]Tag{"events/list:LIST"})
	if _, err := s.Fetch(context.Background(), q); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("network calls after invalidate = %d, want 2", n)
	}
}

func TestFetch_DeduplicatesInflight(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var calls int32
	release := make(chan struct{})
	q := Query{
		Key: "news/list",
		Fetch: func(ctx context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return []string{"n1"}, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Fetch(context.Background(), q); err != nil {
				t.Errorf("fetch: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("network calls = %d, want 1 for 5 subscribers", n)
	}
}

func TestFetch_ErrorSurfacedAndRetryable(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var calls int32
	fail := int32(1)
	q := Query{
		Key: "projects/list",
		Fetch: func(ctx context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			if atomic.LoadInt32(&fail) == 1 {
				return nil, errors.New("offline")
			}
			return []string{"p1"}, nil
		},
	}

	if _, err := s.Fetch(context.Background(), q); err == nil {
		t.Fatal("expected fetch error")
	}
	if _, st, err := s.Snapshot("projects/list"); st != Errored || err == nil {
		t.Fatalf("status = %v err = %v, want errored state", st, err)
	}

	// The failed state is retryable, not terminal.
	atomic.StoreInt32(&fail, 0)
	got, err := s.Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got.([]string)[0] != "p1" {
		t.Fatalf("bad data: %v", got)
	}
	if _, st, _ := s.Snapshot("projects/list"); st != Loaded {
		t.Fatalf("status = %v, want loaded", st)
	}
}

func TestInvalidate_RefetchesSubscribedEntries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var calls int32
	q := listQuery("events/list", &calls, []string{"e1"})
	sub := s.Subscribe(q)
	defer sub.Unsubscribe()

	if _, err := s.Fetch(context.Background(), q); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	<-sub.C // initial load signal

	s.Invalidate([]Tag{"events/list:LIST"})

	select {
	case <-sub.C:
	case <-time.After(2 * time.Second):
		t.Fatal("subscribed entry was not refetched after invalidation")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("network calls = %d, want 2", n)
	}
}

func TestInvalidate_UnknownTagIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	s.Invalidate([]Tag{"ghosts:LIST"})
}

func TestEvict_DropsEntryAndRefetches(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var calls int32
	q := listQuery("auth/me", &calls, []string{"u1"})
	if _, err := s.Fetch(context.Background(), q); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	s.Evict("auth/me")

	data, st, _ := s.Snapshot("auth/me")
	if st != Uninitialized || data != nil {
		t.Fatalf("after evict: status = %v data = %v, want uninitialized and nil", st, data)
	}
	if _, err := s.Fetch(context.Background(), q); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("network calls = %d, want 2", n)
	}
}

func TestEvict_NeutralizesUndoHandles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var calls int32
	q := listQuery("k", &calls, []string{"old"})
	_, _ = s.Fetch(context.Background(), q)

	h, ok := s.Patch("k", func(any) any { return []string{"optimistic"} })
	if !ok {
		t.Fatal("patch refused")
	}
	s.Evict("k")
	h.Undo()

	data, st, _ := s.Snapshot("k")
	if st != Uninitialized || data != nil {
		t.Fatalf("undo resurrected evicted entry: status = %v data = %v", st, data)
	}
}

func TestEvict_UnknownKeyIsNoop(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	s.Evict("nothing/here")
}

func TestPatch_UndoRestoresPreImage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var calls int32
	q := listQuery("events/list", &calls, []string{"a", "b"})
	if _, err := s.Fetch(context.Background(), q); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	h, ok := s.Patch("events/list", func(data any) any {
		return append(append([]string{}, data.([]string)...), "c")
	})
	if !ok {
		t.Fatal("patch refused")
	}
	data, _, _ := s.Snapshot("events/list")
	if len(data.([]string)) != 3 {
		t.Fatalf("patch not applied: %v", data)
	}

	h.Undo()
	data, _, _ = s.Snapshot("events/list")
	if got := data.([]string); len(got) != 2 || got[0] != "a" {
		t.Fatalf("undo did not restore pre-image: %v", got)
	}
}

func TestPatch_StackedUndosReverseOrder(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var calls int32
	q := listQuery("k", &calls, []string{"base"})
	_, _ = s.Fetch(context.Background(), q)

	h1, _ := s.Patch("k", func(any) any { return []string{"one"} })
	h2, _ := s.Patch("k", func(any) any { return []string{"two"} })

	h2.Undo()
	data, _, _ := s.Snapshot("k")
	if data.([]string)[0] != "one" {
		t.Fatalf("after undo2: %v", data)
	}
	h1.Undo()
	data, _, _ = s.Snapshot("k")
	if data.([]string)[0] != "base" {
		t.Fatalf("after undo1: %v", data)
	}
}

func TestPatch_UndoSkippedAfterFreshFetch(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var calls int32
	q := listQuery("k", &calls, []string{"server"})
	_, _ = s.Fetch(context.Background(), q)

	h, _ := s.Patch("k", func(any) any { return []string{"optimistic"} })

	// Server truth lands between the patch and the rollback.
	if _, err := s.Refresh(context.Background(), q); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	h.Undo()

	data, _, _ := s.Snapshot("k")
	if data.([]string)[0] != "server" {
		t.Fatalf("undo clobbered fresh server data: %v", data)
	}
}

func TestPatch_RefusedWithoutData(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if _, ok := s.Patch("nothing/here", func(d any) any { return d }); ok {
		t.Fatal("patch must refuse entries without data")
	}
}

func TestOnLoaded_HookFires(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var mu sync.Mutex
	var seen []Key
	s.OnLoaded(func(k Key, _ any) {
		mu.Lock()
		seen = append(seen, k)
		mu.Unlock()
	})

	var calls int32
	_, _ = s.Fetch(context.Background(), listQuery("events/list", &calls, []string{"e1"}))
	_, _ = s.Fetch(context.Background(), listQuery("events/list", &calls, []string{"e1"})) // cache hit, no hook

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "events/list" {
		t.Fatalf("hook calls = %v, want one for the network fill", seen)
	}
}
