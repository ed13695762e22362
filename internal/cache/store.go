// Package cache implements the normalized query cache: one entry per query
// key, a tag index for bulk invalidation, deduplicated fetches, and
// undoable in-place patches for optimistic mutations.
package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/refetch"
)

// Key identifies one distinct query invocation, e.g. "events/list".
type Key string

// Tag labels cache entries for bulk invalidation, e.g. "events:42" or
// "events:LIST".
type Tag string

// Status is a cache entry's lifecycle state.
type Status int

const (
	Uninitialized Status = iota
	Loading
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// Query declares how a cache entry is filled: the fetch function hits the
// network (through the authenticated pipeline) and Tags derives the entry's
// invalidation labels from the fetched data.
type Query struct {
	Key   Key
	Fetch func(ctx context.Context) (any, error)
	Tags  func(data any) []Tag
}

type entry struct {
	query   Query
	status  Status
	data    any
	err     error
	stale   bool
	version uint64
	tags    []Tag
	subs    map[*Subscription]struct{}
}

type inflight struct {
	done chan struct{}
	data any
	err  error
}

// Store is the shared cache. All mutation goes through Fetch, Patch and
// Invalidate; entries are never handed out by reference, which is what
// keeps the undo-handle bookkeeping sound.
type Store struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	tagIndex map[Tag]map[Key]struct{}
	inflight map[Key]*inflight

	exec     *refetch.Executor
	log      zerolog.Logger
	onLoaded []func(Key, any)
}

// NewStore builds a cache backed by exec for background refetches.
func NewStore(exec *refetch.Executor, log zerolog.Logger) *Store {
	return &Store{
		entries:  make(map[Key]*entry),
		tagIndex: make(map[Tag]map[Key]struct{}),
		inflight: make(map[Key]*inflight),
		exec:     exec,
		log:      log.With().Str("component", "cache").Logger(),
	}
}

// OnLoaded registers a hook fired after every successful network fill of an
// entry. Hooks run outside the store lock. Register before first use; the
// hook list is not guarded against concurrent registration.
func (s *Store) OnLoaded(fn func(Key, any)) {
	s.onLoaded = append(s.onLoaded, fn)
}

// Fetch returns the cached data for q, hitting the network when the entry
// is missing or stale. Concurrent fetches for the same key share a single
// network call.
func (s *Store) Fetch(ctx context.Context, q Query) (any, error) {
	s.mu.Lock()
	e := s.ensureLocked(q)

	if e.status == Loaded && !e.stale {
		s.mu.Unlock()
		hitTotal.WithLabelValues(string(q.Key)).Inc()
		return e.data, nil
	}
	missTotal.WithLabelValues(string(q.Key)).Inc()

	if fl, ok := s.inflight[q.Key]; ok {
		s.mu.Unlock()
		select {
		case <-fl.done:
			return fl.data, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fl := &inflight{done: make(chan struct{})}
	s.inflight[q.Key] = fl
	if e.status == Uninitialized || e.status == Errored {
		e.status = Loading
	}
	s.mu.Unlock()

	data, err := q.Fetch(ctx)

	s.mu.Lock()
	delete(s.inflight, q.Key)
	if err != nil {
		if e.status != Loaded {
			e.status = Errored
		}
		e.err = err
		fl.data, fl.err = nil, err
		close(fl.done)
		s.mu.Unlock()
		return nil, err
	}
	s.storeLocked(e, q, data)
	fl.data = data
	close(fl.done)
	hooks := s.onLoaded
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(q.Key, data)
	}
	return data, nil
}

// Invalidate marks every entry carrying any of the tags stale. Entries with
// live subscriptions are refetched in the background; the rest refetch
// lazily on their next Fetch.
func (s *Store) Invalidate(tags []Tag) {
	s.mu.Lock()
	seen := make(map[Key]struct{})
	var refresh []Query
	for _, tag := range tags {
		for key := range s.tagIndex[tag] {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			e := s.entries[key]
			if e == nil {
				continue
			}
			e.stale = true
			if len(e.subs) > 0 {
				refresh = append(refresh, e.query)
			}
		}
	}
	s.mu.Unlock()

	invalidationsTotal.Add(float64(len(seen)))
	for _, q := range refresh {
		s.scheduleRefetch(q)
	}
}

func (s *Store) scheduleRefetch(q Query) {
	job := refetch.JobFunc(func(ctx context.Context) error {
		s.mu.Lock()
		e := s.entries[q.Key]
		if e == nil || !e.stale {
			s.mu.Unlock()
			return nil // someone already refreshed it
		}
		s.mu.Unlock()
		_, err := s.Refresh(ctx, q)
		return err
	})
	if err := s.exec.Submit(context.Background(), string(q.Key), job); err != nil {
		s.log.Warn().Err(err).Str("key", string(q.Key)).Msg("background refetch not scheduled")
	}
}

// Evict drops the entry's data, error state and tag membership entirely,
// returning it to Uninitialized. Subscribers stay attached and are
// notified; their next Fetch refills from the network. The version bump
// turns any outstanding undo handle for the entry into a no-op.
func (s *Store) Evict(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return
	}
	for _, tag := range e.tags {
		delete(s.tagIndex[tag], key)
	}
	e.data = nil
	e.status = Uninitialized
	e.err = nil
	e.stale = false
	e.tags = nil
	e.version++
	s.notifyLocked(e)
}

// Refresh forces a network fill of q regardless of the entry's staleness,
// sharing the in-flight slot with concurrent fetches.
func (s *Store) Refresh(ctx context.Context, q Query) (any, error) {
	s.mu.Lock()
	e := s.ensureLocked(q)
	e.stale = true
	if fl, ok := s.inflight[q.Key]; ok {
		s.mu.Unlock()
		select {
		case <-fl.done:
			return fl.data, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Unlock()
	return s.Fetch(ctx, q)
}

// Snapshot returns the entry's current data and status without fetching.
func (s *Store) Snapshot(key Key) (any, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, Uninitialized, nil
	}
	return e.data, e.status, e.err
}

// ensureLocked returns the entry for q, creating it if needed. The query
// definition is refreshed so a later background refetch uses the newest
// fetch closure.
func (s *Store) ensureLocked(q Query) *entry {
	e, ok := s.entries[q.Key]
	if !ok {
		e = &entry{status: Uninitialized, subs: make(map[*Subscription]struct{})}
		s.entries[q.Key] = e
	}
	e.query = q
	return e
}

// storeLocked installs freshly fetched data and rebuilds the entry's tag
// membership.
func (s *Store) storeLocked(e *entry, q Query, data any) {
	for _, tag := range e.tags {
		delete(s.tagIndex[tag], q.Key)
	}
	e.data = data
	e.status = Loaded
	e.err = nil
	e.stale = false
	e.version++
	e.tags = nil
	if q.Tags != nil {
		e.tags = q.Tags(data)
	}
	for _, tag := range e.tags {
		keys, ok := s.tagIndex[tag]
		if !ok {
			keys = make(map[Key]struct{})
			s.tagIndex[tag] = keys
		}
		keys[q.Key] = struct{}{}
	}
	s.notifyLocked(e)
}

func (s *Store) notifyLocked(e *entry) {
	for sub := range e.subs {
		select {
		case sub.C <- struct{}{}:
		default: // coalesce; subscriber already has a pending signal
		}
	}
}
