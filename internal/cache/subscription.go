package cache

// Subscription attaches a consumer to one cache entry. The view layer
// subscribes on screen entry and unsubscribes on exit; entries with a live
// subscription are refetched eagerly when invalidated.
type Subscription struct {
	// C coalesces change signals: at most one pending notification, reading
	// it and calling Snapshot yields the newest state.
	C chan struct{}

	store *Store
	key   Key
}

// Subscribe registers interest in q's entry, creating it (uninitialized) if
// needed. The caller usually follows with Fetch to fill it.
func (s *Store) Subscribe(q Query) *Subscription {
	sub := &Subscription{C: make(chan struct{}, 1), store: s, key: q.Key}
	s.mu.Lock()
	e := s.ensureLocked(q)
	e.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

// Snapshot returns the subscribed entry's current state.
func (sub *Subscription) Snapshot() (any, Status, error) {
	return sub.store.Snapshot(sub.key)
}

// Unsubscribe detaches the consumer. It never aborts an in-flight fetch;
// it only stops notifications and eager refetch for this subscriber.
func (sub *Subscription) Unsubscribe() {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	if e, ok := sub.store.entries[sub.key]; ok {
		delete(e.subs, sub)
	}
}
