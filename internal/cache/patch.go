package cache

// UndoHandle reverts exactly one optimistic patch. The mutation engine
// collects one handle per patched entry and invokes them in reverse order
// when the server rejects the mutation.
type UndoHandle struct {
	store  *Store
	key    Key
	prev   any
	before uint64
	after  uint64
}

// Patch applies fn to the entry's data and returns an undo handle.
//
// fn must treat its input as immutable and return a fresh value
// (copy-on-write); the handle keeps the pre-image, and sharing would let a
// later rollback leak the mutated state. Returns ok=false when the entry
// holds no data to patch.
func (s *Store) Patch(key Key, fn func(data any) any) (UndoHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[key]
	if !exists || e.status != Loaded || e.data == nil {
		return UndoHandle{}, false
	}
	h := UndoHandle{store: s, key: key, prev: e.data, before: e.version}
	e.data = fn(e.data)
	e.version++
	h.after = e.version
	s.notifyLocked(e)
	patchesTotal.WithLabelValues(string(key)).Inc()
	return h, true
}

// Undo restores the entry to its pre-patch snapshot. The restore only
// applies while the entry is unchanged since the patch: if a fetch has
// since replaced the data, server truth supersedes the rollback and Undo
// is a no-op. Stacked patches on one entry undo cleanly in reverse order
// because each restore rewinds the version to the point before its patch.
func (h UndoHandle) Undo() {
	if h.store == nil {
		return
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	e, ok := h.store.entries[h.key]
	if !ok || e.version != h.after {
		return
	}
	e.data = h.prev
	e.version = h.before
	h.store.notifyLocked(e)
	rollbacksTotal.WithLabelValues(string(h.key)).Inc()
}
