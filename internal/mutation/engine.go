// Package mutation implements the optimistic mutation engine: apply the
// expected effect to every cache view first, send the request, then commit
// (invalidate for reconciliation) or roll back (undo in reverse order).
package mutation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/cache"
)

// ErrMutationPending rejects a mutation on an entity whose previous
// mutation has not resolved. Nothing is queued; the caller may retry after
// the first mutation settles.
var ErrMutationPending = errors.New("mutation already pending for entity")

// Patch is one optimistic cache transformation. Apply must be
// copy-on-write: return a new value, never mutate the input.
type Patch struct {
	Key   cache.Key
	Apply func(data any) any
}

// Mutation describes one optimistic operation end to end.
type Mutation struct {
	Entity    string // entity family, e.g. "events"
	EntityID  string
	Operation string // metric/log label, e.g. "toggle-favorite"

	// Patches are applied in order before Call is issued; entries without
	// data are skipped (nothing to patch there).
	Patches []Patch

	// Call performs the network request.
	Call func(ctx context.Context) error

	// OnSuccess runs after Call succeeds and before invalidation,
	// typically to replace optimistic values with the authoritative server
	// response. May be nil.
	OnSuccess func()

	// InvalidateTags are invalidated after success so dependent queries
	// reconcile server-computed fields in the background.
	InvalidateTags []cache.Tag
}

// record tracks one in-flight mutation and its undo handles.
type record struct {
	id       string
	issuedAt time.Time
	undos    []cache.UndoHandle
}

// Engine serializes mutations per entity and owns the patch/rollback
// lifecycle.
type Engine struct {
	mu      sync.Mutex
	pending map[string]*record

	cache *cache.Store
	log   zerolog.Logger
}

// NewEngine builds an engine over the shared cache store.
func NewEngine(c *cache.Store, log zerolog.Logger) *Engine {
	return &Engine{
		pending: make(map[string]*record),
		cache:   c,
		log:     log.With().Str("component", "mutation").Logger(),
	}
}

// Pending reports whether the entity has a mutation in flight. The view
// layer uses it to disable the affected control.
func (e *Engine) Pending(entity, entityID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, busy := e.pending[entity+":"+entityID]
	return busy
}

// Run executes m: re-entrancy guard, optimistic patches, network call, then
// commit or rollback. The optimistic patches are visible before the network
// request is issued. When m declares patches but none land in a loaded
// view, Run returns nil without issuing the request.
func (e *Engine) Run(ctx context.Context, m Mutation) error {
	pendingKey := m.Entity + ":" + m.EntityID

	e.mu.Lock()
	if _, busy := e.pending[pendingKey]; busy {
		e.mu.Unlock()
		return ErrMutationPending
	}
	rec := &record{id: uuid.NewString(), issuedAt: time.Now()}
	e.pending[pendingKey] = rec
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.pending, pendingKey)
		e.mu.Unlock()
	}()

	for _, p := range m.Patches {
		if h, ok := e.cache.Patch(p.Key, p.Apply); ok {
			rec.undos = append(rec.undos, h)
		}
	}
	if len(m.Patches) > 0 && len(rec.undos) == 0 {
		// The entity is in no loaded view. There is nothing to update
		// optimistically and nothing for the server response to
		// reconcile against, so the request is not issued.
		e.log.Debug().
			Str("entity", pendingKey).
			Str("op", m.Operation).
			Msg("mutation target not cached, skipping")
		return nil
	}
	mutationsTotal.WithLabelValues(m.Entity, m.Operation).Inc()
	e.log.Debug().
		Str("mutation_id", rec.id).
		Str("entity", pendingKey).
		Str("op", m.Operation).
		Int("patched_views", len(rec.undos)).
		Msg("optimistic mutation dispatched")

	if err := m.Call(ctx); err != nil {
		for i := len(rec.undos) - 1; i >= 0; i-- {
			rec.undos[i].Undo()
		}
		mutationFailuresTotal.WithLabelValues(m.Entity, m.Operation).Inc()
		e.log.Debug().
			Str("mutation_id", rec.id).
			Str("entity", pendingKey).
			Err(err).
			Msg("mutation failed, patches rolled back")
		return err
	}

	if m.OnSuccess != nil {
		m.OnSuccess()
	}
	if len(m.InvalidateTags) > 0 {
		e.cache.Invalidate(m.InvalidateTags)
	}
	return nil
}
