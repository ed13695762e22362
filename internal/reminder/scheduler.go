// Package reminder reconciles OS notification triggers with the favorited
// subset of the events cache. Every reconcile is a full pass: the desired
// trigger set is re-derived from the event list and applied, rather than
// diffed incrementally.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/types"
)

const (
	// DefaultLead is how long before an event's start its reminder fires.
	DefaultLead = 30 * time.Minute

	// DefaultSkewBuffer guards against registering a trigger so close to
	// now that clock skew makes it fire immediately.
	DefaultSkewBuffer = 30 * time.Second

	identifierPrefix = "event-reminder-"
)

// Notification is one OS-level scheduled trigger.
type Notification struct {
	Identifier string
	Title      string
	Body       string
	FireAt     time.Time
	EventID    string
}

// Notifier is the OS notification subsystem. Identifiers are deterministic
// per event, so Cancel followed by Schedule supersedes any prior trigger.
type Notifier interface {
	Schedule(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, identifier string) error
}

// Config carries Scheduler construction parameters.
type Config struct {
	Notifier Notifier

	// Lead defaults to DefaultLead when zero.
	Lead time.Duration

	// SkewBuffer defaults to DefaultSkewBuffer when zero.
	SkewBuffer time.Duration

	// Now defaults to time.Now. Tests inject a fixed clock.
	Now func() time.Time

	Logger zerolog.Logger
}

// Scheduler tracks which events currently hold a registered trigger and
// reconciles that set against the favorited events of one user.
type Scheduler struct {
	notifier Notifier
	lead     time.Duration
	skew     time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu        sync.Mutex
	scheduled map[string]time.Time // event id -> registered trigger time
}

// NewScheduler builds a Scheduler. cfg.Notifier must be non-nil.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Notifier == nil {
		panic("reminder: Config.Notifier is required")
	}
	if cfg.Lead <= 0 {
		cfg.Lead = DefaultLead
	}
	if cfg.SkewBuffer <= 0 {
		cfg.SkewBuffer = DefaultSkewBuffer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		notifier:  cfg.Notifier,
		lead:      cfg.Lead,
		skew:      cfg.SkewBuffer,
		now:       cfg.Now,
		log:       cfg.Logger.With().Str("component", "reminder").Logger(),
		scheduled: make(map[string]time.Time),
	}
}

// Identifier returns the deterministic notification id for an event.
func Identifier(eventID string) string { return identifierPrefix + eventID }

// Reconcile re-derives the desired trigger set from events favorited by
// userID and applies it: cancels triggers for events that are gone or
// unfavorited, then cancel-and-reschedules every remaining future trigger.
// Notifier failures are collected, not fatal; the pass always completes.
func (s *Scheduler) Reconcile(ctx context.Context, userID string, events []types.Event) error {
	if userID == "" {
		return nil
	}

	desired := make(map[string]Notification, len(events))
	cutoff := s.now().Add(s.skew)
	for _, e := range events {
		if !slices.Contains(e.Favorites, userID) {
			continue
		}
		start, err := e.StartTime()
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", e.ID).Msg("skipping event with unparseable start time")
			continue
		}
		trigger := start.Add(-s.lead)
		if !trigger.After(cutoff) {
			continue
		}
		desired[e.ID] = Notification{
			Identifier: Identifier(e.ID),
			Title:      e.Header,
			Body:       reminderBody(e, start),
			FireAt:     trigger,
			EventID:    e.ID,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id := range s.scheduled {
		if _, keep := desired[id]; keep {
			continue
		}
		if err := s.notifier.Cancel(ctx, Identifier(id)); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
		remindersCanceledTotal.Inc()
		delete(s.scheduled, id)
	}

	for id, n := range desired {
		// Cancel first so a trigger registered for an earlier event
		// time never outlives a reschedule.
		if err := s.notifier.Cancel(ctx, n.Identifier); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
		if err := s.notifier.Schedule(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", id, err))
			delete(s.scheduled, id)
			continue
		}
		remindersScheduledTotal.Inc()
		s.scheduled[id] = n.FireAt
	}

	return errors.Join(errs...)
}

// Clear cancels every registered trigger. Called on logout.
func (s *Scheduler) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id := range s.scheduled {
		if err := s.notifier.Cancel(ctx, Identifier(id)); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
		remindersCanceledTotal.Inc()
		delete(s.scheduled, id)
	}
	return errors.Join(errs...)
}

// Scheduled reports whether an event currently holds a registered trigger.
func (s *Scheduler) Scheduled(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.scheduled[eventID]
	return ok
}

func reminderBody(e types.Event, start time.Time) string {
	if e.Location != "" {
		return fmt.Sprintf("Starts at %s · %s", start.Format("3:04 PM"), e.Location)
	}
	return fmt.Sprintf("Starts at %s", start.Format("3:04 PM"))
}
