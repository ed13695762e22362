// Package client is the InstiWise data-sync SDK: an authenticated request
// pipeline with transparent token refresh, a tag-invalidated entity cache,
// an optimistic mutation engine with rollback, and a local reminder
// scheduler reconciled from the favorited-events subset of the cache.
package client

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/auth"
	"github.com/instiwise/client-go/internal/cache"
	"github.com/instiwise/client-go/internal/mutation"
	"github.com/instiwise/client-go/internal/refetch"
	"github.com/instiwise/client-go/internal/reminder"
	"github.com/instiwise/client-go/internal/session"
	"github.com/instiwise/client-go/internal/types"
)

// Client owns the session store, the entity cache, the mutation engine and
// the reminder scheduler, and exposes the query and mutation surface the UI
// layer consumes.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	sessions  *session.Store
	store     *cache.Store
	engine    *mutation.Engine
	exec      *refetch.Executor
	reminders *reminder.Scheduler

	// construction knobs, consumed by New
	notifier     reminder.Notifier
	clock        func() time.Time
	reminderLead time.Duration
	sessionPath  string
	sessionKey   []byte

	closedOnce uint32
}

// New constructs a Client for the given backend base URL. Additional knobs
// are provided via functional options. New panics on invalid configuration;
// it never performs network I/O.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
		clock:   time.Now,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	if c.sessions == nil {
		path := c.sessionPath
		if path == "" {
			path = defaultSessionPath()
		}
		key := c.sessionKey
		if key == nil {
			key = session.KeyFromPassphrase(defaultSessionPassphrase)
		}
		sessions, err := session.NewStore(path, key, c.log)
		if err != nil {
			panic(err)
		}
		c.sessions = sessions
	}
	if err := c.sessions.Restore(); err != nil {
		c.log.Warn().Err(err).Msg("restoring persisted session")
	}

	c.exec = refetch.NewExecutor(refetch.Config{}, c.log)
	c.store = cache.NewStore(c.exec, c.log)
	c.engine = mutation.NewEngine(c.store, c.log)

	if c.notifier != nil {
		c.reminders = reminder.NewScheduler(reminder.Config{
			Notifier: c.notifier,
			Lead:     c.reminderLead,
			Now:      c.clock,
			Logger:   c.log,
		})
		c.store.OnLoaded(c.reconcileReminders)
	}

	// The auth pipeline wraps whatever transport the options installed, so
	// debug logging sits underneath it and sees the final request.
	base := c.http.Transport
	c.http.Transport = auth.New(auth.Config{
		Base:       base,
		Sessions:   c.sessions,
		RefreshURL: c.baseURL + "/auth/refresh",
		Logger:     c.log,
		OnLogout:   c.handleForcedLogout,
		Now:        c.clock,
	})

	return c
}

// Close stops the background refetch executor. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.exec.Stop()
	return nil
}

// Settle blocks until every refetch previously scheduled for key's shard
// has executed, then returns. Useful in tests and for pull-to-refresh UIs
// that want the invalidation fan-out to finish before re-reading. Returns
// ErrBackPressure when the shard's queue is full.
func (c *Client) Settle(ctx context.Context, key cache.Key) error {
	return mapQueueErr(c.exec.Barrier(ctx, string(key)))
}

// reconcileReminders runs after every network fill of an events entry and
// re-derives the desired trigger set for the current user.
func (c *Client) reconcileReminders(key cache.Key, data any) {
	if key != keyEvents && key != keyUpcomingEvents {
		return
	}
	events, ok := data.([]types.Event)
	if !ok {
		return
	}
	uid, ok := c.sessions.UserID()
	if !ok {
		return
	}
	if err := c.reminders.Reconcile(context.Background(), uid, events); err != nil {
		c.log.Warn().Err(err).Msg("reminder reconciliation")
	}
}

// handleForcedLogout runs after the auth pipeline cleared the session
// because a token refresh failed.
func (c *Client) handleForcedLogout() {
	c.log.Info().Msg("session expired, local state cleared")
	if c.reminders != nil {
		if err := c.reminders.Clear(context.Background()); err != nil {
			c.log.Warn().Err(err).Msg("clearing reminders after forced logout")
		}
	}
	c.resetUserCaches()
}

const defaultSessionPassphrase = "instiwise-session-at-rest"

// defaultSessionPath places the session file under the user config
// directory, falling back to the system temp dir.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "instiwise", "session.bin")
}
