package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/reminder"
	"github.com/instiwise/client-go/internal/session"
)

// Option configures a Client during construction in New.
//
// Options are applied before the auth pipeline transport is installed, so
// transport-related options (like debug logging) are placed underneath it.
// Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net bounding the total time spent on a single HTTP request.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// dumped to the log when enabled is true. Dumps include headers and bodies;
// do not enable outside development.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}

// WithLogger sets the structured logger shared by every component.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithNotifier installs the OS notification subsystem. Without a notifier
// the reminder scheduler is disabled entirely.
func WithNotifier(n reminder.Notifier) Option {
	return func(c *Client) error {
		if n == nil {
			return fmt.Errorf("notifier cannot be nil")
		}
		c.notifier = n
		return nil
	}
}

// WithReminderLead overrides how long before an event's start its reminder
// fires.
func WithReminderLead(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("reminder lead must be > 0")
		}
		c.reminderLead = d
		return nil
	}
}

// WithClock injects the time source used by token-expiry checks and the
// reminder scheduler. Tests pin it; production leaves the default.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.clock = now
		return nil
	}
}

// WithSessionPath sets where the encrypted session blob is persisted.
func WithSessionPath(path string) Option {
	return func(c *Client) error {
		if path == "" {
			return fmt.Errorf("session path cannot be empty")
		}
		c.sessionPath = path
		return nil
	}
}

// WithSessionKey sets the 32-byte key sealing the session blob at rest.
// Derive one from a device secret with session.KeyFromPassphrase.
func WithSessionKey(key []byte) Option {
	return func(c *Client) error {
		if len(key) != 32 {
			return fmt.Errorf("session key must be 32 bytes, got %d", len(key))
		}
		c.sessionKey = key
		return nil
	}
}

// WithSessionPassphrase derives the session key from a passphrase.
func WithSessionPassphrase(passphrase string) Option {
	return func(c *Client) error {
		if passphrase == "" {
			return fmt.Errorf("session passphrase cannot be empty")
		}
		c.sessionKey = session.KeyFromPassphrase(passphrase)
		return nil
	}
}
