package client

import (
	"context"

	"github.com/instiwise/client-go/internal/api"
	"github.com/instiwise/client-go/internal/cache"
	"github.com/instiwise/client-go/internal/types"
)

// Login exchanges credentials for a session, persists it, and returns the
// authenticated user.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	if err := types.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	sess, err := api.Login(ctx, c.http, c.baseURL, types.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Set(*sess); err != nil {
		return nil, err
	}
	// User-scoped cache state must not cross the session boundary: the
	// collections carry membership sets and the me-entry carries the
	// previous identity outright.
	c.resetUserCaches()
	return &sess.User, nil
}

// Register creates an account and persists the returned session. The
// account is incomplete until SetupUsername succeeds.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	if err := types.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	sess, err := api.Register(ctx, c.http, c.baseURL, types.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Set(*sess); err != nil {
		return nil, err
	}
	c.resetUserCaches()
	return &sess.User, nil
}

// SetupUsername completes registration by claiming a username. The backend
// returns a fresh session for the now-complete account.
func (c *Client) SetupUsername(ctx context.Context, username string) (*User, error) {
	if err := types.ValidateIDPresent(username, "username"); err != nil {
		return nil, err
	}
	if _, ok := c.sessions.UserID(); !ok {
		return nil, ErrNoSession
	}
	sess, err := api.SetupUsername(ctx, c.http, c.baseURL, types.SetupUsernameRequest{Username: username})
	if err != nil {
		return nil, err
	}
	if err := c.sessions.Set(*sess); err != nil {
		return nil, err
	}
	c.store.Evict(keyMe)
	return &sess.User, nil
}

// Logout revokes the refresh token server-side (best effort) and clears
// all local state. Always succeeds locally even when the backend call
// fails.
func (c *Client) Logout(ctx context.Context) error {
	if rt := c.sessions.RefreshToken(); rt != "" {
		if err := api.Logout(ctx, c.http, c.baseURL, rt); err != nil {
			c.log.Warn().Err(err).Msg("server-side logout")
		}
	}
	return c.clearLocalState(ctx)
}

// CurrentUser returns the profile stored in the persisted session, if any.
// It never performs network I/O; use Me for the server's copy.
func (c *Client) CurrentUser() (User, bool) {
	sess, ok := c.sessions.Current()
	if !ok {
		return User{}, false
	}
	return sess.User, true
}

// clearLocalState drops the session, cancels reminders and resets every
// user-scoped cache entry so the next read refetches as anonymous.
func (c *Client) clearLocalState(ctx context.Context) error {
	err := c.sessions.Clear()
	if c.reminders != nil {
		if clearErr := c.reminders.Clear(ctx); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("clearing reminders")
		}
	}
	c.resetUserCaches()
	return err
}

// resetUserCaches runs at every session boundary (login, register,
// logout, account deletion). The me-entry is evicted outright, never just
// marked stale: a Loaded-but-stale entry would still serve the previous
// identity to a Snapshot.
func (c *Client) resetUserCaches() {
	c.store.Evict(keyMe)
	c.store.Invalidate([]cache.Tag{
		tagList("events"),
		tagList("projects"),
		tagList("news"),
	})
}
