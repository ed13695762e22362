// Package auth implements the authenticated request pipeline: every
// outgoing request carries the session's bearer token, and an authorization
// failure triggers at most one transparent refresh-and-retry. A failed
// refresh degrades to a forced logout.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/session"
	"github.com/instiwise/client-go/internal/types"
)

// ErrNoRefreshToken signals that a refresh could not even be attempted.
var ErrNoRefreshToken = errors.New("no refresh token")

// expirySkew treats tokens expiring within this window as already expired,
// so a request does not race the server clock.
const expirySkew = 10 * time.Second

// Transport wraps a base http.RoundTripper with bearer attachment and
// 401-triggered refresh. It is installed as the http.Client transport, so
// every caller (cache fetches, mutations, background refetches) goes
// through it.
type Transport struct {
	base       http.RoundTripper
	sessions   *session.Store
	refreshURL string
	log        zerolog.Logger
	onLogout   func()
	now        func() time.Time

	// refreshMu makes the refresh single-flight: concurrent 401s perform
	// one refresh call between them.
	refreshMu sync.Mutex
}

// Config parameterizes New.
type Config struct {
	Base       http.RoundTripper // nil means http.DefaultTransport
	Sessions   *session.Store
	RefreshURL string // absolute URL of POST /auth/refresh
	Logger     zerolog.Logger
	OnLogout   func() // invoked after a forced logout; may be nil
	Now        func() time.Time
}

// New builds the pipeline transport.
func New(cfg Config) *Transport {
	if cfg.Base == nil {
		cfg.Base = http.DefaultTransport
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Transport{
		base:       cfg.Base,
		sessions:   cfg.Sessions,
		refreshURL: cfg.RefreshURL,
		log:        cfg.Logger.With().Str("component", "auth").Logger(),
		onLogout:   cfg.OnLogout,
		now:        cfg.Now,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	sess, ok := t.sessions.Current()
	if !ok {
		// Unauthenticated call (login, register, refresh itself).
		return t.base.RoundTrip(req)
	}

	token := sess.AccessToken
	// If the token's exp claim already passed, refresh before sending
	// instead of burning a round trip on a guaranteed 401.
	if tokenExpired(token, t.now()) {
		if fresh, err := t.refresh(req.Context(), token); err == nil {
			token = fresh
		}
	}

	resp, err := t.base.RoundTrip(t.withBearer(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// Authorization failure: one refresh attempt, then one retry.
	fresh, refreshErr := t.refresh(req.Context(), token)
	if refreshErr != nil {
		t.forceLogout(refreshErr)
		return resp, nil // propagate the original 401
	}

	if req.Body != nil && req.GetBody == nil {
		// Body already consumed and not replayable; the caller sees the 401.
		return resp, nil
	}
	drain(resp)

	retry := req
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry = req.Clone(req.Context())
		retry.Body = body
	}
	return t.base.RoundTrip(t.withBearer(retry, fresh))
}

// withBearer returns a clone of req carrying the Authorization header.
func (t *Transport) withBearer(req *http.Request, token string) *http.Request {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+token)
	return cloned
}

// refresh exchanges the refresh token for a new access token, persisting it
// in the session store. staleToken identifies the token that failed, so a
// concurrent caller that already refreshed is reused rather than repeated.
func (t *Transport) refresh(ctx context.Context, staleToken string) (string, error) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	if cur := t.sessions.AccessToken(); cur != "" && cur != staleToken {
		return cur, nil
	}
	refreshToken := t.sessions.RefreshToken()
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	payload, err := json.Marshal(types.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	// The refresh call goes to the base transport directly so it can never
	// recurse into the 401 handling above.
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh: status %d", resp.StatusCode)
	}
	var rr types.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", fmt.Errorf("refresh: decode: %w", err)
	}
	if rr.AccessToken == "" {
		return "", fmt.Errorf("refresh: empty access token")
	}
	if err := t.sessions.SetTokens(rr.AccessToken, rr.RefreshToken); err != nil {
		return "", err
	}
	tokenRefreshTotal.Inc()
	t.log.Debug().Msg("access token refreshed")
	return rr.AccessToken, nil
}

func (t *Transport) forceLogout(cause error) {
	t.log.Warn().Err(cause).Msg("refresh failed, forcing logout")
	if err := t.sessions.Clear(); err != nil {
		t.log.Error().Err(err).Msg("clearing session after failed refresh")
	}
	forcedLogoutTotal.Inc()
	if t.onLogout != nil {
		t.onLogout()
	}
}

// tokenExpired reports whether the JWT's exp claim lies in the past. Tokens
// that are not JWTs or carry no exp claim are assumed live; the 401 path
// covers them.
func tokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now.Add(expirySkew))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
