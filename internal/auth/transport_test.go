package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/instiwise/client-go/internal/session"
	"github.com/instiwise/client-go/internal/types"
)

func newSessions(t *testing.T, sess *types.Session) *session.Store {
	t.Helper()
	s, err := session.NewStore(filepath.Join(t.TempDir(), "auth.bin"), session.KeyFromPassphrase("k"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if sess != nil {
		if err := s.Set(*sess); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	return s
}

func httpClientWith(tr *Transport) *http.Client {
	return &http.Client{Transport: tr, Timeout: 5 * time.Second}
}

func TestTransport_AttachesBearer(t *testing.T) {
	t.Parallel()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sessions := newSessions(t, &types.Session{User: types.User{ID: "u1"}, AccessToken: "at-1", RefreshToken: "rt-1"})
	tr := New(Config{Sessions: sessions, RefreshURL: srv.URL + "/auth/refresh", Logger: zerolog.Nop()})

	resp, err := httpClientWith(tr).Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if gotAuth != "Bearer at-1" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
}

func TestTransport_NoSessionPassesThrough(t *testing.T) {
	t.Parallel()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	tr := New(Config{Sessions: newSessions(t, nil), RefreshURL: srv.URL + "/auth/refresh", Logger: zerolog.Nop()})
	resp, err := httpClientWith(tr).Get(srv.URL + "/news")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if gotAuth != "" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
}

func TestTransport_RefreshAndRetryOnce(t *testing.T) {
	t.Parallel()
	var refreshCalls, dataCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		var rr types.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&rr)
		if rr.RefreshToken != "rt-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(types.RefreshResponse{AccessToken: "at-2"})
	})
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		if r.Header.Get("Authorization") != "Bearer at-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !bytes.Contains(body, []byte("hello")) {
			t.Errorf("body not replayed on retry: %q", body)
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sessions := newSessions(t, &types.Session{User: types.User{ID: "u1"}, AccessToken: "at-1", RefreshToken: "rt-1"})
	tr := New(Config{Sessions: sessions, RefreshURL: srv.URL + "/auth/refresh", Logger: zerolog.Nop()})

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/projects", bytes.NewBufferString(`{"msg":"hello"}`))
	resp, err := httpClientWith(tr).Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("refresh calls = %d, want 1", n)
	}
	if n := atomic.LoadInt32(&dataCalls); n != 2 {
		t.Fatalf("data calls = %d, want 2", n)
	}
	if sessions.AccessToken() != "at-2" {
		t.Fatalf("session token not swapped: %s", sessions.AccessToken())
	}
}

// A request that fails authorization twice (invalid refresh token) performs
// exactly one refresh attempt and one logout, never a retry loop.
func TestTransport_InvalidRefreshTokenBounded(t *testing.T) {
	t.Parallel()
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var logouts int32
	sessions := newSessions(t, &types.Session{User: types.User{ID: "u1"}, AccessToken: "at-1", RefreshToken: "bad"})
	tr := New(Config{
		Sessions:   sessions,
		RefreshURL: srv.URL + "/auth/refresh",
		Logger:     zerolog.Nop(),
		OnLogout:   func() { atomic.AddInt32(&logouts, 1) },
	})

	resp, err := httpClientWith(tr).Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 propagated", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("refresh calls = %d, want 1", n)
	}
	if n := atomic.LoadInt32(&logouts); n != 1 {
		t.Fatalf("logouts = %d, want 1", n)
	}
	if _, ok := sessions.Current(); ok {
		t.Fatal("session should be cleared")
	}
}

func TestTransport_NoRefreshTokenLogsOut(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sessions := newSessions(t, &types.Session{User: types.User{ID: "u1"}, AccessToken: "at-1"})
	tr := New(Config{Sessions: sessions, RefreshURL: srv.URL + "/auth/refresh", Logger: zerolog.Nop()})

	resp, err := httpClientWith(tr).Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if _, ok := sessions.Current(); ok {
		t.Fatal("session should be cleared when no refresh token exists")
	}
}

func TestTransport_ProactiveRefreshOnExpiredJWT(t *testing.T) {
	t.Parallel()
	expired := signedToken(t, time.Now().Add(-time.Hour))

	var sawExpired int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.RefreshResponse{AccessToken: "at-2"})
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+expired {
			atomic.AddInt32(&sawExpired, 1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sessions := newSessions(t, &types.Session{User: types.User{ID: "u1"}, AccessToken: expired, RefreshToken: "rt-1"})
	tr := New(Config{Sessions: sessions, RefreshURL: srv.URL + "/auth/refresh", Logger: zerolog.Nop()})

	resp, err := httpClientWith(tr).Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if atomic.LoadInt32(&sawExpired) != 0 {
		t.Fatal("expired token was sent to the server")
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}
