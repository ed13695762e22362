// Package session owns the authenticated session: an in-memory copy backed
// by a single encrypted file on disk. The durable file is the source of
// truth; the in-memory copy is refreshed from it at process start.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/instiwise/client-go/internal/types"
)

const nonceSize = 24

// ErrNoSession is returned by operations that need a session when none is set.
var ErrNoSession = errors.New("no active session")

// Store persists and caches the session. All methods are safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	current *types.Session

	path string
	key  [32]byte
	log  zerolog.Logger
}

// NewStore creates a store persisting to path, encrypting with key.
// The key must be exactly 32 bytes; derive one with KeyFromPassphrase.
func NewStore(path string, key []byte, log zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("session store path is required")
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session store key must be 32 bytes, got %d", len(key))
	}
	s := &Store{
		path: path,
		log:  log.With().Str("component", "session").Logger(),
	}
	copy(s.key[:], key)
	return s, nil
}

// KeyFromPassphrase derives a 32-byte encryption key from an arbitrary
// passphrase.
func KeyFromPassphrase(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// Restore loads the durable session into memory. A missing file is not an
// error; it means no one is logged in.
func (s *Store) Restore() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("session: read %s: %w", s.path, err)
	}
	plain, err := s.open(raw)
	if err != nil {
		// An undecryptable blob is as good as no session; drop it so the
		// next login can rewrite it.
		s.log.Warn().Err(err).Msg("stored session unreadable, discarding")
		_ = os.Remove(s.path)
		return nil
	}
	var sess types.Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		s.log.Warn().Err(err).Msg("stored session malformed, discarding")
		_ = os.Remove(s.path)
		return nil
	}
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.log.Debug().Str("user_id", sess.User.ID).Msg("session restored")
	return nil
}

// Current returns a copy of the session, if one is active.
func (s *Store) Current() (types.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return types.Session{}, false
	}
	return *s.current, true
}

// UserID returns the authenticated user's id, if a session is active.
func (s *Store) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", false
	}
	return s.current.User.ID, true
}

// AccessToken returns the current access token or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// RefreshToken returns the current refresh token or "".
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.RefreshToken
}

// Set replaces the session in memory and on disk.
func (s *Store) Set(sess types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sess
	return s.persistLocked()
}

// SetTokens swaps the token pair after a refresh, keeping the profile. An
// empty refreshToken leaves the stored one in place (the backend does not
// always rotate it).
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoSession
	}
	s.current.AccessToken = accessToken
	if refreshToken != "" {
		s.current.RefreshToken = refreshToken
	}
	return s.persistLocked()
}

// UpdateUser merges a fresh profile into the session, keeping tokens.
func (s *Store) UpdateUser(u types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoSession
	}
	s.current.User = u
	return s.persistLocked()
}

// Clear wipes the session from memory and disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove %s: %w", s.path, err)
	}
	s.log.Debug().Msg("session cleared")
	return nil
}

func (s *Store) persistLocked() error {
	plain, err := json.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	sealed, err := s.seal(plain)
	if err != nil {
		return err
	}
	// Write-then-rename so a crash never leaves a truncated blob.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("session: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("session: blob too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("session: decryption failed")
	}
	return plain, nil
}
