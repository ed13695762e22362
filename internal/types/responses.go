package types

import (
	"fmt"
	"net/http"
)

// ------------------------------
// Response Envelopes
// ------------------------------

// ListEnvelope is the backend's standard collection wrapper:
// {"data": [...]}. Endpoint functions unwrap it before returning.
type ListEnvelope[T any] struct {
	Data []T `json:"data"`
}

// AuthPayload is the inner payload of auth responses.
type AuthPayload struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AuthEnvelope wraps login/register/setup-username responses: {"data": {...}}.
type AuthEnvelope struct {
	Data AuthPayload `json:"data"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken,omitempty"`
}

// RefreshResponse is returned by POST /auth/refresh. RefreshToken is only
// present when the backend rotates it.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// StatusResponse is the generic {success, message} acknowledgement.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ToggleFavoriteResponse acknowledges PATCH /events/{id}/favorite.
type ToggleFavoriteResponse struct {
	IsFavorited   bool `json:"isFavorited"`
	FavoriteCount int  `json:"favoriteCount"`
}

// ------------------------------
// Shared Interfaces
// ------------------------------

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when an entity does not exist on the server or in
// any cache entry.
var ErrNotFound = fmt.Errorf("not found")
