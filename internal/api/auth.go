package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	interrors "github.com/instiwise/client-go/internal/errors"
	"github.com/instiwise/client-go/internal/types"
)

// Login exchanges credentials for a session.
func Login(ctx context.Context, httpClient HTTPClient, baseURL string, reqBody types.LoginRequest) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateCredentials(reqBody.Email, reqBody.Password); err != nil {
		return nil, err
	}
	return authExchange(ctx, httpClient, baseURL+"/auth/login", reqBody, "login")
}

// Register creates an account and returns the initial session.
func Register(ctx context.Context, httpClient HTTPClient, baseURL string, reqBody types.RegisterRequest) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateCredentials(reqBody.Email, reqBody.Password); err != nil {
		return nil, err
	}
	return authExchange(ctx, httpClient, baseURL+"/auth/register", reqBody, "register")
}

// SetupUsername completes account setup; the backend returns a session with
// the updated profile.
func SetupUsername(ctx context.Context, httpClient HTTPClient, baseURL string, reqBody types.SetupUsernameRequest) (*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(reqBody.Username, "username"); err != nil {
		return nil, err
	}
	return authExchange(ctx, httpClient, baseURL+"/auth/setup-username", reqBody, "setup username")
}

func authExchange(ctx context.Context, httpClient HTTPClient, url string, payload any, operation string) (*types.Session, error) {
	req, err := newJSONRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusErr(operation, resp.StatusCode)
	}

	var env types.AuthEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	if env.Data.AccessToken == "" {
		return nil, fmt.Errorf("%s: response missing access token", operation)
	}
	return &types.Session{
		User:         env.Data.User,
		AccessToken:  env.Data.AccessToken,
		RefreshToken: env.Data.RefreshToken,
	}, nil
}

// Me retrieves the authenticated user's profile.
func Me(ctx context.Context, httpClient HTTPClient, baseURL string) (*types.MeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/auth/me", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("get me", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("get me", resp.StatusCode)
	}

	var me types.MeResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Logout revokes the refresh token server-side. The caller clears local
// state regardless of the outcome.
func Logout(ctx context.Context, httpClient HTTPClient, baseURL, refreshToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/auth/logout", baseURL)
	req, err := newJSONRequest(ctx, http.MethodPost, url, types.LogoutRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return interrors.FromNetwork("logout", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusErr("logout", resp.StatusCode)
	}
	return nil
}
