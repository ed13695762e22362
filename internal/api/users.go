package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	interrors "github.com/instiwise/client-go/internal/errors"
	"github.com/instiwise/client-go/internal/types"
)

// UpdateUser applies a partial profile update and returns the authoritative
// server copy.
func UpdateUser(ctx context.Context, httpClient HTTPClient, baseURL, userID string, reqBody types.UpdateUserRequest) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/users/%s", baseURL, userID)
	req, err := newJSONRequest(ctx, http.MethodPut, url, reqBody)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("update user", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("update user", resp.StatusCode)
	}

	var env struct {
		Data types.User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteUser deletes the account.
func DeleteUser(ctx context.Context, httpClient HTTPClient, baseURL, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/users/%s", baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return interrors.FromNetwork("delete user", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusErr("delete user", resp.StatusCode)
	}
	return nil
}
