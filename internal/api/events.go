package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	interrors "github.com/instiwise/client-go/internal/errors"
	"github.com/instiwise/client-go/internal/types"
)

// ListEvents retrieves every calendar event.
func ListEvents(ctx context.Context, httpClient HTTPClient, baseURL string) ([]types.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/events", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("list events", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("list events", resp.StatusCode)
	}

	var env types.ListEnvelope[types.Event]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListUpcomingEvents retrieves the upcoming-events subset.
func ListUpcomingEvents(ctx context.Context, httpClient HTTPClient, baseURL string) ([]types.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/events/upcoming", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("list upcoming events", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("list upcoming events", resp.StatusCode)
	}

	var env types.ListEnvelope[types.Event]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ToggleFavorite flips the current user's favorite membership on an event.
func ToggleFavorite(ctx context.Context, httpClient HTTPClient, baseURL, eventID string) (*types.ToggleFavoriteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(eventID, "eventId"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/events/%s/favorite", baseURL, eventID)
	req, err := newJSONRequest(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("toggle favorite", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("toggle favorite", resp.StatusCode)
	}

	var tr types.ToggleFavoriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	return &tr, nil
}
