package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	interrors "github.com/instiwise/client-go/internal/errors"
	"github.com/instiwise/client-go/internal/types"
)

// ListNews retrieves the news feed.
func ListNews(ctx context.Context, httpClient HTTPClient, baseURL string) ([]types.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/news", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("list news", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("list news", resp.StatusCode)
	}

	var env types.ListEnvelope[types.NewsItem]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// newsInteraction issues one of the PUT /news/{id}/{verb} endpoints; the
// like, dislike and view operations differ only in the verb.
func newsInteraction(ctx context.Context, httpClient HTTPClient, baseURL, newsID, verb string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(newsID, "newsId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/news/%s/%s", baseURL, newsID, verb)
	req, err := newJSONRequest(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return interrors.FromNetwork(verb+" news", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusErr(verb+" news", resp.StatusCode)
	}
	return nil
}

// LikeNews flips the current user's like on a news item.
func LikeNews(ctx context.Context, httpClient HTTPClient, baseURL, newsID string) error {
	return newsInteraction(ctx, httpClient, baseURL, newsID, "like")
}

// DislikeNews flips the current user's dislike on a news item.
func DislikeNews(ctx context.Context, httpClient HTTPClient, baseURL, newsID string) error {
	return newsInteraction(ctx, httpClient, baseURL, newsID, "dislike")
}

// ViewNews records the current user's view of a news item.
func ViewNews(ctx context.Context, httpClient HTTPClient, baseURL, newsID string) error {
	return newsInteraction(ctx, httpClient, baseURL, newsID, "view")
}
