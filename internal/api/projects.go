package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	interrors "github.com/instiwise/client-go/internal/errors"
	"github.com/instiwise/client-go/internal/types"
)

// ListProjects retrieves every project.
func ListProjects(ctx context.Context, httpClient HTTPClient, baseURL string) ([]types.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/projects", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("list projects", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("list projects", resp.StatusCode)
	}

	var env types.ListEnvelope[types.Project]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// ListMyProjects retrieves the current user's projects.
func ListMyProjects(ctx context.Context, httpClient HTTPClient, baseURL string) ([]types.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/projects/my/projects", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("list my projects", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("list my projects", resp.StatusCode)
	}

	var env types.ListEnvelope[types.Project]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateProject creates a new project and returns the server copy.
func CreateProject(ctx context.Context, httpClient HTTPClient, baseURL string, reqBody types.CreateProjectRequest) (*types.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateTitle(reqBody.Title, "title"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/projects", baseURL)
	req, err := newJSONRequest(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("create project", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, statusErr("create project", resp.StatusCode)
	}

	var p types.Project
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject applies a partial update and returns the authoritative
// server copy.
func UpdateProject(ctx context.Context, httpClient HTTPClient, baseURL, projectID string, reqBody types.UpdateProjectRequest) (*types.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(projectID, "projectId"); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/projects/%s", baseURL, projectID)
	req, err := newJSONRequest(ctx, http.MethodPut, url, reqBody)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, interrors.FromNetwork("update project", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("update project", resp.StatusCode)
	}

	var p types.Project
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project.
func DeleteProject(ctx context.Context, httpClient HTTPClient, baseURL, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(projectID, "projectId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/projects/%s", baseURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return interrors.FromNetwork("delete project", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusErr("delete project", resp.StatusCode)
	}
	return nil
}

// LikeProject flips the current user's like membership on a project.
func LikeProject(ctx context.Context, httpClient HTTPClient, baseURL, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(projectID, "projectId"); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/projects/%s/like", baseURL, projectID)
	req, err := newJSONRequest(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return interrors.FromNetwork("like project", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusErr("like project", resp.StatusCode)
	}
	return nil
}
