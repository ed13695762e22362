package client

import (
	"context"

	"github.com/instiwise/client-go/internal/api"
	"github.com/instiwise/client-go/internal/cache"
	"github.com/instiwise/client-go/internal/mutation"
	"github.com/instiwise/client-go/internal/types"
)

// ToggleFavorite flips the current user's membership in the event's
// favorites set. The direction is computed once, from the cached lists, so
// both event views receive the same patch. Without a session, or when the
// event is in no cached view, this is a silent no-op. The optimistic patch
// is visible before the network call resolves and rolled back if it fails.
func (c *Client) ToggleFavorite(ctx context.Context, eventID string) error {
	if err := types.ValidateIDPresent(eventID, "eventID"); err != nil {
		return err
	}
	uid, ok := c.sessions.UserID()
	if !ok {
		return nil
	}
	e, found := c.eventByID(eventID)
	if !found {
		return nil
	}

	favorite := !mutation.HasMember(e.Favorites, uid)
	transform := func(e types.Event) types.Event {
		e.Favorites = mutation.SetMember(e.Favorites, uid, favorite)
		return e
	}

	return c.engine.Run(ctx, mutation.Mutation{
		Entity:    "events",
		EntityID:  eventID,
		Operation: "toggle-favorite",
		Patches: []mutation.Patch{
			mutation.ListItemPatch(keyEvents, eventID, func(e types.Event) string { return e.ID }, transform),
			mutation.ListItemPatch(keyUpcomingEvents, eventID, func(e types.Event) string { return e.ID }, transform),
		},
		Call: func(ctx context.Context) error {
			_, err := api.ToggleFavorite(ctx, c.http, c.baseURL, eventID)
			return err
		},
		InvalidateTags: []cache.Tag{tagEntity("events", eventID)},
	})
}

// MutationPending reports whether a mutation is still in flight for the
// entity, e.g. MutationPending("events", id). The view layer uses it to
// disable the affected control until the mutation resolves.
func (c *Client) MutationPending(entity, entityID string) bool {
	return c.engine.Pending(entity, entityID)
}

// LikeProject flips the current user's membership in the project's likes
// set across both project views.
func (c *Client) LikeProject(ctx context.Context, projectID string) error {
	if err := types.ValidateIDPresent(projectID, "projectID"); err != nil {
		return err
	}
	uid, ok := c.sessions.UserID()
	if !ok {
		return nil
	}

	p, found := c.projectByID(projectID)
	if !found {
		return nil
	}

	like := !mutation.HasMember(p.Likes, uid)
	transform := func(p types.Project) types.Project {
		p.Likes = mutation.SetMember(p.Likes, uid, like)
		return p
	}
	idOf := func(p types.Project) string { return p.ID }

	return c.engine.Run(ctx, mutation.Mutation{
		Entity:    "projects",
		EntityID:  projectID,
		Operation: "like",
		Patches: []mutation.Patch{
			mutation.ListItemPatch(keyProjects, projectID, idOf, transform),
			mutation.ListItemPatch(keyMyProjects, projectID, idOf, transform),
		},
		Call: func(ctx context.Context) error {
			return api.LikeProject(ctx, c.http, c.baseURL, projectID)
		},
		InvalidateTags: []cache.Tag{tagEntity("projects", projectID)},
	})
}

// LikeNews toggles the user's like on a news item. Likes and dislikes are
// mutually exclusive: liking removes any standing dislike.
func (c *Client) LikeNews(ctx context.Context, newsID string) error {
	return c.newsReaction(ctx, newsID, "like")
}

// DislikeNews toggles the user's dislike on a news item, removing any
// standing like.
func (c *Client) DislikeNews(ctx context.Context, newsID string) error {
	return c.newsReaction(ctx, newsID, "dislike")
}

func (c *Client) newsReaction(ctx context.Context, newsID, reaction string) error {
	if err := types.ValidateIDPresent(newsID, "newsID"); err != nil {
		return err
	}
	uid, ok := c.sessions.UserID()
	if !ok {
		return nil
	}

	n, found := c.newsItemByID(newsID)
	if !found {
		return nil
	}
	current := n.Likes
	if reaction == "dislike" {
		current = n.Dislikes
	}
	add := !mutation.HasMember(current, uid)
	transform := func(n types.NewsItem) types.NewsItem {
		if reaction == "like" {
			n.Likes = mutation.SetMember(n.Likes, uid, add)
			n.Dislikes = mutation.RemoveMember(n.Dislikes, uid)
		} else {
			n.Dislikes = mutation.SetMember(n.Dislikes, uid, add)
			n.Likes = mutation.RemoveMember(n.Likes, uid)
		}
		return n
	}

	call := api.LikeNews
	if reaction == "dislike" {
		call = api.DislikeNews
	}
	return c.engine.Run(ctx, mutation.Mutation{
		Entity:    "news",
		EntityID:  newsID,
		Operation: reaction,
		Patches: []mutation.Patch{
			mutation.ListItemPatch(keyNews, newsID, func(n types.NewsItem) string { return n.ID }, transform),
		},
		Call: func(ctx context.Context) error {
			return call(ctx, c.http, c.baseURL, newsID)
		},
		InvalidateTags: []cache.Tag{tagEntity("news", newsID)},
	})
}

// ViewNews records that the user opened a news item. Membership in the
// views set makes repeat calls server-side no-ops; the local patch is
// idempotent for the same reason.
func (c *Client) ViewNews(ctx context.Context, newsID string) error {
	if err := types.ValidateIDPresent(newsID, "newsID"); err != nil {
		return err
	}
	uid, ok := c.sessions.UserID()
	if !ok {
		return nil
	}
	n, found := c.newsItemByID(newsID)
	if !found || mutation.HasMember(n.Views, uid) {
		return nil
	}

	return c.engine.Run(ctx, mutation.Mutation{
		Entity:    "news",
		EntityID:  newsID,
		Operation: "view",
		Patches: []mutation.Patch{
			mutation.ListItemPatch(keyNews, newsID, func(n types.NewsItem) string { return n.ID }, func(n types.NewsItem) types.NewsItem {
				n.Views = mutation.AddMember(n.Views, uid)
				return n
			}),
		},
		Call: func(ctx context.Context) error {
			return api.ViewNews(ctx, c.http, c.baseURL, newsID)
		},
	})
}

// CreateProject creates a project and invalidates the project collections
// so they refetch. Creation is not optimistic: the server assigns the id.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if err := types.ValidateTitle(req.Title, "title"); err != nil {
		return nil, err
	}
	if _, ok := c.sessions.UserID(); !ok {
		return nil, ErrNoSession
	}
	p, err := api.CreateProject(ctx, c.http, c.baseURL, req)
	if err != nil {
		return nil, err
	}
	c.store.Invalidate([]cache.Tag{tagList("projects")})
	return p, nil
}

// UpdateProject applies a partial update optimistically, then replaces the
// optimistic merge with the server's authoritative copy on success.
func (c *Client) UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) error {
	if err := types.ValidateIDPresent(projectID, "projectID"); err != nil {
		return err
	}
	if _, ok := c.sessions.UserID(); !ok {
		return nil
	}

	merge := func(p types.Project) types.Project {
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		return p
	}
	idOf := func(p types.Project) string { return p.ID }

	var updated *types.Project
	replaceWithServerCopy := func() {
		if updated == nil {
			return
		}
		swap := func(types.Project) types.Project { return *updated }
		for _, key := range []cache.Key{keyProjects, keyMyProjects} {
			_, _ = c.store.Patch(key, mutation.ListItemPatch(key, projectID, idOf, swap).Apply)
		}
	}

	return c.engine.Run(ctx, mutation.Mutation{
		Entity:    "projects",
		EntityID:  projectID,
		Operation: "update",
		Patches: []mutation.Patch{
			mutation.ListItemPatch(keyProjects, projectID, idOf, merge),
			mutation.ListItemPatch(keyMyProjects, projectID, idOf, merge),
		},
		Call: func(ctx context.Context) error {
			p, err := api.UpdateProject(ctx, c.http, c.baseURL, projectID, req)
			if err != nil {
				return err
			}
			updated = p
			return nil
		},
		OnSuccess:      replaceWithServerCopy,
		InvalidateTags: []cache.Tag{tagEntity("projects", projectID)},
	})
}

// DeleteProject removes the project optimistically from both views; on
// failure the rollback restores it at its original position.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if err := types.ValidateIDPresent(projectID, "projectID"); err != nil {
		return err
	}
	if _, ok := c.sessions.UserID(); !ok {
		return nil
	}
	idOf := func(p types.Project) string { return p.ID }

	return c.engine.Run(ctx, mutation.Mutation{
		Entity:    "projects",
		EntityID:  projectID,
		Operation: "delete",
		Patches: []mutation.Patch{
			mutation.RemoveItemPatch[types.Project](keyProjects, projectID, idOf),
			mutation.RemoveItemPatch[types.Project](keyMyProjects, projectID, idOf),
		},
		Call: func(ctx context.Context) error {
			return api.DeleteProject(ctx, c.http, c.baseURL, projectID)
		},
		InvalidateTags: []cache.Tag{tagList("projects")},
	})
}

// UpdateProfile applies a partial update to the current user's profile,
// persisting the server copy into the session and the me-cache.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateUserRequest) (*User, error) {
	uid, ok := c.sessions.UserID()
	if !ok {
		return nil, ErrNoSession
	}
	u, err := api.UpdateUser(ctx, c.http, c.baseURL, uid, req)
	if err != nil {
		return nil, err
	}
	if err := c.sessions.UpdateUser(*u); err != nil {
		c.log.Warn().Err(err).Msg("persisting updated profile")
	}
	_, _ = c.store.Patch(keyMe, func(any) any { return *u })
	c.store.Invalidate([]cache.Tag{tagEntity("users", uid)})
	return u, nil
}

// DeleteAccount deletes the user server-side, then clears all local state:
// session, reminders and the user-scoped cache entries.
func (c *Client) DeleteAccount(ctx context.Context) error {
	uid, ok := c.sessions.UserID()
	if !ok {
		return ErrNoSession
	}
	if err := api.DeleteUser(ctx, c.http, c.baseURL, uid); err != nil {
		return err
	}
	return c.clearLocalState(ctx)
}
