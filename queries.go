package client

import (
	"context"

	"github.com/instiwise/client-go/internal/api"
	"github.com/instiwise/client-go/internal/cache"
	"github.com/instiwise/client-go/internal/mutation"
	"github.com/instiwise/client-go/internal/types"
)

// Cache keys. One entry per collection view; the events list is the
// canonical source for per-event reads such as toggle direction.
const (
	keyEvents         cache.Key = "events/list"
	keyUpcomingEvents cache.Key = "events/upcoming"
	keyProjects       cache.Key = "projects/list"
	keyMyProjects     cache.Key = "projects/mine"
	keyNews           cache.Key = "news/list"
	keyMe             cache.Key = "auth/me"
)

func tagList(entity string) cache.Tag { return cache.Tag(entity + ":LIST") }

func tagEntity(entity, id string) cache.Tag { return cache.Tag(entity + ":" + id) }

// listTags derives the invalidation tags a filled collection entry
// provides: the collection tag plus one tag per contained entity.
func listTags[T any](entity string, idOf func(T) string) func(any) []cache.Tag {
	return func(data any) []cache.Tag {
		tags := []cache.Tag{tagList(entity)}
		list, ok := data.([]T)
		if !ok {
			return tags
		}
		for _, item := range list {
			tags = append(tags, tagEntity(entity, idOf(item)))
		}
		return tags
	}
}

func eventID(e types.Event) string     { return e.ID }
func projectID(p types.Project) string { return p.ID }
func newsID(n types.NewsItem) string   { return n.ID }

func (c *Client) eventsQuery() cache.Query {
	return cache.Query{
		Key: keyEvents,
		Fetch: func(ctx context.Context) (any, error) {
			events, err := api.ListEvents(ctx, c.http, c.baseURL)
			if err != nil {
				return nil, err
			}
			return events, nil
		},
		Tags: listTags("events", eventID),
	}
}

func (c *Client) upcomingEventsQuery() cache.Query {
	return cache.Query{
		Key: keyUpcomingEvents,
		Fetch: func(ctx context.Context) (any, error) {
			events, err := api.ListUpcomingEvents(ctx, c.http, c.baseURL)
			if err != nil {
				return nil, err
			}
			return events, nil
		},
		Tags: listTags("events", eventID),
	}
}

func (c *Client) projectsQuery() cache.Query {
	return cache.Query{
		Key: keyProjects,
		Fetch: func(ctx context.Context) (any, error) {
			projects, err := api.ListProjects(ctx, c.http, c.baseURL)
			if err != nil {
				return nil, err
			}
			return projects, nil
		},
		Tags: listTags("projects", projectID),
	}
}

func (c *Client) myProjectsQuery() cache.Query {
	return cache.Query{
		Key: keyMyProjects,
		Fetch: func(ctx context.Context) (any, error) {
			projects, err := api.ListMyProjects(ctx, c.http, c.baseURL)
			if err != nil {
				return nil, err
			}
			return projects, nil
		},
		Tags: listTags("projects", projectID),
	}
}

func (c *Client) newsQuery() cache.Query {
	return cache.Query{
		Key: keyNews,
		Fetch: func(ctx context.Context) (any, error) {
			items, err := api.ListNews(ctx, c.http, c.baseURL)
			if err != nil {
				return nil, err
			}
			return items, nil
		},
		Tags: listTags("news", newsID),
	}
}

func (c *Client) meQuery() cache.Query {
	return cache.Query{
		Key: keyMe,
		Fetch: func(ctx context.Context) (any, error) {
			me, err := api.Me(ctx, c.http, c.baseURL)
			if err != nil {
				return nil, err
			}
			return me.User, nil
		},
		Tags: func(data any) []cache.Tag {
			u, ok := data.(types.User)
			if !ok {
				return nil
			}
			return []cache.Tag{tagEntity("users", u.ID)}
		},
	}
}

func fetchList[T any](ctx context.Context, c *Client, q cache.Query) ([]T, error) {
	data, err := c.store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	list, _ := data.([]T)
	return list, nil
}

// Events returns all events, serving the cache until it is invalidated.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	return fetchList[types.Event](ctx, c, c.eventsQuery())
}

// UpcomingEvents returns the events whose start lies in the future,
// per the backend's own filter.
func (c *Client) UpcomingEvents(ctx context.Context) ([]Event, error) {
	return fetchList[types.Event](ctx, c, c.upcomingEventsQuery())
}

// Projects returns all projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return fetchList[types.Project](ctx, c, c.projectsQuery())
}

// MyProjects returns the projects created by the current user.
func (c *Client) MyProjects(ctx context.Context) ([]Project, error) {
	if _, ok := c.sessions.UserID(); !ok {
		return nil, ErrNoSession
	}
	return fetchList[types.Project](ctx, c, c.myProjectsQuery())
}

// ProjectByID serves a single project from the list caches; there is no
// per-entity endpoint. Returns ErrNotFound when neither cached list nor a
// fresh fetch of the full list contains the id.
func (c *Client) ProjectByID(ctx context.Context, projectID string) (*Project, error) {
	if err := types.ValidateIDPresent(projectID, "projectID"); err != nil {
		return nil, err
	}
	projects, err := c.Projects(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := mutation.FindInList(any(projects), projectID, func(p types.Project) string { return p.ID }); ok {
		return &p, nil
	}
	if data, _, snapErr := c.store.Snapshot(keyMyProjects); snapErr == nil {
		if p, ok := mutation.FindInList[types.Project](data, projectID, func(p types.Project) string { return p.ID }); ok {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// News returns the news feed.
func (c *Client) News(ctx context.Context) ([]NewsItem, error) {
	return fetchList[types.NewsItem](ctx, c, c.newsQuery())
}

// Me returns the authenticated user's profile, cached under the users tag.
func (c *Client) Me(ctx context.Context) (*User, error) {
	if _, ok := c.sessions.UserID(); !ok {
		return nil, ErrNoSession
	}
	data, err := c.store.Fetch(ctx, c.meQuery())
	if err != nil {
		return nil, err
	}
	u, ok := data.(types.User)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// SubscribeEvents registers a cache subscription for the all-events entry.
// Invalidations schedule a background refetch and signal the subscription
// channel when fresh data lands.
func (c *Client) SubscribeEvents() *Subscription {
	return c.store.Subscribe(c.eventsQuery())
}

// SubscribeUpcomingEvents registers a subscription for the upcoming view.
func (c *Client) SubscribeUpcomingEvents() *Subscription {
	return c.store.Subscribe(c.upcomingEventsQuery())
}

// SubscribeProjects registers a subscription for the all-projects entry.
func (c *Client) SubscribeProjects() *Subscription {
	return c.store.Subscribe(c.projectsQuery())
}

// SubscribeNews registers a subscription for the news feed entry.
func (c *Client) SubscribeNews() *Subscription {
	return c.store.Subscribe(c.newsQuery())
}

// RefreshEvents forces a network reload of the all-events entry, bypassing
// any cached value. Pull-to-refresh maps onto this.
func (c *Client) RefreshEvents(ctx context.Context) ([]Event, error) {
	data, err := c.store.Refresh(ctx, c.eventsQuery())
	if err != nil {
		return nil, err
	}
	events, _ := data.([]types.Event)
	return events, nil
}

// eventByID reads an event from the list caches, preferring the canonical
// all-events entry.
func (c *Client) eventByID(id string) (types.Event, bool) {
	for _, key := range []cache.Key{keyEvents, keyUpcomingEvents} {
		data, _, err := c.store.Snapshot(key)
		if err != nil {
			continue
		}
		if e, ok := mutation.FindInList[types.Event](data, id, eventID); ok {
			return e, true
		}
	}
	return types.Event{}, false
}

// projectByID reads a project from the list caches without fetching.
func (c *Client) projectByID(id string) (types.Project, bool) {
	for _, key := range []cache.Key{keyProjects, keyMyProjects} {
		data, _, err := c.store.Snapshot(key)
		if err != nil {
			continue
		}
		if p, ok := mutation.FindInList[types.Project](data, id, projectID); ok {
			return p, true
		}
	}
	return types.Project{}, false
}

// newsItemByID reads a news item from the feed cache.
func (c *Client) newsItemByID(id string) (types.NewsItem, bool) {
	data, _, err := c.store.Snapshot(keyNews)
	if err != nil {
		return types.NewsItem{}, false
	}
	return mutation.FindInList[types.NewsItem](data, id, newsID)
}
