package client

import (
	"github.com/instiwise/client-go/internal/cache"
	"github.com/instiwise/client-go/internal/reminder"
	"github.com/instiwise/client-go/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Domain entities
	User     = types.User
	Award    = types.Award
	Session  = types.Session
	Event    = types.Event
	Project  = types.Project
	NewsItem = types.NewsItem

	// Requests
	CreateProjectRequest = types.CreateProjectRequest
	UpdateProjectRequest = types.UpdateProjectRequest
	UpdateUserRequest    = types.UpdateUserRequest

	// Cache surface
	Key          = cache.Key
	Tag          = cache.Tag
	Status       = cache.Status
	Subscription = cache.Subscription

	// Reminder surface
	Notifier     = reminder.Notifier
	Notification = reminder.Notification
)

// Errors re-exported in errors.go
