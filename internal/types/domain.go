package types

import (
	"fmt"
	"time"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// User represents a platform user profile.
type User struct {
	ID               string    `json:"_id"`
	Username         string    `json:"username,omitempty"`
	Email            string    `json:"email"`
	Img              string    `json:"img,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	IsAdmin          bool      `json:"isAdmin"`
	Awards           []Award   `json:"awards,omitempty"`
	ProjectsCount    int       `json:"projectsCount"`
	ConnectionsCount int       `json:"connectionsCount"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt,omitzero"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero"`
}

// Award is a distinction attached to a user profile.
type Award struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// Session is the authenticated state tied to a user: the profile plus the
// token pair. The durable credential store persists exactly this object.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Event is a calendar event. Favorites holds user IDs; membership is a set
// (an id appears at most once).
type Event struct {
	ID          string   `json:"_id"`
	Header      string   `json:"header"`
	Location    string   `json:"location,omitempty"`
	Category    string   `json:"category,omitempty"`
	Date        string   `json:"date"`  // DD/MM/YYYY
	Start       string   `json:"start"` // hh:mm AM|PM
	End         string   `json:"end,omitempty"`
	Description string   `json:"description,omitempty"`
	Favorites   []string `json:"favorites"`
}

// eventTimeLayout matches the backend's "DD/MM/YYYY hh:mm A" wire format.
const eventTimeLayout = "02/01/2006 03:04 PM"

// StartTime parses the event's date and start fields into a local time.
func (e Event) StartTime() (time.Time, error) {
	t, err := time.ParseInLocation(eventTimeLayout, e.Date+" "+e.Start, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s: invalid start time %q %q: %w", e.ID, e.Date, e.Start, err)
	}
	return t, nil
}

// Project is a user project. Likes holds user IDs.
type Project struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Likes       []string  `json:"likes"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// NewsItem is a feed entry. Likes, Dislikes and Views hold user IDs;
// likes and dislikes are mutually exclusive per user.
type NewsItem struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	Views     []string  `json:"views"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
