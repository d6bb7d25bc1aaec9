package model

import "time"

// User owns conversations. Referenced by ID for ownership checks; the core
// never authenticates, it only stores the credential hash opaquely.
type User struct {
	ID               string            `json:"id,omitempty"`
	Email            string            `json:"email"`
	PasswordHash     string            `json:"-"`
	Name             string            `json:"name"`
	CustomCategories []string          `json:"custom_categories,omitempty"`
	FavoriteTags     []string          `json:"favorite_tags,omitempty"`
	UIPreferences    map[string]string `json:"ui_preferences,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	LastLogin        *time.Time        `json:"last_login,omitempty"`
}

// DefaultCategories seeds a new user's category vocabulary.
var DefaultCategories = []string{
	"AI & Technology",
	"Writing & Creativity",
	"Business & Strategy",
	"Personal Development",
	"Research & Academia",
	"Uncategorized",
}

// DefaultTags seeds a new user's favorite tags.
var DefaultTags = []string{
	"important",
	"follow-up",
	"reference",
	"question",
	"insight",
}
