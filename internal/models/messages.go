package models

import "time"

// FavoriteToggled is published after every favorite toggle.
type FavoriteToggled struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Favorited bool      `json:"favorited"`
	At        time.Time `json:"at"`
}

// SessionChanged is published when a user signs in or out.
type SessionChanged struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	At        time.Time `json:"at"`
}
