package db

import "time"

// User is a registered Spotify user and the sync state attached to them.
type User struct {
	Username          string
	DisplayName       string
	DateCreated       time.Time
	SourcePlaylistID  *string // nullable - discovery playlist, absent until followed
	WeeklyPlaylistID  *string // nullable - most recent dated snapshot playlist
	FullPlaylistID    *string // nullable - cumulative playlist, created once
	LastProcessedWeek *int    // nullable - ISO week of the last completed sync
}

// TrackCount is a global per-track sighting aggregate, shared across users.
type TrackCount struct {
	TrackID   string
	TrackName string
	Artist    string
	PlayCount int
}
