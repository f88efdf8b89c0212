// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel configuration errors.
var (
	// ErrMissingCredentials is returned when SPOTIFY_CLIENT_ID or
	// SPOTIFY_CLIENT_SECRET is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variable")

	// ErrMissingDatabaseURL is returned when DATABASE_URL is not set.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")
)

// Defaults for the hosted deployment.
const (
	DefaultBaseURL            = "https://discoveredweekly.com"
	DefaultPort               = "8080"
	DefaultWeeklyNameTemplate = "Discovered {week_of_year}-{year}"
	DefaultFullPlaylistName   = "Discovered Weekly"
	DefaultSourcePlaylistName = "Discover Weekly"
)

// Config holds all runtime configuration with named fields.
type Config struct {
	ClientID     string // Spotify application client id
	ClientSecret string // Spotify application client secret
	DatabaseURL  string // PostgreSQL connection string
	BaseURL      string // public base URL; the OAuth redirect is BaseURL + "/logged_in"
	Addr         string // listen address
	BatchCode    string // shared passcode guarding POST /save_playlists

	WeeklyNameTemplate string // template for the dated snapshot playlist name
	FullPlaylistName   string // name of the cumulative playlist
	SourcePlaylistName string // well-known name of the discovery playlist
}

// Load reads configuration from environment variables, applying defaults
// for everything except credentials and the database URL.
func Load() (*Config, error) {
	clientID := os.Getenv("SPOTIFY_CLIENT_ID")
	clientSecret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	return &Config{
		ClientID:           clientID,
		ClientSecret:       clientSecret,
		DatabaseURL:        databaseURL,
		BaseURL:            getenv("BASE_URL", DefaultBaseURL),
		Addr:               fmt.Sprintf("0.0.0.0:%s", getenv("PORT", DefaultPort)),
		BatchCode:          os.Getenv("SAVE_PLAYLISTS_CODE"),
		WeeklyNameTemplate: getenv("WEEKLY_NAME_TEMPLATE", DefaultWeeklyNameTemplate),
		FullPlaylistName:   getenv("FULL_PLAYLIST_NAME", DefaultFullPlaylistName),
		SourcePlaylistName: getenv("SOURCE_PLAYLIST_NAME", DefaultSourcePlaylistName),
	}, nil
}

// RedirectURL is the OAuth callback URL registered with Spotify.
func (c *Config) RedirectURL() string {
	return c.BaseURL + "/logged_in"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
