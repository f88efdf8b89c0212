package config

import (
	"errors"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/discoveredweekly")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != "0.0.0.0:8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "0.0.0.0:8080")
	}
	if cfg.WeeklyNameTemplate != DefaultWeeklyNameTemplate {
		t.Errorf("WeeklyNameTemplate = %q, want %q", cfg.WeeklyNameTemplate, DefaultWeeklyNameTemplate)
	}
	if cfg.FullPlaylistName != DefaultFullPlaylistName {
		t.Errorf("FullPlaylistName = %q, want %q", cfg.FullPlaylistName, DefaultFullPlaylistName)
	}
	if cfg.SourcePlaylistName != DefaultSourcePlaylistName {
		t.Errorf("SourcePlaylistName = %q, want %q", cfg.SourcePlaylistName, DefaultSourcePlaylistName)
	}
	if got, want := cfg.RedirectURL(), DefaultBaseURL+"/logged_in"; got != want {
		t.Errorf("RedirectURL() = %q, want %q", got, want)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("WEEKLY_NAME_TEMPLATE", "Week {week_of_year}")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "0.0.0.0:9000")
	}
	if got, want := cfg.RedirectURL(), "http://127.0.0.1:9000/logged_in"; got != want {
		t.Errorf("RedirectURL() = %q, want %q", got, want)
	}
	if cfg.WeeklyNameTemplate != "Week {week_of_year}" {
		t.Errorf("WeeklyNameTemplate = %q", cfg.WeeklyNameTemplate)
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/discoveredweekly")

	_, err := Load()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Load() error = %v, want ErrMissingCredentials", err)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Errorf("Load() error = %v, want ErrMissingDatabaseURL", err)
	}
}
