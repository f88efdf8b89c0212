package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/discoveredweekly/discovered-weekly/internal/auth"
	"github.com/discoveredweekly/discovered-weekly/internal/batch"
	"github.com/discoveredweekly/discovered-weekly/internal/db"
	"github.com/discoveredweekly/discovered-weekly/internal/weekly"
)

// BatchRunner triggers a sync run over the whole population.
type BatchRunner interface {
	RunAll(ctx context.Context) (*batch.Summary, error)
}

// Engine runs the weekly sync for a single user.
type Engine interface {
	Run(ctx context.Context, cat weekly.Catalog, user *db.User) (*weekly.Result, error)
}

// HandlersConfig wires the handlers' collaborators.
type HandlersConfig struct {
	Auth       *auth.Authenticator
	Users      *db.UserRepository
	Engine     Engine
	Runner     BatchRunner
	Templates  fs.FS
	SourceName string // well-known discovery playlist name
	BatchCode  string // shared passcode for POST /save_playlists
	Logger     *log.Logger
}

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	auth       *auth.Authenticator
	users      *db.UserRepository
	engine     Engine
	runner     BatchRunner
	templates  *template.Template
	sourceName string
	batchCode  string
	logger     *log.Logger
}

// NewHandlers creates a Handlers instance, parsing the page templates.
func NewHandlers(cfg HandlersConfig) (*Handlers, error) {
	templates, err := template.ParseFS(cfg.Templates, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Handlers{
		auth:       cfg.Auth,
		users:      cfg.Users,
		engine:     cfg.Engine,
		runner:     cfg.Runner,
		templates:  templates,
		sourceName: cfg.SourceName,
		batchCode:  cfg.BatchCode,
		logger:     cfg.Logger,
	}, nil
}

// Home renders the landing page with the Spotify authorize link (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	data := struct {
		AuthURL string
	}{
		AuthURL: h.auth.AuthURL(state),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "main.html", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// LoggedIn handles the OAuth callback (GET /logged_in): it completes the
// code exchange, registers the user, and runs their first sync right away.
func (h *Handlers) LoggedIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	username, displayName, client, err := h.auth.Exchange(ctx, state, r)
	if err != nil {
		h.logger.Error("completing login", "err", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	exists, err := h.users.Exists(ctx, username)
	if err != nil {
		h.logger.Error("checking user", "user", username, "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	if exists {
		fmt.Fprintf(w, "You've already logged in as: %s. Your %s will be copied every monday.", username, h.sourceName)
		return
	}

	sourceID, err := client.FindPlaylistID(ctx, h.sourceName)
	if err != nil {
		h.logger.Error("looking up discovery playlist", "user", username, "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	if sourceID == "" {
		fmt.Fprintf(w, "For this service to work, you must follow your %q playlist on Spotify. "+
			"Go to https://www.spotify.com/us/discoverweekly/ and follow it to continue.", h.sourceName)
		return
	}

	if err := h.users.CreateOrMerge(ctx, username, displayName, sourceID); err != nil {
		h.logger.Error("registering user", "user", username, "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	h.logger.Info("registered user", "user", username)

	user, err := h.users.Get(ctx, username)
	if err != nil {
		h.logger.Error("loading user", "user", username, "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	// Run the first sync immediately; failures are retried by the next
	// scheduled batch, so the login itself still succeeds.
	if _, err := h.engine.Run(ctx, client, user); err != nil {
		h.logger.Error("first sync failed", "user", username, "err", err)
	}

	fmt.Fprintf(w, "You have successfully logged in as %s (%s). "+
		"Your %q playlist will be copied now and every monday at 7:00 CET.",
		displayName, username, h.sourceName)
}

// SavePlaylists triggers a batch run over all users (POST /save_playlists).
// The caller must present the shared passcode header.
func (h *Handlers) SavePlaylists(w http.ResponseWriter, r *http.Request) {
	if h.batchCode == "" || r.Header.Get("passcode") != h.batchCode {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "You should not be here. Shoo")
		return
	}

	summary, err := h.runner.RunAll(r.Context())
	if err != nil {
		h.logger.Error("batch run failed", "err", err)
		http.Error(w, "Batch run failed", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "Success: %d completed, %d skipped, %d failed of %d users",
		summary.Completed, summary.Skipped, summary.Failed, summary.Total)
}

// generateOAuthState creates a random state string for OAuth CSRF protection.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
