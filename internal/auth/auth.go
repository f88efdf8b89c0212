// Package auth provides Spotify OAuth authorization backed by the
// persistent token store, so batch runs can act for users who are not
// present.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/discoveredweekly/discovered-weekly/internal/config"
	"github.com/discoveredweekly/discovered-weekly/internal/db"
	"github.com/discoveredweekly/discovered-weekly/internal/spotify"
)

// ErrNotAuthenticated is returned when no usable token exists for a user.
// Token refresh failures surface through it as well; they are never
// swallowed into a stale client.
var ErrNotAuthenticated = errors.New("not authenticated")

// Authenticator exchanges authorization codes for tokens and builds
// authenticated clients from stored tokens.
type Authenticator struct {
	auth   *spotifyauth.Authenticator
	tokens *db.TokenRepository
}

// New creates an Authenticator for the configured Spotify application.
func New(cfg *config.Config, tokens *db.TokenRepository) *Authenticator {
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL()),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopeUserLibraryRead,
		),
	)

	return &Authenticator{
		auth:   auth,
		tokens: tokens,
	}
}

// AuthURL returns the Spotify authorize URL carrying the given CSRF state.
func (a *Authenticator) AuthURL(state string) string {
	return a.auth.AuthURL(state)
}

// Exchange completes the OAuth callback: it swaps the authorization code
// in r for a token, resolves the user's profile, and persists the token
// for later batch runs. Returns the username, display name, and an
// authenticated client for immediate use.
func (a *Authenticator) Exchange(ctx context.Context, state string, r *http.Request) (username, displayName string, client *spotify.Client, err error) {
	token, err := a.auth.Token(ctx, state, r)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: exchanging code: %v", ErrNotAuthenticated, err)
	}

	client = spotify.New(spotifyapi.New(a.auth.Client(ctx, token), spotifyapi.WithRetry(true)))

	username, displayName, err = client.CurrentUser(ctx)
	if err != nil {
		return "", "", nil, fmt.Errorf("getting user profile: %w", err)
	}

	if err := a.tokens.Save(ctx, username, token); err != nil {
		return "", "", nil, fmt.Errorf("saving token: %w", err)
	}

	return username, displayName, client, nil
}

// ClientFor builds an authenticated client for a known user from their
// stored token. The token is validated with a profile call (oauth2
// refreshes it transparently when expired) and a refreshed token is
// written back to the store. Returns ErrNotAuthenticated when the user
// has no token or the token cannot be refreshed.
func (a *Authenticator) ClientFor(ctx context.Context, username string) (*spotify.Client, error) {
	token, err := a.tokens.Get(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: no token for user %s", ErrNotAuthenticated, username)
	}
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}

	api := spotifyapi.New(a.auth.Client(ctx, token), spotifyapi.WithRetry(true))
	client := spotify.New(api)

	if _, _, err := client.CurrentUser(ctx); err != nil {
		return nil, fmt.Errorf("%w: validating token for %s: %v", ErrNotAuthenticated, username, err)
	}

	// Persist the refreshed token so the next run starts from it.
	if newToken, err := api.Token(); err == nil && newToken.AccessToken != token.AccessToken {
		if err := a.tokens.Save(ctx, username, newToken); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
	}

	return client, nil
}
