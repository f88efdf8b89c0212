// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// Client wraps the Spotify API client with the calls the weekly sync needs.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// CurrentUser returns the authenticated user's Spotify ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (id, displayName string, err error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, user.DisplayName, nil
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}
