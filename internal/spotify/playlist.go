package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const (
	// playlistPageSize is the page size used when searching the user's playlists.
	playlistPageSize = 50

	// maxTracksPerRequest is the Spotify limit for a single add-tracks call.
	maxTracksPerRequest = 100
)

// FindPlaylistID searches the current user's playlists for an exact name
// match, page by page. The first match wins. Returns "" when an empty page
// is reached without a match.
func (c *Client) FindPlaylistID(ctx context.Context, name string) (string, error) {
	for offset := 0; ; offset += playlistPageSize {
		page, err := c.api.CurrentUsersPlaylists(ctx,
			spotify.Limit(playlistPageSize),
			spotify.Offset(offset),
		)
		if err != nil {
			return "", fmt.Errorf("listing playlists: %w", err)
		}
		if len(page.Playlists) == 0 {
			return "", nil
		}
		for _, p := range page.Playlists {
			if p.Name == name {
				return p.ID.String(), nil
			}
		}
	}
}

// CreatePlaylist creates a new private playlist for the current user.
// Returns the playlist ID from the creation response.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist %q: %w", name, err)
	}

	return playlist.ID.String(), nil
}

// AppendTracks adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request. An empty id list is a no-op.
func (c *Client) AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		batch := ids[i:end]

		_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...)
		if err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}

	return nil
}
