package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// PlaylistTracks retrieves all tracks currently in a playlist, walking
// every page. Episodes and removed tracks are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}

	var tracks []Track
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, convertTrack(*item.Track.Track))
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	return tracks, nil
}

// ListTrackIDs retrieves the ordered track ids currently in a playlist.
func (c *Client) ListTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	tracks, err := c.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids, nil
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(ft spotify.FullTrack) Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:     ft.ID.String(),
		Name:   ft.Name,
		Artist: strings.Join(artists, ", "),
	}
}
