package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name           string
		track          spotify.FullTrack
		expectedID     string
		expectedName   string
		expectedArtist string
	}{
		{
			name: "single artist",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track123",
					Name: "Test Song",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist One"},
					},
				},
			},
			expectedID:     "track123",
			expectedName:   "Test Song",
			expectedArtist: "Artist One",
		},
		{
			name: "multiple artists joined with comma",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
						{Name: "Artist C"},
					},
				},
			},
			expectedID:     "track456",
			expectedName:   "Collab Track",
			expectedArtist: "Artist A, Artist B, Artist C",
		},
		{
			name: "no artists",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:      "track000",
					Name:    "Unknown Track",
					Artists: []spotify.SimpleArtist{},
				},
			},
			expectedID:     "track000",
			expectedName:   "Unknown Track",
			expectedArtist: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack(tt.track)

			if got.ID != tt.expectedID {
				t.Errorf("ID = %q, want %q", got.ID, tt.expectedID)
			}
			if got.Name != tt.expectedName {
				t.Errorf("Name = %q, want %q", got.Name, tt.expectedName)
			}
			if got.Artist != tt.expectedArtist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.expectedArtist)
			}
		})
	}
}

func TestBatchChunking(t *testing.T) {
	tests := []struct {
		name            string
		totalTracks     int
		expectedBatches int
	}{
		{name: "empty", totalTracks: 0, expectedBatches: 0},
		{name: "single track", totalTracks: 1, expectedBatches: 1},
		{name: "exactly one batch", totalTracks: 100, expectedBatches: 1},
		{name: "just over one batch", totalTracks: 101, expectedBatches: 2},
		{name: "several batches", totalTracks: 350, expectedBatches: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := 0
			for i := 0; i < tt.totalTracks; i += maxTracksPerRequest {
				batches++
			}
			if batches != tt.expectedBatches {
				t.Errorf("batches = %d, want %d", batches, tt.expectedBatches)
			}
		})
	}
}
