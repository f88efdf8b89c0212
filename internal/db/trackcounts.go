package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackCountRepository handles the global per-track play-count aggregates.
type TrackCountRepository struct {
	pool *pgxpool.Pool
}

// RecordBatch records one sighting of each track in a single atomic
// statement: new tracks are inserted with play_count 1, existing tracks are
// incremented by 1, and legacy rows with a NULL play_count resume at 2.
// Name and artist keep their first-seen values on conflict. Track ids must
// be unique within a batch.
func (r *TrackCountRepository) RecordBatch(ctx context.Context, tracks []TrackCount) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO track_counts (track_id, track_name, artist, play_count)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::int[])
		ON CONFLICT (track_id) DO UPDATE SET
			play_count = COALESCE(track_counts.play_count, 1) + 1
	`

	ids := make([]string, len(tracks))
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	counts := make([]int, len(tracks))

	for i, t := range tracks {
		ids[i] = t.TrackID
		names[i] = t.TrackName
		artists[i] = t.Artist
		counts[i] = 1
	}

	_, err := r.pool.Exec(ctx, query, ids, names, artists, counts)
	if err != nil {
		return fmt.Errorf("batch recording track counts: %w", err)
	}
	return nil
}

// Get retrieves a track aggregate by track id.
func (r *TrackCountRepository) Get(ctx context.Context, trackID string) (*TrackCount, error) {
	query := `
		SELECT track_id, track_name, artist, COALESCE(play_count, 1)
		FROM track_counts
		WHERE track_id = $1
	`
	var tc TrackCount
	err := r.pool.QueryRow(ctx, query, trackID).Scan(
		&tc.TrackID,
		&tc.TrackName,
		&tc.Artist,
		&tc.PlayCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track count: %w", err)
	}
	return &tc, nil
}
