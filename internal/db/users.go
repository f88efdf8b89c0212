package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a user by username.
func (r *UserRepository) Get(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT username, display_name, date_created, source_playlist_id,
		       weekly_playlist_id, full_playlist_id, last_processed_week
		FROM users
		WHERE username = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.Username,
		&user.DisplayName,
		&user.DateCreated,
		&user.SourcePlaylistID,
		&user.WeeklyPlaylistID,
		&user.FullPlaylistID,
		&user.LastProcessedWeek,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// Exists reports whether a user record exists for the username.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}

// CreateOrMerge creates the user record if absent. When the record already
// exists, only a previously unset source playlist id is merged in; all other
// fields are left untouched. Idempotent under repeated identical calls.
// An empty sourcePlaylistID is stored as NULL.
func (r *UserRepository) CreateOrMerge(ctx context.Context, username, displayName, sourcePlaylistID string) error {
	query := `
		INSERT INTO users (username, display_name, date_created, source_playlist_id)
		VALUES ($1, $2, NOW(), NULLIF($3, ''))
		ON CONFLICT (username) DO UPDATE SET
			source_playlist_id = COALESCE(users.source_playlist_id, EXCLUDED.source_playlist_id)
	`
	_, err := r.pool.Exec(ctx, query, username, displayName, sourcePlaylistID)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// UpdatePlaylistIDs records the outcome of a completed weekly sync. The
// weekly playlist id and last_processed_week (computed from the current
// date) are always set; the full and source playlist ids are set only when
// provided, which happens on a user's first run.
func (r *UserRepository) UpdatePlaylistIDs(ctx context.Context, username, weeklyID string, fullID, sourceID *string) error {
	_, week := time.Now().ISOWeek()

	query := `
		UPDATE users
		SET weekly_playlist_id = $2,
		    last_processed_week = $3,
		    full_playlist_id = COALESCE($4, full_playlist_id),
		    source_playlist_id = COALESCE($5, source_playlist_id)
		WHERE username = $1
	`
	result, err := r.pool.Exec(ctx, query, username, weeklyID, week, fullID, sourceID)
	if err != nil {
		return fmt.Errorf("updating playlist ids: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll retrieves every user record, in no particular order.
func (r *UserRepository) ListAll(ctx context.Context) ([]User, error) {
	query := `
		SELECT username, display_name, date_created, source_playlist_id,
		       weekly_playlist_id, full_playlist_id, last_processed_week
		FROM users
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.Username,
			&user.DisplayName,
			&user.DateCreated,
			&user.SourcePlaylistID,
			&user.WeeklyPlaylistID,
			&user.FullPlaylistID,
			&user.LastProcessedWeek,
		); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
