package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

// TokenRepository persists OAuth tokens keyed by username.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the stored token for a user.
// Returns ErrNotFound when the user has never authorized.
func (r *TokenRepository) Get(ctx context.Context, username string) (*oauth2.Token, error) {
	query := `SELECT token FROM tokens WHERE username = $1`
	var data []byte
	err := r.pool.QueryRow(ctx, query, username).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return &token, nil
}

// Save stores or replaces the token for a user.
func (r *TokenRepository) Save(ctx context.Context, username string, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	query := `
		INSERT INTO tokens (username, token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username) DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, username, data); err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	return nil
}

// Delete removes the stored token for a user, if any.
func (r *TokenRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM tokens WHERE username = $1`
	if _, err := r.pool.Exec(ctx, query, username); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}
