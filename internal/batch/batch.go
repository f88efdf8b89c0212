// Package batch runs the weekly sync across the whole user population,
// isolating per-user failures so one bad account never stops the rest.
package batch

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/discoveredweekly/discovered-weekly/internal/db"
	"github.com/discoveredweekly/discovered-weekly/internal/weekly"
)

// UserLister provides the known user population.
type UserLister interface {
	ListAll(ctx context.Context) ([]db.User, error)
}

// Authenticator yields an authenticated catalog session for a user.
type Authenticator interface {
	ClientFor(ctx context.Context, username string) (weekly.Catalog, error)
}

// AuthFunc adapts a function to the Authenticator interface.
type AuthFunc func(ctx context.Context, username string) (weekly.Catalog, error)

// ClientFor calls f.
func (f AuthFunc) ClientFor(ctx context.Context, username string) (weekly.Catalog, error) {
	return f(ctx, username)
}

// Engine runs the weekly sync for a single user.
type Engine interface {
	Run(ctx context.Context, cat weekly.Catalog, user *db.User) (*weekly.Result, error)
}

// Summary tallies the outcomes of one batch run.
type Summary struct {
	Total           int
	Completed       int
	Skipped         int
	Unauthenticated int
	NoSource        int
	Failed          int
}

// Runner iterates all known users and invokes the sync engine for each.
type Runner struct {
	users      UserLister
	auth       Authenticator
	engine     Engine
	sourceName string
	logger     *log.Logger
}

// New creates a batch runner. sourceName is the well-known name of the
// discovery playlist, used to resolve users whose record lacks a source
// playlist id.
func New(users UserLister, auth Authenticator, engine Engine, sourceName string, logger *log.Logger) *Runner {
	return &Runner{
		users:      users,
		auth:       auth,
		engine:     engine,
		sourceName: sourceName,
		logger:     logger,
	}
}

// RunAll processes every known user sequentially. Users who cannot be
// authenticated or have no resolvable source playlist are skipped with a
// warning; an engine error for one user is logged and does not stop the
// batch. Only a failure to list the population aborts the run.
func (r *Runner) RunAll(ctx context.Context) (*Summary, error) {
	logger := r.logger.With("run", uuid.NewString()[:8])

	users, err := r.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	summary := &Summary{Total: len(users)}
	logger.Info("beginning playlist extraction", "users", len(users))

	for i := range users {
		user := &users[i]
		userLogger := logger.With("user", user.Username)

		cat, err := r.auth.ClientFor(ctx, user.Username)
		if err != nil {
			summary.Unauthenticated++
			userLogger.Warn("skipping unauthenticated user", "err", err)
			continue
		}

		if user.SourcePlaylistID == nil {
			id, err := cat.FindPlaylistID(ctx, r.sourceName)
			if err != nil {
				summary.Failed++
				userLogger.Error("resolving source playlist", "err", err)
				continue
			}
			if id == "" {
				summary.NoSource++
				userLogger.Warn("user does not follow the discovery playlist, skipping")
				continue
			}
			user.SourcePlaylistID = &id
		}

		result, err := r.engine.Run(ctx, cat, user)
		if err != nil {
			summary.Failed++
			userLogger.Error("weekly sync failed", "err", err)
			continue
		}

		if result.Status == weekly.StatusSkipped {
			summary.Skipped++
		} else {
			summary.Completed++
		}
	}

	logger.Info("batch run finished",
		"total", summary.Total,
		"completed", summary.Completed,
		"skipped", summary.Skipped,
		"unauthenticated", summary.Unauthenticated,
		"no_source", summary.NoSource,
		"failed", summary.Failed,
	)

	return summary, nil
}
