// Package weekly implements the per-user weekly synchronization workflow:
// once per ISO week it snapshots a user's discovery playlist into a dated
// playlist, folds the new tracks into a cumulative playlist, and records
// global play counts.
package weekly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/discoveredweekly/discovered-weekly/internal/db"
	"github.com/discoveredweekly/discovered-weekly/internal/naming"
	"github.com/discoveredweekly/discovered-weekly/internal/spotify"
)

// ErrNoSourcePlaylist is returned when a user record has no linked
// discovery playlist. Such users cannot be synced.
var ErrNoSourcePlaylist = errors.New("user has no source playlist")

// PlaylistDescription is attached to every playlist the engine creates.
const PlaylistDescription = "Automatically created by Discovered Weekly."

// Catalog is the slice of the Spotify gateway the engine uses. It is
// satisfied by *spotify.Client and by test doubles.
type Catalog interface {
	FindPlaylistID(ctx context.Context, name string) (string, error)
	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.Track, error)
	ListTrackIDs(ctx context.Context, playlistID string) ([]string, error)
	AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// UserStore persists the outcome of a completed sync.
type UserStore interface {
	UpdatePlaylistIDs(ctx context.Context, username, weeklyID string, fullID, sourceID *string) error
}

// TrackCounter records global track sightings.
type TrackCounter interface {
	RecordBatch(ctx context.Context, tracks []db.TrackCount) error
}

// Status of a single engine invocation.
type Status string

const (
	// StatusCompleted means the full workflow ran and was persisted.
	StatusCompleted Status = "completed"

	// StatusSkipped means the user was already processed this ISO week.
	StatusSkipped Status = "skipped"
)

// Result reports what one invocation did.
type Result struct {
	Status           Status
	WeeklyPlaylistID string
	FullPlaylistID   string
	SourceTracks     int // tracks read from the discovery playlist
	NewFullTracks    int // tracks newly appended to the cumulative playlist
}

// Config names the playlists the engine maintains.
type Config struct {
	WeeklyNameTemplate string
	FullPlaylistName   string
}

// Service orchestrates the weekly sync for one user at a time.
type Service struct {
	users   UserStore
	counter TrackCounter
	cfg     Config
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a new weekly sync engine.
func New(users UserStore, counter TrackCounter, cfg Config, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		users:   users,
		counter: counter,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the workflow for one user over an authenticated catalog
// session. Users already processed this ISO week are skipped without any
// catalog or store calls. An error at any step aborts before the week
// marker is advanced, so a failed run is retried on the next invocation.
func (s *Service) Run(ctx context.Context, cat Catalog, user *db.User) (*Result, error) {
	if user.SourcePlaylistID == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSourcePlaylist, user.Username)
	}

	logger := s.logger.With("user", user.Username)

	now := s.now()
	_, week := now.ISOWeek()
	if user.LastProcessedWeek != nil && *user.LastProcessedWeek == week {
		logger.Warn("already processed this week, skipping", "week", week)
		return &Result{Status: StatusSkipped}, nil
	}

	logger.Info("extracting weekly discovery", "week", week)

	tracks, err := cat.PlaylistTracks(ctx, *user.SourcePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("fetching source playlist: %w", err)
	}
	tracks = dedupe(tracks)

	sourceIDs := make([]string, len(tracks))
	for i, t := range tracks {
		sourceIDs[i] = t.ID
	}

	if len(tracks) > 0 {
		counts := make([]db.TrackCount, len(tracks))
		for i, t := range tracks {
			counts[i] = db.TrackCount{TrackID: t.ID, TrackName: t.Name, Artist: t.Artist}
		}
		if err := s.counter.RecordBatch(ctx, counts); err != nil {
			return nil, fmt.Errorf("recording track counts: %w", err)
		}
	}

	weeklyID, err := s.ensureWeekly(ctx, cat, sourceIDs, now, logger)
	if err != nil {
		return nil, err
	}

	fullID, createdFull, newCount, err := s.ensureFull(ctx, cat, user, sourceIDs)
	if err != nil {
		return nil, err
	}

	// Persisting last is what makes a failed run retryable: the week
	// marker only advances once everything above has succeeded. The full
	// and source playlist ids are recorded on the first run only.
	var fullPtr, sourcePtr *string
	if createdFull {
		fullPtr = &fullID
		sourcePtr = user.SourcePlaylistID
	}
	if err := s.users.UpdatePlaylistIDs(ctx, user.Username, weeklyID, fullPtr, sourcePtr); err != nil {
		return nil, fmt.Errorf("persisting playlist ids: %w", err)
	}

	logger.Info("weekly sync complete",
		"week", week,
		"source_tracks", len(tracks),
		"new_full_tracks", newCount,
	)

	return &Result{
		Status:           StatusCompleted,
		WeeklyPlaylistID: weeklyID,
		FullPlaylistID:   fullID,
		SourceTracks:     len(tracks),
		NewFullTracks:    newCount,
	}, nil
}

// ensureWeekly finds or creates this week's snapshot playlist and fills it
// with the source tracks. A playlist with this week's name may already
// exist when a previous run failed after creating it but before persisting;
// in that case it is reconciled by appending only the tracks it is missing,
// so nothing is lost and nothing is duplicated.
func (s *Service) ensureWeekly(ctx context.Context, cat Catalog, sourceIDs []string, now time.Time, logger *log.Logger) (string, error) {
	name := naming.Format(s.cfg.WeeklyNameTemplate, now)

	id, err := cat.FindPlaylistID(ctx, name)
	if err != nil {
		return "", fmt.Errorf("finding weekly playlist: %w", err)
	}

	if id == "" {
		id, err = cat.CreatePlaylist(ctx, name, PlaylistDescription)
		if err != nil {
			return "", err
		}
		if len(sourceIDs) > 0 {
			if err := cat.AppendTracks(ctx, id, sourceIDs); err != nil {
				return "", fmt.Errorf("filling weekly playlist: %w", err)
			}
		}
		return id, nil
	}

	existing, err := cat.ListTrackIDs(ctx, id)
	if err != nil {
		return "", fmt.Errorf("listing weekly playlist: %w", err)
	}
	missing := difference(sourceIDs, existing)
	if len(missing) > 0 {
		logger.Warn("reconciling existing weekly playlist", "name", name, "missing", len(missing))
		if err := cat.AppendTracks(ctx, id, missing); err != nil {
			return "", fmt.Errorf("reconciling weekly playlist: %w", err)
		}
	}
	return id, nil
}

// ensureFull reuses or creates the cumulative playlist and appends only the
// source tracks it does not already contain.
func (s *Service) ensureFull(ctx context.Context, cat Catalog, user *db.User, sourceIDs []string) (fullID string, created bool, newCount int, err error) {
	var existing []string
	if user.FullPlaylistID != nil {
		fullID = *user.FullPlaylistID
		existing, err = cat.ListTrackIDs(ctx, fullID)
		if err != nil {
			return "", false, 0, fmt.Errorf("listing full playlist: %w", err)
		}
	} else {
		fullID, err = cat.CreatePlaylist(ctx, s.cfg.FullPlaylistName, PlaylistDescription)
		if err != nil {
			return "", false, 0, err
		}
		created = true
	}

	newIDs := difference(sourceIDs, existing)
	if len(newIDs) > 0 {
		if err := cat.AppendTracks(ctx, fullID, newIDs); err != nil {
			return "", false, 0, fmt.Errorf("growing full playlist: %w", err)
		}
	}
	return fullID, created, len(newIDs), nil
}

// dedupe removes duplicate track ids, keeping the first occurrence in order.
func dedupe(tracks []spotify.Track) []spotify.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := tracks[:0]
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// difference returns the elements of a not present in b, preserving a's order.
func difference(a, b []string) []string {
	if len(a) == 0 {
		return nil
	}
	exclude := make(map[string]struct{}, len(b))
	for _, id := range b {
		exclude[id] = struct{}{}
	}

	var out []string
	for _, id := range a {
		if _, ok := exclude[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
