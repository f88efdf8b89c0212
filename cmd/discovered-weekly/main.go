// Command discovered-weekly runs the Discovered Weekly web service: the
// Spotify login flow plus the weekly playlist sync batch trigger.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/discoveredweekly/discovered-weekly/internal/auth"
	"github.com/discoveredweekly/discovered-weekly/internal/batch"
	"github.com/discoveredweekly/discovered-weekly/internal/config"
	"github.com/discoveredweekly/discovered-weekly/internal/db"
	"github.com/discoveredweekly/discovered-weekly/internal/web"
	"github.com/discoveredweekly/discovered-weekly/internal/weekly"
	webfs "github.com/discoveredweekly/discovered-weekly/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	authenticator := auth.New(cfg, database.Tokens())

	engine := weekly.New(database.Users(), database.TrackCounts(), weekly.Config{
		WeeklyNameTemplate: cfg.WeeklyNameTemplate,
		FullPlaylistName:   cfg.FullPlaylistName,
	}, logger)

	runner := batch.New(
		database.Users(),
		batch.AuthFunc(func(ctx context.Context, username string) (weekly.Catalog, error) {
			return authenticator.ClientFor(ctx, username)
		}),
		engine,
		cfg.SourcePlaylistName,
		logger,
	)

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	handlers, err := web.NewHandlers(web.HandlersConfig{
		Auth:       authenticator,
		Users:      database.Users(),
		Engine:     engine,
		Runner:     runner,
		Templates:  templates,
		SourceName: cfg.SourcePlaylistName,
		BatchCode:  cfg.BatchCode,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating handlers: %w", err)
	}

	server := web.NewServer(cfg.Addr, handlers, logger)
	return server.Run()
}
