package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/concertlog/concertlog/internal/config"
	"github.com/concertlog/concertlog/internal/database"
	"github.com/concertlog/concertlog/internal/database/shows"
	"github.com/concertlog/concertlog/internal/enrich"
	"github.com/concertlog/concertlog/internal/setlist"
)

// EnrichSetlistsCommand re-runs the catalog lookup for every show
// still missing a setlist.
type EnrichSetlistsCommand struct {
	DatabasePath string
	UserID       uint
}

func NewEnrichSetlistsCommand() *EnrichSetlistsCommand {
	return &EnrichSetlistsCommand{}
}

func (cmd *EnrichSetlistsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("enrich-setlists", flag.ExitOnError)

	var userID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&userID, "user", 0, "Limit the sweep to one user (0 = all users)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s enrich-setlists [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Retry the setlist catalog lookup for shows without one.\n")
		fmt.Fprintf(os.Stderr, "Requires SETLIST_API_KEY.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.UserID = uint(userID)
	return nil
}

func (cmd *EnrichSetlistsCommand) Run() error {
	cfg := config.NewConfig()
	if cfg.Setlist.APIKey == "" {
		return fmt.Errorf("SETLIST_API_KEY is not set")
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	repo := shows.NewRepository(db.DB)

	client := setlist.NewClient(cfg.Setlist.BaseURL, cfg.Setlist.APIKey,
		cfg.Setlist.RequestInterval, cfg.Setlist.RequestTimeout)
	matcher := setlist.NewMatcher(client, cfg.Setlist.PageLimit)
	enricher := enrich.NewEnricher(repo, matcher)

	fmt.Println("Sweeping shows without setlists...")
	result, err := enricher.EnrichAllMissing(context.Background(), cmd.UserID)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Done: %d pending, %d enriched, %d without match, %d failed\n",
		result.Total, result.Enriched, result.NoMatch, result.Failed)
	return nil
}
