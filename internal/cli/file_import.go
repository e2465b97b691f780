package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/concertlog/concertlog/internal/config"
	"github.com/concertlog/concertlog/internal/database"
	"github.com/concertlog/concertlog/internal/database/shows"
	"github.com/concertlog/concertlog/internal/importer"
	"github.com/concertlog/concertlog/internal/setlist"
)

// FileImportCommand imports a delimited concert history file straight
// into the database, without going through the HTTP preview flow.
type FileImportCommand struct {
	FilePath     string
	DatabasePath string
	UserID       uint
	Verbose      bool
	DryRun       bool
	WithSetlists bool
}

func NewFileImportCommand() *FileImportCommand {
	return &FileImportCommand{}
}

func (cmd *FileImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var userID uint64
	fs.StringVar(&cmd.FilePath, "file", "", "Path to a CSV/TSV export of your concert history (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&userID, "user", 1, "User the shows are imported for")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")
	fs.BoolVar(&cmd.WithSetlists, "setlists", false, "Look up setlists from the catalog after import (needs SETLIST_API_KEY)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import concerts from a delimited text file to the local database.\n\n")
		fmt.Fprintf(os.Stderr, "The first row must be a header; artist, venue and date columns are\n")
		fmt.Fprintf(os.Stderr, "detected from common header names (Artist/Band/Who, Venue/Where, Date/When).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file shows.csv -dry-run -verbose\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import and fetch setlists:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file shows.csv -setlists\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	cmd.UserID = uint(userID)

	return nil
}

func (cmd *FileImportCommand) Run() error {
	fmt.Println("Concert Import")
	fmt.Println("==============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	fmt.Printf("File: %s\n", cmd.FilePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	repo := shows.NewRepository(db.DB)

	var matcher importer.SetlistMatcher
	if cmd.WithSetlists && !cmd.DryRun {
		cfg := config.NewConfig()
		if cfg.Setlist.APIKey == "" {
			return fmt.Errorf("-setlists requires SETLIST_API_KEY to be set")
		}
		client := setlist.NewClient(cfg.Setlist.BaseURL, cfg.Setlist.APIKey,
			cfg.Setlist.RequestInterval, cfg.Setlist.RequestTimeout)
		matcher = setlist.NewMatcher(client, cfg.Setlist.PageLimit)
	}

	batch := importer.NewOrchestrator(repo, matcher, cmd.UserID,
		importer.WithSessionStore(repo))

	if err := batch.LoadFile(string(data)); err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	records := batch.Records()
	preview := batch.Preview()
	fmt.Printf("Parsed %d rows: %d ready, %d will be skipped\n",
		len(records), preview.Imported, preview.Skipped)

	if cmd.Verbose || cmd.DryRun {
		fmt.Println("\n=== Rows ===")
		for i, r := range records {
			status := "ok"
			switch {
			case len(r.Errors) > 0:
				codes := make([]string, len(r.Errors))
				for j, e := range r.Errors {
					codes[j] = string(e)
				}
				status = strings.Join(codes, ",")
			case r.Duplicate:
				status = "ok (duplicate)"
			}
			fmt.Printf("%d. %s at %s on %s [%s]\n", i+1, r.Artist, r.Venue, r.Date, status)
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete, nothing was written")
		return nil
	}

	result, err := batch.Commit(context.Background())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("\nImported %d shows (%d failed, %d skipped)\n",
		result.Imported, result.Failed, result.Skipped)
	if matcher != nil {
		fmt.Printf("Setlists found: %d\n", result.SetlistsFound)
	}
	return nil
}
