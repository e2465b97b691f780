package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/concertlog/concertlog/internal/cli"
	"github.com/concertlog/concertlog/internal/config"
	"github.com/concertlog/concertlog/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "import":
		cmd := cli.NewFileImportCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "enrich-setlists":
		cmd := cli.NewEnrichSetlistsCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("concertlog %s (%s)\n", Version, Commit)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`concertlog - personal concert history tracker

Usage:
  %s [serve]             Start the HTTP server (default)
  %s import              Import concerts from a CSV/TSV file
  %s enrich-setlists     Retry setlist lookups for shows without one
  %s version             Print version information

Run '%s <command> -h' for command-specific options.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}
