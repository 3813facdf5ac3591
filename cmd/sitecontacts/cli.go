package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/batch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Dir is the work directory holding input/ and output/.
	Dir       string
	URLColumn string

	Orchestrator *batch.Orchestrator
	Retrier      *batch.Retrier
	Scraper      sitecontacts.SiteScraper

	Now func() time.Time

	// Terminal is true when stderr is a TTY and progress bars can be drawn.
	Terminal bool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Dir         string        `short:"d" default:"." env:"SITECONTACTS_DIR" help:"Work directory holding input/ and output/"`
	URLColumn   string        `name:"url-column" default:"WEBSITE" env:"SITECONTACTS_URL_COLUMN" help:"Column holding website URLs"`
	ChunkSize   int           `default:"50" env:"SITECONTACTS_CHUNK_SIZE" help:"Rows per chunk"`
	Timeout     time.Duration `default:"15s" env:"SITECONTACTS_TIMEOUT" help:"Per-request timeout"`
	Delay       time.Duration `default:"2s" env:"SITECONTACTS_DELAY" help:"Pause between sites and between requests to one host"`
	MaxPages    int           `default:"3" env:"SITECONTACTS_MAX_PAGES" help:"Contact pages visited per site"`
	Concurrency int           `short:"c" default:"1" env:"SITECONTACTS_CONCURRENCY" help:"Sites scraped in parallel"`
	Retries     int           `default:"0" env:"SITECONTACTS_RETRIES" help:"Retries of a timed out or throttled request, with backoff"`
	Verbose     bool          `short:"v" env:"SITECONTACTS_VERBOSE" help:"Enable debug logging"`

	Init     InitCmd     `cmd:"" help:"Split the input table into chunks"`
	Process  ProcessCmd  `cmd:"" help:"Process the next pending chunks"`
	Status   StatusCmd   `cmd:"" help:"Show batch progress and statistics"`
	Retry    RetryCmd    `cmd:"" help:"Retry sites that failed to connect"`
	Merge    MergeCmd    `cmd:"" help:"Merge completed chunks into a final file"`
	Scrape   ScrapeCmd   `cmd:"" help:"Scrape a single website and print its contacts"`
	Exports  ExportsCmd  `cmd:"" help:"List exports saved by sqlite merges"`
	Contacts ContactsCmd `cmd:"" help:"Show contacts saved in an export"`
}

// InitCmd is the "init" subcommand.
type InitCmd struct {
	Input string `arg:"" optional:"" help:"CSV or XLSX input (default: the only one in input/)"`
	Force bool   `short:"f" help:"Discard an existing split and its results"`
}

// ProcessCmd is the "process" subcommand.
type ProcessCmd struct {
	Count int `short:"n" default:"1" help:"Number of chunks to process"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// RetryCmd is the "retry" subcommand.
type RetryCmd struct {
	Yes bool `short:"y" help:"Retry without asking"`
}

// MergeCmd is the "merge" subcommand.
type MergeCmd struct {
	Format string `default:"csv" enum:"csv,xlsx,sqlite" help:"Output format (csv, xlsx, sqlite)"`
	Retry  bool   `help:"Retry connection failures before merging"`
	Yes    bool   `short:"y" help:"Retry without asking"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL string `arg:"" help:"Website URL"`
}

// ExportsCmd is the "exports" subcommand.
type ExportsCmd struct {
	DB string `name:"db" help:"SQLite database (default: output/final/contacts.db)"`
}

// ContactsCmd is the "contacts" subcommand.
type ContactsCmd struct {
	DB      string `name:"db" help:"SQLite database (default: output/final/contacts.db)"`
	Export  string `short:"e" help:"Export ID (default: the latest)"`
	Country string `help:"Only contacts from this country code"`
	Result  string `short:"r" help:"Only contacts with this scraping result, e.g. success or no-contacts-found"`
	Limit   int    `short:"n" help:"Maximum contacts to show (0 for all)"`
	Offset  int    `help:"Contacts to skip"`
}
