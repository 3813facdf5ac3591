package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/batch"
	"github.com/fwojciec/sitecontacts/crawl"
	"github.com/fwojciec/sitecontacts/fs"
	"github.com/fwojciec/sitecontacts/goquery"
	schttp "github.com/fwojciec/sitecontacts/http"
	scslog "github.com/fwojciec/sitecontacts/slog"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin answers confirmation prompts. Set before calling Run().
	Stdin io.Reader

	// Fetcher replaces the HTTP fetcher for end-to-end testing.
	Fetcher sitecontacts.Fetcher

	// Now stamps final artifact names.
	Now func() time.Time
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin: os.Stdin,
		Now:   time.Now,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Fetcher != nil {
		return m.Fetcher.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
		Now:    m.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitecontacts"),
		kong.Description("Collect contact emails and phone numbers from company websites."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitecontacts --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	if f, ok := stderr.(*os.File); ok {
		deps.Terminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	if m.Fetcher == nil {
		m.Fetcher = schttp.NewFetcher(schttp.WithTimeout(cli.Timeout))
	}
	defer m.Close()

	var fetcher sitecontacts.Fetcher = scslog.NewLoggingFetcher(m.Fetcher, logger)
	if cli.Retries > 0 {
		fetcher = &crawl.RetryingFetcher{
			Next:   fetcher,
			Delays: crawl.BackoffDelays(cli.Retries),
			Logger: logger,
		}
	}

	site := scslog.NewLoggingSiteScraper(&crawl.Scraper{
		Fetcher:         fetcher,
		Extractor:       goquery.NewExtractor(),
		Pages:           goquery.NewContactPageFinder(),
		Limiter:         crawl.NewDomainLimiter(cli.Delay),
		MaxContactPages: cli.MaxPages,
		Logger:          logger,
	}, logger)

	chunks := scslog.NewLoggingChunkStore(fs.NewChunkStore(cli.Dir), logger)
	progress := batch.NewProgressStore(fs.NewProgressFile(cli.Dir), chunks)
	progress.Logger = logger

	// --delay 0 disables every pause, including between retries.
	retryDelay := cli.Delay
	if retryDelay == 0 {
		retryDelay = -1
	}

	deps.Logger = logger
	deps.Dir = cli.Dir
	deps.URLColumn = cli.URLColumn
	deps.Scraper = site
	deps.Orchestrator = &batch.Orchestrator{
		Chunks:   chunks,
		Progress: progress,
		Scraper: &crawl.TableScraper{
			Scraper:     site,
			Concurrency: cli.Concurrency,
			SiteDelay:   cli.Delay,
		},
		URLColumn: cli.URLColumn,
		ChunkSize: cli.ChunkSize,
		Logger:    logger,
	}
	deps.Retrier = &batch.Retrier{
		Chunks:    chunks,
		Progress:  progress,
		Scraper:   site,
		URLColumn: cli.URLColumn,
		Delay:     retryDelay,
		Logger:    logger,
	}

	return kongCtx.Run(deps)
}
