package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/sitecontacts"
	main "github.com/fwojciec/sitecontacts/cmd/sitecontacts"
	"github.com/fwojciec/sitecontacts/fs"
	"github.com/fwojciec/sitecontacts/mock"
	"github.com/fwojciec/sitecontacts/sqlite"
	"github.com/fwojciec/sitecontacts/xlsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSites serves one email and one phone for every host except those
// listed in down, which refuse connections.
func fakeSites(down ...string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			host := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
			for _, d := range down {
				if host == d {
					return "", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
				}
			}
			return fmt.Sprintf(`<html><body>
<a href="mailto:info@%s">Write to us</a>
<a href="tel:+33491541952">Call</a>
</body></html>`, host), nil
		},
		CloseFn: func() error { return nil },
	}
}

// workspace creates a work directory with input/companies.csv.
func workspace(t *testing.T, csv string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, fs.InputDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, fs.InputDir, "companies.csv"), []byte(csv), 0644))
	return dir
}

const companiesCSV = "NAME,WEBSITE\nAcme,acme.fr\nDown,down.fr\nNobody,\n"

var fixedNow = time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)

func newMain(fetcher sitecontacts.Fetcher, stdin string) *main.Main {
	m := main.NewMain()
	m.Fetcher = fetcher
	m.Stdin = strings.NewReader(stdin)
	m.Now = func() time.Time { return fixedNow }
	return m
}

// run executes one command in dir without delays.
func run(t *testing.T, m *main.Main, dir string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	full := append([]string{"--dir", dir, "--delay", "0"}, args...)
	err := m.Run(context.Background(), full, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	for _, cmd := range []string{"init", "process", "status", "retry", "merge", "scrape", "exports", "contacts"} {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run_NoArgsShowsHelpAndFails(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), nil, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "process")
}

// Story: Batch Run
// A table of companies is split, scraped a few chunks at a time and merged

func TestMain_Run_Batch(t *testing.T) {
	t.Parallel()

	// Given three companies, one of which is unreachable
	dir := workspace(t, companiesCSV)
	m := newMain(fakeSites("down.fr"), "")

	// When I initialize with chunks of two rows
	stdout, _, err := run(t, m, dir, "--chunk-size", "2", "init")

	// Then two chunks are created
	require.NoError(t, err)
	assert.Contains(t, stdout, "Loaded 3 rows")
	assert.Contains(t, stdout, "Created 2 chunks")

	// When I process one chunk
	stdout, _, err = run(t, m, dir, "process", "-n", "1")

	// Then half the batch is done
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processing chunk 1 (2 rows)")
	assert.Contains(t, stdout, "Completed 1/2 chunks (50.0%), 1 pending")

	// When I process the rest
	stdout, _, err = run(t, m, dir, "process", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Completed 2/2 chunks (100.0%), 0 pending")

	// And processing again has nothing left to do
	stdout, _, err = run(t, m, dir, "process")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already completed")

	// And the status reports outcomes
	stdout, _, err = run(t, m, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2/2 completed (100.0%)")
	assert.Contains(t, stdout, "Rows processed: 3")
	assert.Contains(t, stdout, "Connection failed")

	// When I merge
	stdout, _, err = run(t, m, dir, "merge")

	// Then one final CSV holds every row in input order
	require.NoError(t, err)
	path := filepath.Join(dir, fs.FinalDir, "contacts_FINAL_20250309_140507.csv")
	assert.Contains(t, stdout, "Merged 2 chunks (3 rows)")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\xEF\xBB\xBF")), "final CSV starts with a BOM")

	final, err := fs.NewCSVReader().ReadTable(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, final.Len())
	assert.Equal(t, "info@acme.fr", final.Value(0, sitecontacts.ColumnEmailPrimary))
	assert.Equal(t, "'+33491541952", final.Value(0, sitecontacts.ColumnPhonePrimary))
	assert.Equal(t, "FR", final.Value(0, sitecontacts.ColumnCountry))
	assert.Equal(t, "Connection Failed", final.Value(1, sitecontacts.ColumnScrapingResult))
	assert.Equal(t, "No URL", final.Value(2, sitecontacts.ColumnScrapingResult))
}

func TestMain_Run_InitRefusesExistingBatch(t *testing.T) {
	t.Parallel()

	dir := workspace(t, companiesCSV)
	m := newMain(fakeSites(), "")
	_, _, err := run(t, m, dir, "init")
	require.NoError(t, err)

	_, stderr, err := run(t, m, dir, "init")

	assert.Equal(t, sitecontacts.ECONFLICT, sitecontacts.ErrorCode(err))
	assert.Contains(t, stderr, "--force")

	_, _, err = run(t, m, dir, "init", "--force")
	assert.NoError(t, err)
}

func TestMain_Run_InitExplicitXLSX(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "companies.xlsx")
	in := sitecontacts.NewTable([]string{"NAME", "SITE"})
	in.Rows = [][]string{{"Acme", "acme.fr"}}
	require.NoError(t, xlsx.NewWriter(path).WriteTable(context.Background(), in))
	m := newMain(fakeSites(), "")

	stdout, _, err := run(t, m, dir, "--url-column", "SITE", "init", path)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Loaded 1 rows")
}

func TestMain_Run_ProcessWarnsWhenInputChanged(t *testing.T) {
	t.Parallel()

	dir := workspace(t, companiesCSV)
	m := newMain(fakeSites(), "")
	_, _, err := run(t, m, dir, "init")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, fs.InputDir, "companies.csv"), []byte("NAME,WEBSITE\nOther,other.fr\n"), 0644))

	_, stderr, err := run(t, m, dir, "process")

	require.NoError(t, err)
	assert.Contains(t, stderr, "changed since init")
}

func TestMain_Run_ProcessWithoutInit(t *testing.T) {
	t.Parallel()

	m := newMain(fakeSites(), "")

	_, stderr, err := run(t, m, t.TempDir(), "process")

	assert.Equal(t, sitecontacts.ENOTFOUND, sitecontacts.ErrorCode(err))
	assert.Contains(t, stderr, "no batch initialized")
}

func TestMain_Run_StatusWithoutInit(t *testing.T) {
	t.Parallel()

	m := newMain(fakeSites(), "")

	stdout, _, err := run(t, m, t.TempDir(), "status")

	require.NoError(t, err)
	assert.Contains(t, stdout, "No batch initialized")
}

// Story: Retry Before Merge
// Sites that refused connections are retried once they are back

func TestMain_Run_Retry(t *testing.T) {
	t.Parallel()

	t.Run("declined on the prompt", func(t *testing.T) {
		t.Parallel()

		dir := workspace(t, companiesCSV)
		_, _, err := run(t, newMain(fakeSites("down.fr"), ""), dir, "init")
		require.NoError(t, err)
		_, _, err = run(t, newMain(fakeSites("down.fr"), ""), dir, "process")
		require.NoError(t, err)

		stdout, _, err := run(t, newMain(fakeSites(), "n\n"), dir, "retry")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Retry 1 sites that failed to connect? [y/N]")
		assert.Contains(t, stdout, "Retry skipped")
	})

	t.Run("merge with retry recovers the site", func(t *testing.T) {
		t.Parallel()

		// Given a processed batch where down.fr refused connections
		dir := workspace(t, companiesCSV)
		_, _, err := run(t, newMain(fakeSites("down.fr"), ""), dir, "init")
		require.NoError(t, err)
		_, _, err = run(t, newMain(fakeSites("down.fr"), ""), dir, "process")
		require.NoError(t, err)

		// When the site is back and I merge with retry confirmed
		stdout, _, err := run(t, newMain(fakeSites(), "yes\n"), dir, "merge", "--retry")

		// Then the row is recovered before merging
		require.NoError(t, err)
		assert.Contains(t, stdout, "[1/1] chunk 1: down.fr")
		assert.Contains(t, stdout, "Recovered 1 of 1 sites, 0 still failing")
		final, err := fs.NewCSVReader().ReadTable(context.Background(),
			filepath.Join(dir, fs.FinalDir, "contacts_FINAL_20250309_140507.csv"))
		require.NoError(t, err)
		assert.Equal(t, "info@down.fr", final.Value(1, sitecontacts.ColumnEmailPrimary))
		assert.Equal(t, "Success", final.Value(1, sitecontacts.ColumnScrapingResult))
	})

	t.Run("nothing to retry", func(t *testing.T) {
		t.Parallel()

		dir := workspace(t, companiesCSV)
		_, _, err := run(t, newMain(fakeSites(), ""), dir, "init")
		require.NoError(t, err)
		_, _, err = run(t, newMain(fakeSites(), ""), dir, "process")
		require.NoError(t, err)

		stdout, _, err := run(t, newMain(fakeSites(), ""), dir, "retry", "--yes")

		require.NoError(t, err)
		assert.Contains(t, stdout, "No connection failures to retry")
	})
}

func TestMain_Run_MergeFormats(t *testing.T) {
	t.Parallel()

	processed := func(t *testing.T) string {
		t.Helper()
		dir := workspace(t, companiesCSV)
		_, _, err := run(t, newMain(fakeSites(), ""), dir, "init")
		require.NoError(t, err)
		_, _, err = run(t, newMain(fakeSites(), ""), dir, "process")
		require.NoError(t, err)
		return dir
	}

	t.Run("xlsx", func(t *testing.T) {
		t.Parallel()

		dir := processed(t)

		_, _, err := run(t, newMain(fakeSites(), ""), dir, "merge", "--format", "xlsx")

		require.NoError(t, err)
		final, err := xlsx.NewReader().ReadTable(context.Background(),
			filepath.Join(dir, fs.FinalDir, "contacts_FINAL_20250309_140507.xlsx"))
		require.NoError(t, err)
		assert.Equal(t, 3, final.Len())
		assert.Equal(t, "info@acme.fr", final.Value(0, sitecontacts.ColumnEmailPrimary))
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()

		dir := processed(t)

		stdout, _, err := run(t, newMain(fakeSites(), ""), dir, "merge", "--format", "sqlite")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Export ID:")

		db := sqlite.NewDB(filepath.Join(dir, fs.FinalDir, main.DatabaseName))
		require.NoError(t, db.Open())
		defer db.Close()
		contacts, err := sqlite.NewExportService(db, "WEBSITE").FindContacts(context.Background(), sitecontacts.ContactFilter{})
		require.NoError(t, err)
		require.Len(t, contacts, 3)
		assert.Equal(t, "+33491541952", contacts[0].Record.PrimaryPhone())
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		dir := processed(t)

		_, _, err := run(t, newMain(fakeSites(), ""), dir, "merge", "--format", "json")

		assert.Error(t, err)
	})

	t.Run("nothing to merge", func(t *testing.T) {
		t.Parallel()

		dir := workspace(t, companiesCSV)
		_, _, err := run(t, newMain(fakeSites(), ""), dir, "init")
		require.NoError(t, err)

		_, stderr, err := run(t, newMain(fakeSites(), ""), dir, "merge")

		assert.Equal(t, sitecontacts.ENOTFOUND, sitecontacts.ErrorCode(err))
		assert.Contains(t, stderr, "no completed results")
	})
}

// Story: Reviewing Exports
// Contacts merged into the database are listed and filtered from the CLI

func TestMain_Run_Contacts(t *testing.T) {
	t.Parallel()

	exported := func(t *testing.T) (string, string) {
		t.Helper()
		dir := workspace(t, companiesCSV)
		_, _, err := run(t, newMain(fakeSites("down.fr"), ""), dir, "init")
		require.NoError(t, err)
		_, _, err = run(t, newMain(fakeSites("down.fr"), ""), dir, "process")
		require.NoError(t, err)
		stdout, _, err := run(t, newMain(fakeSites("down.fr"), ""), dir, "merge", "--format", "sqlite")
		require.NoError(t, err)
		_, rest, ok := strings.Cut(stdout, "Export ID: ")
		require.True(t, ok)
		id, _, _ := strings.Cut(rest, "\n")
		return dir, id
	}

	t.Run("lists exports", func(t *testing.T) {
		t.Parallel()

		// Given a sqlite merge
		dir, id := exported(t)

		// When I list exports
		stdout, _, err := run(t, newMain(fakeSites(), ""), dir, "exports")

		// Then the export and its row count are shown
		require.NoError(t, err)
		assert.Contains(t, stdout, id)
		assert.Contains(t, stdout, "3 rows")
	})

	t.Run("shows every contact of the latest export", func(t *testing.T) {
		t.Parallel()

		dir, id := exported(t)

		stdout, _, err := run(t, newMain(fakeSites(), ""), dir, "contacts")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Contacts in export "+id+" (3 shown)")
		assert.Contains(t, stdout, "acme.fr [FR, Success]")
		assert.Contains(t, stdout, "email: info@acme.fr")
		assert.Contains(t, stdout, "phone: +33491541952")
		assert.Contains(t, stdout, "Connection Failed")
	})

	t.Run("filters by result", func(t *testing.T) {
		t.Parallel()

		dir, id := exported(t)

		stdout, _, err := run(t, newMain(fakeSites(), ""), dir, "contacts", "--export", id, "--result", "connection-failed")

		require.NoError(t, err)
		assert.Contains(t, stdout, "(1 shown)")
		assert.Contains(t, stdout, "down.fr")
		assert.NotContains(t, stdout, "acme.fr")
	})

	t.Run("filters by country and paginates", func(t *testing.T) {
		t.Parallel()

		dir, _ := exported(t)

		stdout, _, err := run(t, newMain(fakeSites(), ""), dir, "contacts", "--country", "fr", "--limit", "1", "--offset", "1")

		require.NoError(t, err)
		assert.Contains(t, stdout, "(1 shown)")
		assert.Contains(t, stdout, "down.fr")
	})

	t.Run("rejects an unknown result", func(t *testing.T) {
		t.Parallel()

		dir, _ := exported(t)

		_, stderr, err := run(t, newMain(fakeSites(), ""), dir, "contacts", "--result", "maybe")

		assert.Equal(t, sitecontacts.EINVALID, sitecontacts.ErrorCode(err))
		assert.Contains(t, stderr, "unknown scraping result")
	})

	t.Run("reports a missing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		_, stderr, err := run(t, newMain(fakeSites(), ""), dir, "contacts")

		assert.Equal(t, sitecontacts.ENOTFOUND, sitecontacts.ErrorCode(err))
		assert.Contains(t, stderr, "merge --format sqlite")
		assert.NoFileExists(t, filepath.Join(dir, fs.FinalDir, main.DatabaseName))
	})
}

func TestMain_Run_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("prints the contacts found", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(fakeSites(), ""), t.TempDir(), "scrape", "acme.fr")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Result:   Success")
		assert.Contains(t, stdout, "Email:    info@acme.fr")
		assert.Contains(t, stdout, "Phone:    +33491541952")
		assert.Contains(t, stdout, "Country:  FR")
	})

	t.Run("reports an unreachable site", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(fakeSites("down.fr"), ""), t.TempDir(), "scrape", "down.fr")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Status:   Unavailable")
		assert.Contains(t, stdout, "Result:   Connection Failed")
		assert.Contains(t, stdout, "Reason:")
	})
}
