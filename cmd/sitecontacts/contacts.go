package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/fs"
	"github.com/fwojciec/sitecontacts/sqlite"
)

// Run executes the exports command.
func (c *ExportsCmd) Run(deps *Dependencies) error {
	db, err := openExportDB(deps, c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	exports, err := sqlite.NewExportService(db, deps.URLColumn).FindExports(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	if len(exports) == 0 {
		fmt.Fprintln(deps.Stdout, "No exports. Run 'sitecontacts merge --format sqlite' to create one.")
		return nil
	}

	for _, e := range exports {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d rows\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.RowCount)
	}
	return nil
}

// Run executes the contacts command.
func (c *ContactsCmd) Run(deps *Dependencies) error {
	filter := sitecontacts.ContactFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Country != "" {
		country := strings.ToUpper(c.Country)
		filter.Country = &country
	}
	if c.Result != "" {
		result, err := sitecontacts.ParseScrapingResult(c.Result)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
			return err
		}
		filter.Result = &result
	}

	db, err := openExportDB(deps, c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := sqlite.NewExportService(db, deps.URLColumn)

	exportID := c.Export
	if exportID == "" {
		exports, err := svc.FindExports(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
			return err
		}
		if len(exports) == 0 {
			fmt.Fprintln(deps.Stderr, "error: no exports. Run 'sitecontacts merge --format sqlite' first.")
			return sitecontacts.Errorf(sitecontacts.ENOTFOUND, "no exports")
		}
		exportID = exports[0].ID
	}
	filter.ExportID = &exportID

	contacts, err := svc.FindContacts(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	if len(contacts) == 0 {
		fmt.Fprintf(deps.Stdout, "No contacts in export %s match.\n", exportID)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Contacts in export %s (%d shown):\n\n", exportID, len(contacts))
	for _, ec := range contacts {
		rec := ec.Record
		fmt.Fprintf(deps.Stdout, "  %d. %s [%s, %s]\n", ec.Position, rec.URL, rec.Country, rec.ScrapingResult)
		if len(rec.Emails) > 0 {
			fmt.Fprintf(deps.Stdout, "     email: %s\n", strings.Join(rec.Emails, ", "))
		}
		if len(rec.Phones) > 0 {
			fmt.Fprintf(deps.Stdout, "     phone: %s\n", strings.Join(rec.Phones, ", "))
		}
	}
	return nil
}

// openExportDB opens path, or the database merge writes under the work
// directory. A missing file is reported instead of created.
func openExportDB(deps *Dependencies, path string) (*sqlite.DB, error) {
	if path == "" {
		path = filepath.Join(deps.Dir, fs.FinalDir, DatabaseName)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(deps.Stderr, "error: no database at %s. Run 'sitecontacts merge --format sqlite' first.\n", path)
		return nil, sitecontacts.Errorf(sitecontacts.ENOTFOUND, "database %q not found", path)
	}

	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return db, nil
}
