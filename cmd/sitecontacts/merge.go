package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/batch"
	"github.com/fwojciec/sitecontacts/fs"
	"github.com/fwojciec/sitecontacts/sqlite"
	"github.com/fwojciec/sitecontacts/xlsx"
)

// DatabaseName is the SQLite file that accumulates every sqlite merge.
const DatabaseName = "contacts.db"

// Run executes the merge command.
func (c *MergeCmd) Run(deps *Dependencies) error {
	if c.Retry {
		if err := runRetry(deps, c.Yes); err != nil {
			return err
		}
		if deps.Ctx.Err() != nil {
			return nil
		}
	}

	finalDir := filepath.Join(deps.Dir, fs.FinalDir)
	now := deps.Now()

	var (
		w      sitecontacts.TableWriter
		path   string
		export *exportWriter
	)
	switch c.Format {
	case "xlsx":
		path = filepath.Join(finalDir, batch.FinalName(now, ".xlsx"))
		w = xlsx.NewWriter(path)
	case "sqlite":
		if err := os.MkdirAll(finalDir, 0755); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return err
		}
		path = filepath.Join(finalDir, DatabaseName)
		db := sqlite.NewDB(path)
		if err := db.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", err)
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		defer db.Close()
		export = &exportWriter{svc: sqlite.NewExportService(db, deps.URLColumn)}
		w = export
	default:
		path = filepath.Join(finalDir, batch.FinalName(now, ".csv"))
		w = fs.NewCSVWriter(path, fs.WithBOM())
	}

	report, err := deps.Orchestrator.Merge(deps.Ctx, w)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Merged %d chunks (%d rows) into %s\n", len(report.Chunks), report.Rows, path)
	if export != nil && export.created != nil {
		fmt.Fprintf(deps.Stdout, "Export ID: %s\n", export.created.ID)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(deps.Stdout, "Skipped incomplete chunks: %v\n", report.Skipped)
	}
	return nil
}

// exportWriter records the export created by a merge.
type exportWriter struct {
	svc     sitecontacts.ExportService
	created *sitecontacts.Export
}

func (w *exportWriter) WriteTable(ctx context.Context, t *sitecontacts.Table) error {
	e, err := w.svc.CreateExport(ctx, t)
	if err != nil {
		return err
	}
	w.created = e
	return nil
}
