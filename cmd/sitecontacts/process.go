package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/batch"
	"github.com/schollz/progressbar/v3"
)

// Run executes the process command.
func (c *ProcessCmd) Run(deps *Dependencies) error {
	if c.Count < 1 {
		fmt.Fprintf(deps.Stderr, "error: -n must be at least 1\n")
		return sitecontacts.Errorf(sitecontacts.EINVALID, "-n must be at least 1")
	}

	warnIfInputChanged(deps)

	orch := deps.Orchestrator
	var bar *progressbar.ProgressBar
	orch.OnChunkStart = func(id, rows int) {
		if !deps.Terminal {
			fmt.Fprintf(deps.Stdout, "Processing chunk %d (%d rows)\n", id, rows)
			return
		}
		bar = progressbar.NewOptions(rows,
			progressbar.OptionSetDescription(fmt.Sprintf("chunk %d", id)),
			progressbar.OptionSetWriter(deps.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	orch.OnRow = func(done, total int) {
		if bar != nil {
			_ = bar.Set(done)
		}
	}

	report, err := orch.Process(deps.Ctx, c.Count)
	if bar != nil {
		_ = bar.Finish()
	}
	if errors.Is(err, context.Canceled) && report != nil {
		fmt.Fprintf(deps.Stdout, "Interrupted after %d chunks; progress saved\n", len(report.Completed))
		return nil
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	if len(report.Selected) == 0 {
		fmt.Fprintf(deps.Stdout, "All %d chunks are already completed\n", report.State.TotalChunks)
		fmt.Fprintf(deps.Stdout, "Run 'sitecontacts merge' to build the final file\n")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Processed %d chunks (%d rows)\n", len(report.Completed), report.Rows)
	if len(report.Failed) > 0 {
		fmt.Fprintf(deps.Stdout, "Failed chunks (will be retried on the next run): %v\n", report.Failed)
	}
	state := report.State
	fmt.Fprintf(deps.Stdout, "Completed %d/%d chunks (%s), %d pending\n",
		len(state.CompletedChunks), state.TotalChunks,
		percent(len(state.CompletedChunks), state.TotalChunks), state.Pending())
	return nil
}

// warnIfInputChanged compares the input fingerprint recorded by init with
// the file on disk.
func warnIfInputChanged(deps *Dependencies) {
	state, err := deps.Orchestrator.Progress.Load(deps.Ctx)
	if err != nil || state.InputFile == "" || state.InputHash == "" {
		return
	}
	path := state.InputFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(deps.Dir, filepath.FromSlash(path))
	}
	hash, err := batch.FingerprintFile(path)
	if err != nil {
		deps.Logger.Warn("input file is no longer available", "path", path)
		return
	}
	if hash != state.InputHash {
		fmt.Fprintf(deps.Stderr, "warning: %s changed since init; chunks still reflect the old content\n", state.InputFile)
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
