package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/sitecontacts"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	state, err := deps.Orchestrator.Status(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}
	if state.TotalChunks == 0 {
		fmt.Fprintf(deps.Stdout, "No batch initialized. Run 'sitecontacts init' first.\n")
		return nil
	}
	PrintStatus(deps.Stdout, state)
	return nil
}

// PrintStatus writes the progress report.
func PrintStatus(w io.Writer, state *sitecontacts.ProgressState) {
	done := len(state.CompletedChunks)
	s := state.Stats

	fmt.Fprintf(w, "Chunks:     %d/%d completed (%s), %d pending\n",
		done, state.TotalChunks, percent(done, state.TotalChunks), state.Pending())
	fmt.Fprintf(w, "Chunk size: %d\n", state.ChunkSize)
	if state.InputFile != "" {
		fmt.Fprintf(w, "Input:      %s\n", state.InputFile)
	}
	if state.LastRun != "" {
		fmt.Fprintf(w, "Last run:   %s\n", state.LastRun)
	}
	fmt.Fprintf(w, "\nRows processed: %d\n", s.TotalProcessed)
	if s.TotalProcessed == 0 {
		return
	}

	rows := []struct {
		label string
		n     int
	}{
		{"Websites OK", s.WebsitesOK},
		{"Websites unavailable", s.WebsitesUnavailable},
		{"Emails found", s.EmailsFound},
		{"Phones found", s.PhonesFound},
		{"Success", s.Success},
		{"No contacts", s.NoContacts},
		{"Timeout", s.Timeout},
		{"Connection failed", s.ConnectionFailed},
		{"Does not exist", s.DoesNotExist},
		{"Error", s.Error},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-21s %6d  %6s\n", r.label, r.n, percent(r.n, s.TotalProcessed))
	}
}
