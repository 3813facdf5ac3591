package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/batch"
)

// Run executes the retry command.
func (c *RetryCmd) Run(deps *Dependencies) error {
	return runRetry(deps, c.Yes)
}

func runRetry(deps *Dependencies, yes bool) error {
	r := deps.Retrier
	if yes {
		r.Confirm = nil
	} else {
		r.Confirm = func(count int) bool {
			return Confirm(deps.Stdin, deps.Stdout,
				fmt.Sprintf("Retry %d sites that failed to connect?", count))
		}
	}
	r.OnRetry = func(i, total int, c batch.RetryCandidate) {
		fmt.Fprintf(deps.Stdout, "[%d/%d] chunk %d: %s\n", i, total, c.ChunkID, c.URL)
	}

	report, err := r.Retry(deps.Ctx)
	if errors.Is(err, context.Canceled) && report != nil {
		fmt.Fprintf(deps.Stdout, "Interrupted; %d sites recovered so far were saved\n", report.Recovered)
		return nil
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	switch {
	case report.Candidates == 0:
		fmt.Fprintf(deps.Stdout, "No connection failures to retry\n")
	case !report.Confirmed:
		fmt.Fprintf(deps.Stdout, "Retry skipped\n")
	default:
		fmt.Fprintf(deps.Stdout, "Recovered %d of %d sites, %d still failing\n",
			report.Recovered, report.Candidates, report.StillFailed)
	}
	return nil
}

// Confirm asks question on w and reads a yes/no answer from r. Anything but
// "y" or "yes" is a no.
func Confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	if r == nil {
		fmt.Fprintln(w)
		return false
	}
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		fmt.Fprintln(w)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
