package batch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/crawl"
)

// DefaultRetryDelay separates consecutive retries.
const DefaultRetryDelay = 2 * time.Second

// RetryCandidate is a result row whose site could not be reached.
type RetryCandidate struct {
	ChunkID int
	Row     int
	URL     string
}

// RetryReport summarizes a retry pass.
type RetryReport struct {
	Candidates  int
	Confirmed   bool
	Recovered   int
	StillFailed int
}

// Retrier re-scrapes rows that ended in ConnectionFailed and patches the
// ones that now succeed.
type Retrier struct {
	Chunks   sitecontacts.ChunkStore
	Progress *ProgressStore
	Scraper  sitecontacts.SiteScraper

	URLColumn string

	// Delay separates retries. Defaults to DefaultRetryDelay; negative
	// disables it.
	Delay time.Duration

	// Confirm is asked once with the number of candidates. A nil Confirm
	// proceeds.
	Confirm func(count int) bool

	// OnRetry is called before each retry. Optional.
	OnRetry func(i, total int, c RetryCandidate)

	Logger *slog.Logger
}

// Scan lists every ConnectionFailed row of every readable result artifact,
// in chunk and row order.
func (r *Retrier) Scan(ctx context.Context) ([]RetryCandidate, error) {
	logger := loggerOrDiscard(r.Logger)

	ids, err := r.Chunks.ResultIDs(ctx)
	if err != nil {
		return nil, err
	}
	var out []RetryCandidate
	for _, id := range ids {
		t, err := r.Chunks.ReadResult(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("skipping unreadable result", "chunk", id, "err", err)
			continue
		}
		for row := range t.Rows {
			if sitecontacts.ScrapingResult(t.Value(row, sitecontacts.ColumnScrapingResult)) != sitecontacts.ResultConnectionFailed {
				continue
			}
			out = append(out, RetryCandidate{
				ChunkID: id,
				Row:     row,
				URL:     strings.TrimSpace(t.Value(row, r.URLColumn)),
			})
		}
	}
	return out, nil
}

// Retry scans, asks for confirmation and retries every candidate. Rows that
// now succeed have their output columns replaced and their artifact
// rewritten immediately. Stats are recomputed and progress saved when
// anything was recovered.
func (r *Retrier) Retry(ctx context.Context) (*RetryReport, error) {
	logger := loggerOrDiscard(r.Logger)

	candidates, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	report := &RetryReport{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return report, nil
	}
	if r.Confirm != nil && !r.Confirm(len(candidates)) {
		return report, nil
	}
	report.Confirmed = true

	var (
		tables = make(map[int]*sitecontacts.Table)
		runErr error
	)
	for i, c := range candidates {
		if i > 0 {
			if runErr = sleep(ctx, r.delay()); runErr != nil {
				break
			}
		}
		if r.OnRetry != nil {
			r.OnRetry(i+1, len(candidates), c)
		}

		t, ok := tables[c.ChunkID]
		if !ok {
			if t, runErr = r.Chunks.ReadResult(ctx, c.ChunkID); runErr != nil {
				break
			}
			tables[c.ChunkID] = t
		}

		res := r.Scraper.Scrape(ctx, c.URL)
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		if res.Result != sitecontacts.ResultSuccess {
			report.StillFailed++
			logger.Info("retry still failing", "chunk", c.ChunkID, "url", c.URL, "result", string(res.Result))
			continue
		}

		rec := crawl.BuildRecord(c.Row, c.URL, res)
		rec.ApplyTo(t, c.Row)
		if runErr = r.Chunks.WriteResult(ctx, c.ChunkID, t); runErr != nil {
			break
		}
		report.Recovered++
		logger.Info("retry recovered", "chunk", c.ChunkID, "url", c.URL,
			"emails", len(rec.Emails), "phones", len(rec.Phones))
	}

	if report.Recovered > 0 {
		saveCtx := context.WithoutCancel(ctx)
		state, err := r.Progress.Load(saveCtx)
		if err != nil {
			return report, err
		}
		if state.Stats, err = r.Progress.RecomputeStats(saveCtx); err != nil {
			return report, err
		}
		if err := r.Progress.Save(saveCtx, state); err != nil {
			return report, err
		}
	}
	return report, runErr
}

func (r *Retrier) delay() time.Duration {
	switch {
	case r.Delay < 0:
		return 0
	case r.Delay == 0:
		return DefaultRetryDelay
	default:
		return r.Delay
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
