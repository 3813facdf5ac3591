package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecontacts"
)

// Orchestrator splits an input table into chunks, processes pending chunks
// and merges their results.
type Orchestrator struct {
	Chunks   sitecontacts.ChunkStore
	Progress *ProgressStore
	Scraper  sitecontacts.TableScraper

	// URLColumn names the column holding website URLs.
	URLColumn string

	// ChunkSize defaults to sitecontacts.DefaultChunkSize.
	ChunkSize int

	// OnChunkStart is called before a chunk is scraped. Optional.
	OnChunkStart func(id, rows int)

	// OnRow reports row progress within the current chunk. Optional.
	OnRow sitecontacts.ProgressFunc

	Logger *slog.Logger
}

// SetupResult describes a freshly split batch.
type SetupResult struct {
	Rows   int
	Chunks int
}

// Setup splits t into chunk input artifacts and writes an initial progress
// state, removing any previous artifacts. It returns ECONFLICT if a batch or
// result artifacts already exist unless force is set.
func (o *Orchestrator) Setup(ctx context.Context, t *sitecontacts.Table, inputFile, inputHash string, force bool) (*SetupResult, error) {
	if err := t.RequireColumns(o.URLColumn); err != nil {
		return nil, err
	}

	existing, err := o.Progress.Load(ctx)
	if err != nil {
		return nil, err
	}
	results, err := o.Chunks.ResultIDs(ctx)
	if err != nil {
		return nil, err
	}
	if !force && (existing.TotalChunks > 0 || len(results) > 0) {
		return nil, sitecontacts.Errorf(sitecontacts.ECONFLICT,
			"batch already initialized (%d chunks, %d results); use --force to start over",
			existing.TotalChunks, len(results))
	}
	if err := o.Chunks.Reset(ctx); err != nil {
		return nil, err
	}

	size := o.chunkSize()
	chunks, err := sitecontacts.SplitTable(t, size)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if err := o.Chunks.WriteInput(ctx, c.ID, c.Table); err != nil {
			return nil, err
		}
	}

	state := &sitecontacts.ProgressState{
		TotalChunks: len(chunks),
		ChunkSize:   size,
		InputFile:   inputFile,
		InputHash:   inputHash,
	}
	if err := o.Progress.Save(ctx, state); err != nil {
		return nil, err
	}

	loggerOrDiscard(o.Logger).Info("batch initialized",
		"rows", t.Len(),
		"chunks", len(chunks),
		"chunk_size", size,
	)
	return &SetupResult{Rows: t.Len(), Chunks: len(chunks)}, nil
}

func (o *Orchestrator) chunkSize() int {
	if o.ChunkSize <= 0 {
		return sitecontacts.DefaultChunkSize
	}
	return o.ChunkSize
}

// SelectPending returns up to n chunk IDs, ascending, whose result is not
// verified complete.
func (o *Orchestrator) SelectPending(ctx context.Context, state *sitecontacts.ProgressState, n int) []int {
	return sitecontacts.SelectPending(state.TotalChunks, n, func(id int) bool {
		return sitecontacts.IsVerified(ctx, o.Chunks, id)
	})
}

// ProcessReport summarizes one Process call.
type ProcessReport struct {
	Selected  []int
	Completed []int
	Failed    []int
	Rows      int
	State     *sitecontacts.ProgressState
}

// Process runs the next n pending chunks. Each finished chunk is written,
// re-verified, marked complete and checkpointed before the next one starts.
// Chunks whose input is missing or unusable are logged and skipped. On
// cancellation the current chunk is abandoned without writing its result
// and ctx.Err() is returned with the report so far.
func (o *Orchestrator) Process(ctx context.Context, n int) (*ProcessReport, error) {
	logger := loggerOrDiscard(o.Logger)

	state, err := o.Progress.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state.TotalChunks == 0 {
		return nil, sitecontacts.Errorf(sitecontacts.ENOTFOUND, "no batch initialized")
	}

	report := &ProcessReport{State: state}
	report.Selected = o.SelectPending(ctx, state, n)

	for i, id := range report.Selected {
		begin := time.Now()
		chunkLogger := logger.With("chunk", id, "position", i+1, "of", len(report.Selected))

		input, err := o.Chunks.ReadInput(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			chunkLogger.Error("cannot read chunk input", "err", err)
			report.Failed = append(report.Failed, id)
			continue
		}

		if o.OnChunkStart != nil {
			o.OnChunkStart(id, input.Len())
		}
		records, err := o.Scraper.ScrapeTable(ctx, input, o.URLColumn, o.OnRow)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				chunkLogger.Warn("chunk interrupted, result not written")
				return report, ctxErr
			}
			chunkLogger.Error("cannot scrape chunk", "err", err)
			report.Failed = append(report.Failed, id)
			continue
		}

		if err := o.Chunks.WriteResult(ctx, id, resultTable(input, records)); err != nil {
			return report, err
		}
		if !sitecontacts.IsVerified(ctx, o.Chunks, id) {
			chunkLogger.Warn("chunk result failed verification")
			report.Failed = append(report.Failed, id)
			continue
		}

		state.MarkCompleted(id)
		if state.Stats, err = o.Progress.RecomputeStats(ctx); err != nil {
			return report, err
		}
		if err := o.Progress.Save(ctx, state); err != nil {
			return report, err
		}

		report.Completed = append(report.Completed, id)
		report.Rows += input.Len()
		chunkLogger.Info("chunk completed",
			"rows", input.Len(),
			"duration", time.Since(begin),
		)
	}
	return report, nil
}

// Status returns the healed progress with stats recomputed from the
// artifacts, and saves it.
func (o *Orchestrator) Status(ctx context.Context) (*sitecontacts.ProgressState, error) {
	state, err := o.Progress.Load(ctx)
	if err != nil {
		return nil, err
	}
	if state.TotalChunks == 0 {
		return state, nil
	}
	if state.Stats, err = o.Progress.RecomputeStats(ctx); err != nil {
		return nil, err
	}
	if err := o.Progress.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// MergeReport summarizes a merge.
type MergeReport struct {
	Chunks  []int
	Skipped []int
	Rows    int
}

// ErrNothingToMerge is returned by Merge when no chunk is verified complete.
var ErrNothingToMerge = sitecontacts.Errorf(sitecontacts.ENOTFOUND, "no completed results to merge")

// Merge concatenates the verified results of chunks 1..TotalChunks in
// order and writes them with w.
func (o *Orchestrator) Merge(ctx context.Context, w sitecontacts.TableWriter) (*MergeReport, error) {
	logger := loggerOrDiscard(o.Logger)

	state, err := o.Progress.Load(ctx)
	if err != nil {
		return nil, err
	}

	report := &MergeReport{}
	var merged *sitecontacts.Table
	for id := 1; id <= state.TotalChunks; id++ {
		t, err := o.Chunks.ReadResult(ctx, id)
		if err != nil || t.Len() == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if sitecontacts.ErrorCode(err) != sitecontacts.ENOTFOUND {
				logger.Warn("skipping unusable result", "chunk", id, "err", err)
			}
			report.Skipped = append(report.Skipped, id)
			continue
		}
		if merged == nil {
			merged = sitecontacts.NewTable(t.Header)
		}
		merged.Append(t)
		report.Chunks = append(report.Chunks, id)
	}
	if merged == nil {
		return nil, ErrNothingToMerge
	}

	if err := w.WriteTable(ctx, merged); err != nil {
		return nil, err
	}
	report.Rows = merged.Len()
	logger.Info("results merged", "chunks", len(report.Chunks), "rows", report.Rows)
	return report, nil
}
