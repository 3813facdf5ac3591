package batch

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/fwojciec/sitecontacts"
)

// Ensure ProgressStore implements sitecontacts.ProgressFile at compile time.
var _ sitecontacts.ProgressFile = (*ProgressStore)(nil)

// ProgressStore wraps a raw ProgressFile and keeps it consistent with the
// result artifacts of Chunks.
type ProgressStore struct {
	File   sitecontacts.ProgressFile
	Chunks sitecontacts.ChunkStore

	// Now stamps LastRun on save. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// NewProgressStore creates a new ProgressStore.
func NewProgressStore(file sitecontacts.ProgressFile, chunks sitecontacts.ChunkStore) *ProgressStore {
	return &ProgressStore{File: file, Chunks: chunks}
}

// Load returns the persisted state healed against the artifacts. A missing
// or unreadable file yields a zero state. The completed set is rebuilt as
// every chunk in 1..TotalChunks whose result is verified complete; when that
// changes anything, stats are recomputed and the healed state is saved.
func (s *ProgressStore) Load(ctx context.Context) (*sitecontacts.ProgressState, error) {
	logger := loggerOrDiscard(s.Logger)

	state, err := s.File.Load(ctx)
	switch sitecontacts.ErrorCode(err) {
	case "":
	case sitecontacts.ENOTFOUND:
		return &sitecontacts.ProgressState{ChunkSize: sitecontacts.DefaultChunkSize}, nil
	case sitecontacts.EINVALID:
		logger.Warn("progress file unreadable, starting from zero", "err", err)
		return &sitecontacts.ProgressState{ChunkSize: sitecontacts.DefaultChunkSize}, nil
	default:
		return nil, err
	}

	healed, err := s.heal(ctx, state)
	if err != nil {
		return nil, err
	}
	if !healed {
		return state, nil
	}

	if state.Stats, err = s.RecomputeStats(ctx); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *ProgressStore) heal(ctx context.Context, state *sitecontacts.ProgressState) (bool, error) {
	logger := loggerOrDiscard(s.Logger)

	var completed []int
	for id := 1; id <= state.TotalChunks; id++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if sitecontacts.IsVerified(ctx, s.Chunks, id) {
			completed = append(completed, id)
		}
	}

	if slices.Equal(completed, state.CompletedChunks) {
		return false, nil
	}
	logger.Debug("healed progress",
		"recorded", len(state.CompletedChunks),
		"verified", len(completed),
	)
	state.CompletedChunks = completed
	return true, nil
}

// Save stamps LastRun with the local time and persists state.
func (s *ProgressStore) Save(ctx context.Context, state *sitecontacts.ProgressState) error {
	state.LastRun = nowOrDefault(s.Now).Format(sitecontacts.LastRunLayout)
	if state.CompletedChunks == nil {
		state.CompletedChunks = []int{}
	}
	return s.File.Save(ctx, state)
}

// RecomputeStats aggregates every result artifact. Artifacts that cannot be
// read are logged and skipped.
func (s *ProgressStore) RecomputeStats(ctx context.Context) (sitecontacts.Stats, error) {
	logger := loggerOrDiscard(s.Logger)

	var stats sitecontacts.Stats
	ids, err := s.Chunks.ResultIDs(ctx)
	if err != nil {
		return stats, err
	}
	for _, id := range ids {
		t, err := s.Chunks.ReadResult(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			logger.Warn("skipping unreadable result", "chunk", id, "err", err)
			continue
		}
		stats.AddTable(t)
	}
	return stats, nil
}
