package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecontacts"
)

// Ensure LoggingChunkStore implements sitecontacts.ChunkStore.
var _ sitecontacts.ChunkStore = (*LoggingChunkStore)(nil)

// LoggingChunkStore logs artifact writes at info level and reads at debug
// level.
type LoggingChunkStore struct {
	next   sitecontacts.ChunkStore
	logger *slog.Logger
}

// NewLoggingChunkStore creates a new LoggingChunkStore.
func NewLoggingChunkStore(next sitecontacts.ChunkStore, logger *slog.Logger) *LoggingChunkStore {
	return &LoggingChunkStore{next: next, logger: logger}
}

func (s *LoggingChunkStore) WriteInput(ctx context.Context, id int, t *sitecontacts.Table) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("write chunk input",
			"chunk", id,
			"rows", t.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WriteInput(ctx, id, t)
}

func (s *LoggingChunkStore) ReadInput(ctx context.Context, id int) (t *sitecontacts.Table, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("read chunk input",
			"chunk", id,
			"rows", t.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ReadInput(ctx, id)
}

func (s *LoggingChunkStore) WriteResult(ctx context.Context, id int, t *sitecontacts.Table) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("write chunk result",
			"chunk", id,
			"rows", t.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WriteResult(ctx, id, t)
}

func (s *LoggingChunkStore) ReadResult(ctx context.Context, id int) (t *sitecontacts.Table, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("read chunk result",
			"chunk", id,
			"rows", t.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ReadResult(ctx, id)
}

func (s *LoggingChunkStore) ResultIDs(ctx context.Context) ([]int, error) {
	return s.next.ResultIDs(ctx)
}

func (s *LoggingChunkStore) Reset(ctx context.Context) (err error) {
	defer func() {
		s.logger.Info("reset chunk artifacts", "err", err)
	}()
	return s.next.Reset(ctx)
}
