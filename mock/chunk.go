package mock

import (
	"context"

	"github.com/fwojciec/sitecontacts"
)

var _ sitecontacts.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is a mock implementation of sitecontacts.ChunkStore.
type ChunkStore struct {
	WriteInputFn  func(ctx context.Context, id int, t *sitecontacts.Table) error
	ReadInputFn   func(ctx context.Context, id int) (*sitecontacts.Table, error)
	WriteResultFn func(ctx context.Context, id int, t *sitecontacts.Table) error
	ReadResultFn  func(ctx context.Context, id int) (*sitecontacts.Table, error)
	ResultIDsFn   func(ctx context.Context) ([]int, error)
	ResetFn       func(ctx context.Context) error
}

func (s *ChunkStore) WriteInput(ctx context.Context, id int, t *sitecontacts.Table) error {
	return s.WriteInputFn(ctx, id, t)
}

func (s *ChunkStore) ReadInput(ctx context.Context, id int) (*sitecontacts.Table, error) {
	return s.ReadInputFn(ctx, id)
}

func (s *ChunkStore) WriteResult(ctx context.Context, id int, t *sitecontacts.Table) error {
	return s.WriteResultFn(ctx, id, t)
}

func (s *ChunkStore) ReadResult(ctx context.Context, id int) (*sitecontacts.Table, error) {
	return s.ReadResultFn(ctx, id)
}

func (s *ChunkStore) ResultIDs(ctx context.Context) ([]int, error) {
	return s.ResultIDsFn(ctx)
}

func (s *ChunkStore) Reset(ctx context.Context) error {
	return s.ResetFn(ctx)
}

var _ sitecontacts.ProgressFile = (*ProgressFile)(nil)

// ProgressFile is a mock implementation of sitecontacts.ProgressFile.
type ProgressFile struct {
	LoadFn func(ctx context.Context) (*sitecontacts.ProgressState, error)
	SaveFn func(ctx context.Context, state *sitecontacts.ProgressState) error
}

func (f *ProgressFile) Load(ctx context.Context) (*sitecontacts.ProgressState, error) {
	return f.LoadFn(ctx)
}

func (f *ProgressFile) Save(ctx context.Context, state *sitecontacts.ProgressState) error {
	return f.SaveFn(ctx, state)
}
