package mock

import (
	"context"

	"github.com/fwojciec/sitecontacts"
)

var _ sitecontacts.TableReader = (*TableReader)(nil)

// TableReader is a mock implementation of sitecontacts.TableReader.
type TableReader struct {
	ReadTableFn func(ctx context.Context, path string) (*sitecontacts.Table, error)
}

func (r *TableReader) ReadTable(ctx context.Context, path string) (*sitecontacts.Table, error) {
	return r.ReadTableFn(ctx, path)
}

var _ sitecontacts.TableWriter = (*TableWriter)(nil)

// TableWriter is a mock implementation of sitecontacts.TableWriter.
type TableWriter struct {
	WriteTableFn func(ctx context.Context, t *sitecontacts.Table) error
}

func (w *TableWriter) WriteTable(ctx context.Context, t *sitecontacts.Table) error {
	return w.WriteTableFn(ctx, t)
}
