package sitecontacts

import "context"

// DefaultChunkSize is the number of input rows per chunk.
const DefaultChunkSize = 50

// Chunk is a contiguous, 1-indexed slice of the input table covering rows
// [Start, End).
type Chunk struct {
	ID    int
	Start int
	End   int
	Table *Table
}

// ChunkCount returns ceil(rows/size).
func ChunkCount(rows, size int) int {
	if rows <= 0 || size <= 0 {
		return 0
	}
	return (rows + size - 1) / size
}

// SplitTable partitions t into consecutive chunks of at most size rows.
// The chunks cover every row exactly once; only the last may be shorter.
func SplitTable(t *Table, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, Errorf(EINVALID, "chunk size must be positive, got %d", size)
	}
	n := ChunkCount(t.Len(), size)
	chunks := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := min(start+size, t.Len())
		chunks = append(chunks, Chunk{
			ID:    i + 1,
			Start: start,
			End:   end,
			Table: t.Slice(start, end),
		})
	}
	return chunks, nil
}

// SelectPending scans chunk IDs 1..total in ascending order and returns the
// first n for which verified reports false.
func SelectPending(total, n int, verified func(id int) bool) []int {
	var ids []int
	for id := 1; id <= total && len(ids) < n; id++ {
		if !verified(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ChunkStore persists chunk input and result artifacts.
type ChunkStore interface {
	// WriteInput stores the input rows of a chunk.
	WriteInput(ctx context.Context, id int, t *Table) error

	// ReadInput returns ENOTFOUND if the chunk input does not exist.
	ReadInput(ctx context.Context, id int) (*Table, error)

	// WriteResult atomically replaces the result artifact of a chunk.
	WriteResult(ctx context.Context, id int, t *Table) error

	// ReadResult returns ENOTFOUND if the result artifact does not exist
	// and EINVALID if it cannot be parsed.
	ReadResult(ctx context.Context, id int) (*Table, error)

	// ResultIDs lists chunk IDs with a result artifact, ascending.
	ResultIDs(ctx context.Context) ([]int, error)

	// Reset removes every chunk input and result artifact.
	Reset(ctx context.Context) error
}

// IsVerified reports whether the result artifact of chunk id exists, parses
// and has at least one data row.
func IsVerified(ctx context.Context, store ChunkStore, id int) bool {
	t, err := store.ReadResult(ctx, id)
	return err == nil && t.Len() > 0
}
