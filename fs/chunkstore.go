package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fwojciec/sitecontacts"
)

// Ensure ChunkStore implements sitecontacts.ChunkStore at compile time.
var _ sitecontacts.ChunkStore = (*ChunkStore)(nil)

const (
	chunkPrefix  = "chunk_"
	resultSuffix = "_contacts.csv"
)

// ChunkStore keeps chunk inputs and results as CSV files under a work
// directory:
//
//	output/chunks/chunk_001.csv
//	output/results/chunk_001_contacts.csv
type ChunkStore struct {
	baseDir string
}

// NewChunkStore creates a new ChunkStore rooted at baseDir.
func NewChunkStore(baseDir string) *ChunkStore {
	return &ChunkStore{baseDir: baseDir}
}

// InputPath returns the location of the input artifact of chunk id.
func (s *ChunkStore) InputPath(id int) string {
	return filepath.Join(s.baseDir, ChunksDir, fmt.Sprintf("chunk_%03d.csv", id))
}

// ResultPath returns the location of the result artifact of chunk id.
func (s *ChunkStore) ResultPath(id int) string {
	return filepath.Join(s.baseDir, ResultsDir, fmt.Sprintf("chunk_%03d_contacts.csv", id))
}

func (s *ChunkStore) WriteInput(ctx context.Context, id int, t *sitecontacts.Table) error {
	return s.write(ctx, s.InputPath(id), t)
}

func (s *ChunkStore) ReadInput(ctx context.Context, id int) (*sitecontacts.Table, error) {
	return s.read(ctx, s.InputPath(id), "chunk input", id)
}

func (s *ChunkStore) WriteResult(ctx context.Context, id int, t *sitecontacts.Table) error {
	return s.write(ctx, s.ResultPath(id), t)
}

func (s *ChunkStore) ReadResult(ctx context.Context, id int) (*sitecontacts.Table, error) {
	return s.read(ctx, s.ResultPath(id), "chunk result", id)
}

func (s *ChunkStore) ResultIDs(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.baseDir, ResultsDir))
	if isNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var ids []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := parseResultName(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *ChunkStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, dir := range []string{ChunksDir, ResultsDir} {
		if err := os.RemoveAll(filepath.Join(s.baseDir, dir)); err != nil {
			return sitecontacts.Errorf(sitecontacts.EINTERNAL, "reset %s: %v", dir, err)
		}
	}
	return nil
}

func (s *ChunkStore) write(ctx context.Context, path string, t *sitecontacts.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, t)
	}); err != nil {
		return sitecontacts.Errorf(sitecontacts.EINTERNAL, "write %s: %v", path, err)
	}
	return nil
}

func (s *ChunkStore) read(ctx context.Context, path, kind string, id int) (*sitecontacts.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if isNotExist(err) {
		return nil, sitecontacts.Errorf(sitecontacts.ENOTFOUND, "%s %d not found", kind, id)
	} else if err != nil {
		return nil, err
	}
	t, err := DecodeCSV(data)
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "%s %d: %s", kind, id, sitecontacts.ErrorMessage(err))
	}
	return t, nil
}

func parseResultName(name string) (int, bool) {
	if !strings.HasPrefix(name, chunkPrefix) || !strings.HasSuffix(name, resultSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, chunkPrefix), resultSuffix)
	id, err := strconv.Atoi(digits)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
