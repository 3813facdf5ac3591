package fs

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitecontacts"
)

// Ensure ProgressFile implements sitecontacts.ProgressFile at compile time.
var _ sitecontacts.ProgressFile = (*ProgressFile)(nil)

// ProgressFile stores the batch checkpoint as indented JSON.
type ProgressFile struct {
	path string
}

// NewProgressFile creates a ProgressFile at output/progress.json under baseDir.
func NewProgressFile(baseDir string) *ProgressFile {
	return &ProgressFile{path: filepath.Join(baseDir, OutputDir, ProgressFileName)}
}

// Path returns the location of the progress file.
func (f *ProgressFile) Path() string {
	return f.path
}

func (f *ProgressFile) Load(ctx context.Context) (*sitecontacts.ProgressState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if isNotExist(err) {
		return nil, sitecontacts.Errorf(sitecontacts.ENOTFOUND, "no progress saved at %s", f.path)
	} else if err != nil {
		return nil, err
	}
	var state sitecontacts.ProgressState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "parse progress: %v", err)
	}
	return &state, nil
}

func (f *ProgressFile) Save(ctx context.Context, state *sitecontacts.ProgressState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(f.path, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	}); err != nil {
		return sitecontacts.Errorf(sitecontacts.EINTERNAL, "save progress: %v", err)
	}
	return nil
}
