// Package fs provides file-based storage for chunk artifacts, progress and
// merged tables.
package fs

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Layout directories relative to the work directory.
const (
	InputDir   = "input"
	OutputDir  = "output"
	ChunksDir  = "output/chunks"
	ResultsDir = "output/results"
	FinalDir   = "output/final"

	ProgressFileName = "progress.json"
)

// utf8BOM is written by spreadsheet tools in front of CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// writeAtomic writes data to a temporary file next to dest and renames it
// into place, so readers only ever see the previous or the new content.
func writeAtomic(dest string, write func(w io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// Best effort: persist the rename on filesystems that need it.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
