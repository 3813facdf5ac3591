// Package xlsx reads and writes tables as Excel workbooks.
package xlsx

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/sitecontacts"
	"github.com/xuri/excelize/v2"
)

// Ensure types implement the table interfaces at compile time.
var (
	_ sitecontacts.TableReader = (*Reader)(nil)
	_ sitecontacts.TableWriter = (*Writer)(nil)
)

// Reader reads the first sheet of a workbook.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadTable(ctx context.Context, path string) (*sitecontacts.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, sitecontacts.Errorf(sitecontacts.ENOTFOUND, "file not found: %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "open workbook %s: %v", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "read sheet %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "sheet %q has no header", sheets[0])
	}

	t := sitecontacts.NewTable(rows[0])
	t.Rows = rows[1:]
	return t, nil
}

// Writer writes a table to a single-sheet workbook.
type Writer struct {
	path  string
	sheet string
}

// NewWriter creates a Writer targeting path. The sheet is named "Contacts".
func NewWriter(path string) *Writer {
	return &Writer{path: path, sheet: "Contacts"}
}

// Path returns the destination file.
func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) WriteTable(ctx context.Context, t *sitecontacts.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return err
	}

	for c, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(w.sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(w.sheet, cell, v); err != nil {
				return err
			}
		}
	}
	for i := 1; i <= len(t.Header); i++ {
		col, err := excelize.ColumnNumberToName(i)
		if err != nil {
			return err
		}
		_ = f.SetColWidth(w.sheet, col, col, 24)
	}
	if err := f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(w.path), ".tmp-"+filepath.Base(w.path))
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return sitecontacts.Errorf(sitecontacts.EINTERNAL, "save workbook: %v", err)
	}
	return os.Rename(tmp, w.path)
}
