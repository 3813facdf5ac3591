package fs

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"slices"

	"github.com/fwojciec/sitecontacts"
)

// Ensure CSV types implement the table interfaces at compile time.
var (
	_ sitecontacts.TableReader = (*CSVReader)(nil)
	_ sitecontacts.TableWriter = (*CSVWriter)(nil)
)

// DecodeCSV parses data with a header row. Ragged rows are accepted and a
// leading UTF-8 byte order mark is ignored.
func DecodeCSV(data []byte) (*sitecontacts.Table, error) {
	r := csv.NewReader(bytes.NewReader(stripBOM(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "parse csv: %v", err)
	}
	if len(records) == 0 {
		return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "csv has no header")
	}
	t := sitecontacts.NewTable(records[0])
	t.Rows = records[1:]
	return t, nil
}

// EncodeCSV writes the header and every row of t to w. Short rows are
// padded to the header width.
func EncodeCSV(w io.Writer, t *sitecontacts.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if len(row) < len(t.Header) {
			row = append(slices.Clone(row), make([]string, len(t.Header)-len(row))...)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVReader reads tables from CSV files.
type CSVReader struct{}

// NewCSVReader creates a new CSVReader.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

func (r *CSVReader) ReadTable(ctx context.Context, path string) (*sitecontacts.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if isNotExist(err) {
		return nil, sitecontacts.Errorf(sitecontacts.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return nil, err
	}
	return DecodeCSV(data)
}

// CSVWriter writes a table to a single CSV file atomically.
type CSVWriter struct {
	path string
	bom  bool
}

// CSVOption configures a CSVWriter.
type CSVOption func(*CSVWriter)

// WithBOM prefixes the file with a UTF-8 byte order mark so spreadsheet
// tools detect the encoding.
func WithBOM() CSVOption {
	return func(w *CSVWriter) {
		w.bom = true
	}
}

// NewCSVWriter creates a writer targeting path.
func NewCSVWriter(path string, opts ...CSVOption) *CSVWriter {
	w := &CSVWriter{path: path}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the destination file.
func (w *CSVWriter) Path() string {
	return w.path
}

func (w *CSVWriter) WriteTable(ctx context.Context, t *sitecontacts.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(w.path, func(out io.Writer) error {
		if w.bom {
			if _, err := out.Write(utf8BOM); err != nil {
				return err
			}
		}
		return EncodeCSV(out, t)
	})
}
