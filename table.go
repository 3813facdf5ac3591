package sitecontacts

import (
	"context"
	"slices"
	"strings"
)

// Table is a generic tabular record set: a header row plus string rows.
// Rows may be shorter than the header; missing cells read as "".
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable returns an empty table with a copy of header.
func NewTable(header []string) *Table {
	return &Table{Header: slices.Clone(header)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of the named column or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

// RequireColumns returns EINVALID naming the first missing column.
func (t *Table) RequireColumns(names ...string) error {
	for _, name := range names {
		if t.Column(name) < 0 {
			return Errorf(EINVALID, "missing required column %q (available: %s)", name, strings.Join(t.Header, ", "))
		}
	}
	return nil
}

// EnsureColumn appends the named column if absent and returns its index.
func (t *Table) EnsureColumn(name string) int {
	if i := t.Column(name); i >= 0 {
		return i
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// Value returns the cell at row for the named column.
func (t *Table) Value(row int, name string) string {
	i := t.Column(name)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// SetValue writes the cell at row for the named column, adding the column
// when needed.
func (t *Table) SetValue(row int, name, value string) {
	i := t.EnsureColumn(name)
	for len(t.Rows[row]) <= i {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][i] = value
}

// Slice returns rows [start, end) as a new table. Rows are copied.
func (t *Table) Slice(start, end int) *Table {
	out := NewTable(t.Header)
	out.Rows = make([][]string, 0, end-start)
	for _, row := range t.Rows[start:end] {
		out.Rows = append(out.Rows, slices.Clone(row))
	}
	return out
}

// Append adds the rows of other, aligning cells by column name. Columns
// unknown to t are added.
func (t *Table) Append(other *Table) {
	idx := make([]int, len(other.Header))
	for i, name := range other.Header {
		idx[i] = t.EnsureColumn(name)
	}
	for _, src := range other.Rows {
		row := make([]string, len(t.Header))
		for i, v := range src {
			if i < len(idx) {
				row[idx[i]] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
}

// TableReader reads a table from a named source.
type TableReader interface {
	// ReadTable returns ENOTFOUND if the source does not exist.
	ReadTable(ctx context.Context, path string) (*Table, error)
}

// TableWriter writes a complete table to its destination.
type TableWriter interface {
	WriteTable(ctx context.Context, t *Table) error
}
