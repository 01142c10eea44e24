package frame

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
)

// Frame is a column-labeled table of raw string cells, the handoff shape
// between flat-file input and typed transaction records.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// New builds a frame, rejecting rows whose width disagrees with the header.
func New(columns []string, rows [][]string) (*Frame, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, pkgerrors.New(pkgerrors.CodeSchema,
				fmt.Sprintf("row %d has %d cells, header has %d columns", i, len(row), len(columns)))
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// ColumnIndex returns the position of the named column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, col := range f.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// DropColumns returns a new frame without the named columns. The check is
// strict: any absent name fails with a schema error listing what was missing.
func (f *Frame) DropColumns(names ...string) (*Frame, error) {
	drop := make(map[int]bool, len(names))
	var missing []string
	for _, name := range names {
		idx, ok := f.ColumnIndex(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		drop[idx] = true
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeSchema, "cannot drop absent columns").
			WithDetails(map[string]any{"missing_columns": missing})
	}

	columns := make([]string, 0, len(f.Columns)-len(drop))
	for i, col := range f.Columns {
		if !drop[i] {
			columns = append(columns, col)
		}
	}
	rows := make([][]string, len(f.Rows))
	for r, row := range f.Rows {
		kept := make([]string, 0, len(columns))
		for i, cell := range row {
			if !drop[i] {
				kept = append(kept, cell)
			}
		}
		rows[r] = kept
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}
