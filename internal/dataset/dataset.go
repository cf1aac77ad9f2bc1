// Package dataset provides the in-memory table passed between pipeline
// stages. A Dataset is an ordered set of uniquely named columns that share
// one row count. Datasets and columns are immutable: every operation returns
// a new value and leaves the receiver untouched.
package dataset

import (
	"fmt"
)

// Dataset is an immutable table of named, typed columns.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a dataset. Column names must be unique and every column
// must have the same length.
func New(cols ...*Column) (*Dataset, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	return newWithRows(rows, cols)
}

// NewWithRows is New with an explicit row count, so a table with no
// columns can still have rows.
func NewWithRows(rows int, cols ...*Column) (*Dataset, error) {
	return newWithRows(rows, cols)
}

// MustNew is New that panics on error; intended for fixtures.
func MustNew(cols ...*Column) *Dataset {
	d, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return d
}

func newWithRows(rows int, cols []*Column) (*Dataset, error) {
	d := &Dataset{cols: make([]*Column, len(cols)), index: make(map[string]int, len(cols)), rows: rows}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := d.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), rows)
		}
		d.index[c.Name()] = i
		d.cols[i] = c
	}
	return d, nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// NumCols returns the column count.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Shape returns [rows, columns].
func (d *Dataset) Shape() [2]int { return [2]int{d.rows, len(d.cols)} }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name()
	}
	return out
}

// Columns returns the columns in order. The slice is a copy; the columns
// themselves are immutable.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// ColumnAt returns the i-th column.
func (d *Dataset) ColumnAt(i int) *Column { return d.cols[i] }

// Index returns the position of the named column or -1.
func (d *Dataset) Index(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Row returns the cells of row i as float64, string or nil.
func (d *Dataset) Row(i int) []any {
	out := make([]any, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Value(i)
	}
	return out
}

// RowMap returns row i keyed by column name.
func (d *Dataset) RowMap(i int) map[string]any {
	out := make(map[string]any, len(d.cols))
	for _, c := range d.cols {
		out[c.Name()] = c.Value(i)
	}
	return out
}

// RowHasMissing reports whether any cell of row i is missing.
func (d *Dataset) RowHasMissing(i int) bool {
	for _, c := range d.cols {
		if c.Missing(i) {
			return true
		}
	}
	return false
}

// MissingCount returns the total number of missing cells.
func (d *Dataset) MissingCount() int {
	n := 0
	for _, c := range d.cols {
		n += c.MissingCount()
	}
	return n
}

// Take returns a dataset holding the given rows in the given order.
func (d *Dataset) Take(rows []int) *Dataset {
	cols := make([]*Column, len(d.cols))
	for j, c := range d.cols {
		cols[j] = c.take(rows)
	}
	out, _ := newWithRows(len(rows), cols)
	return out
}

// ReplaceColumn swaps the named column for col at the same position.
func (d *Dataset) ReplaceColumn(name string, col *Column) (*Dataset, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	cols := d.Columns()
	cols[i] = col
	return newWithRows(d.rows, cols)
}

// DropColumn removes the named column.
func (d *Dataset) DropColumn(name string) (*Dataset, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	cols := make([]*Column, 0, len(d.cols)-1)
	cols = append(cols, d.cols[:i]...)
	cols = append(cols, d.cols[i+1:]...)
	return newWithRows(d.rows, cols)
}

// AppendColumns adds columns after the existing ones.
func (d *Dataset) AppendColumns(cols ...*Column) (*Dataset, error) {
	all := make([]*Column, 0, len(d.cols)+len(cols))
	all = append(all, d.cols...)
	all = append(all, cols...)
	return newWithRows(d.rows, all)
}

// Equal reports whether both datasets have the same columns and cells.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.rows != o.rows || len(d.cols) != len(o.cols) {
		return false
	}
	for i := range d.cols {
		if !d.cols[i].Equal(o.cols[i]) {
			return false
		}
	}
	return true
}
