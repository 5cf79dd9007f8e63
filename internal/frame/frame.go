// Package frame implements a small row-oriented table with named columns and
// null-aware cells. It is the working representation for every checkpoint
// between the extractor and the classifier: extracted fields, the joined raw
// set, and the encoded feature set.
package frame

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Cell is one table value. A Cell with Valid=false is null.
type Cell struct {
	Str   string
	Valid bool
}

// Null returns a null cell.
func Null() Cell { return Cell{} }

// String returns a valid cell holding s.
func String(s string) Cell { return Cell{Str: s, Valid: true} }

// Float returns a valid cell holding the canonical formatting of f.
func Float(f float64) Cell {
	return Cell{Str: strconv.FormatFloat(f, 'g', -1, 64), Valid: true}
}

// Bool returns a valid cell holding "true" or "false".
func Bool(b bool) Cell {
	return Cell{Str: strconv.FormatBool(b), Valid: true}
}

// AsFloat parses the cell as a float64. Returns false for null or
// unparseable cells.
func (c Cell) AsFloat() (float64, bool) {
	if !c.Valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsBool parses the cell as a boolean, accepting true/false and 1/0.
func (c Cell) AsBool() (bool, bool) {
	if !c.Valid {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(c.Str)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// Table is a row-oriented table with an ordered set of named columns.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Cell
}

// New creates an empty table with the given column order.
func New(cols []string) *Table {
	t := &Table{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range t.cols {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in order. Callers must not mutate.
func (t *Table) Columns() []string { return t.cols }

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow appends a row. The row length must match the column count.
func (t *Table) AppendRow(cells []Cell) error {
	if len(cells) != len(t.cols) {
		return eris.Errorf("frame: row has %d cells, table has %d columns", len(cells), len(t.cols))
	}
	t.rows = append(t.rows, cells)
	return nil
}

// AppendRecord appends a row built from a field map. Missing fields are null;
// fields not in the schema are ignored.
func (t *Table) AppendRecord(rec map[string]string) {
	row := make([]Cell, len(t.cols))
	for i, col := range t.cols {
		if v, ok := rec[col]; ok {
			row[i] = String(v)
		}
	}
	t.rows = append(t.rows, row)
}

// Get returns the cell at (row, column). Null for unknown columns.
func (t *Table) Get(row int, col string) Cell {
	i, ok := t.index[col]
	if !ok {
		return Null()
	}
	return t.rows[row][i]
}

// Set overwrites the cell at (row, column).
func (t *Table) Set(row int, col string, c Cell) error {
	i, ok := t.index[col]
	if !ok {
		return eris.Errorf("frame: unknown column %q", col)
	}
	t.rows[row][i] = c
	return nil
}

// AddColumn appends a new column filled with the given cells. The cell slice
// must match the row count; nil fills the column with nulls.
func (t *Table) AddColumn(name string, cells []Cell) error {
	if t.HasColumn(name) {
		return eris.Errorf("frame: column %q already exists", name)
	}
	if cells != nil && len(cells) != len(t.rows) {
		return eris.Errorf("frame: column %q has %d cells, table has %d rows", name, len(cells), len(t.rows))
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for i := range t.rows {
		c := Null()
		if cells != nil {
			c = cells[i]
		}
		t.rows[i] = append(t.rows[i], c)
	}
	return nil
}

// DropColumns removes the named columns. Unknown names are ignored; the
// feature stage validates its drop-lists before calling this.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var kept []string
	keptIdx := make([]int, 0, len(t.cols))
	for i, c := range t.cols {
		if !drop[c] {
			kept = append(kept, c)
			keptIdx = append(keptIdx, i)
		}
	}
	for r, row := range t.rows {
		newRow := make([]Cell, len(keptIdx))
		for j, i := range keptIdx {
			newRow[j] = row[i]
		}
		t.rows[r] = newRow
	}
	t.cols = kept
	t.index = make(map[string]int, len(kept))
	for i, c := range kept {
		t.index[c] = i
	}
}

// FilterRows keeps only rows for which keep returns true.
func (t *Table) FilterRows(keep func(row int) bool) {
	out := t.rows[:0]
	for i := range t.rows {
		if keep(i) {
			out = append(out, t.rows[i])
		}
	}
	t.rows = out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := New(t.cols)
	c.rows = make([][]Cell, len(t.rows))
	for i, row := range t.rows {
		c.rows[i] = append([]Cell(nil), row...)
	}
	return c
}

// IsAllNull reports whether every cell in the column is null. Unknown
// columns report true.
func (t *Table) IsAllNull(col string) bool {
	i, ok := t.index[col]
	if !ok {
		return true
	}
	for _, row := range t.rows {
		if row[i].Valid {
			return false
		}
	}
	return true
}

// IsNumeric reports whether every non-null cell in the column parses as a
// float and at least one non-null cell exists.
func (t *Table) IsNumeric(col string) bool {
	i, ok := t.index[col]
	if !ok {
		return false
	}
	seen := false
	for _, row := range t.rows {
		if !row[i].Valid {
			continue
		}
		if _, ok := row[i].AsFloat(); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// Median returns the median over the column's parseable non-null values.
// For an even count it returns the mean of the two middle values.
func (t *Table) Median(col string) (float64, bool) {
	i, ok := t.index[col]
	if !ok {
		return 0, false
	}
	var vals []float64
	for _, row := range t.rows {
		if f, ok := row[i].AsFloat(); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}

// KeyCounts returns the number of occurrences of each non-null value in the
// column. Used for duplicate-key detection before joining.
func (t *Table) KeyCounts(col string) map[string]int {
	counts := make(map[string]int)
	i, ok := t.index[col]
	if !ok {
		return counts
	}
	for _, row := range t.rows {
		if row[i].Valid {
			counts[row[i].Str]++
		}
	}
	return counts
}

// LeftJoin joins t with right on the key column. Output columns are t's
// columns followed by rightCols (which must exist in right). Left rows
// without a match keep nulls in the right columns. Right must be unique on
// the key; the first match wins otherwise.
func (t *Table) LeftJoin(right *Table, key string, rightCols []string) (*Table, error) {
	if !t.HasColumn(key) {
		return nil, eris.Errorf("frame: join key %q missing from left table", key)
	}
	if !right.HasColumn(key) {
		return nil, eris.Errorf("frame: join key %q missing from right table", key)
	}
	for _, c := range rightCols {
		if !right.HasColumn(c) {
			return nil, eris.Errorf("frame: join column %q missing from right table", c)
		}
		if t.HasColumn(c) {
			return nil, eris.Errorf("frame: join column %q already present in left table", c)
		}
	}

	byKey := make(map[string]int, right.NumRows())
	for i := 0; i < right.NumRows(); i++ {
		c := right.Get(i, key)
		if !c.Valid {
			continue
		}
		if _, dup := byKey[c.Str]; !dup {
			byKey[c.Str] = i
		}
	}

	out := New(append(append([]string(nil), t.cols...), rightCols...))
	for i := 0; i < t.NumRows(); i++ {
		row := make([]Cell, 0, len(out.cols))
		row = append(row, t.rows[i]...)
		keyCell := t.Get(i, key)
		if ri, ok := byKey[keyCell.Str]; keyCell.Valid && ok {
			for _, c := range rightCols {
				row = append(row, right.Get(ri, c))
			}
		} else {
			for range rightCols {
				row = append(row, Null())
			}
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
