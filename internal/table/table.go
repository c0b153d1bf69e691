package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	Missing Kind = iota
	Text
	Number
)

// Value is a single cell. The zero value is missing.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

func NA() Value { return Value{} }

func S(s string) Value { return Value{Kind: Text, Str: s} }

func N(f float64) Value { return Value{Kind: Number, Num: f} }

func (v Value) IsMissing() bool { return v.Kind == Missing }

// Equal reports whether two cells hold the same value. Missing cells
// never compare equal, not even to each other.
func (v Value) Equal(o Value) bool {
	if v.Kind == Missing || o.Kind == Missing || v.Kind != o.Kind {
		return false
	}
	if v.Kind == Number {
		return v.Num == o.Num
	}
	return v.Str == o.Str
}

func (v Value) String() string {
	switch v.Kind {
	case Text:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric content of the cell, NaN otherwise.
func (v Value) Float() float64 {
	if v.Kind == Number {
		return v.Num
	}
	return math.NaN()
}

// Key is a two-level column label.
type Key struct {
	Top string
	Sub string
}

// Flat joins both levels with a space unless they are identical.
func (k Key) Flat() string {
	if k.Top == k.Sub {
		return k.Top
	}
	return strings.TrimSpace(k.Top + " " + k.Sub)
}

// Table is a rectangular grid of cells. Index is nil until the table
// has been cleaned.
type Table struct {
	Columns []Key
	Rows    [][]Value
	Index   []time.Time
}

func New(cols []Key) *Table {
	return &Table{Columns: cols}
}

func (t *Table) NumRows() int { return len(t.Rows) }
func (t *Table) NumCols() int { return len(t.Columns) }

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]Key(nil), t.Columns...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = append([]Value(nil), r...)
	}
	if t.Index != nil {
		c.Index = append([]time.Time(nil), t.Index...)
	}
	return c
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(row []Value) {
	r := make([]Value, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

func (t *Table) FlatNames() []string {
	out := make([]string, len(t.Columns))
	for i, k := range t.Columns {
		out[i] = k.Flat()
	}
	return out
}

// ColumnsByTop returns the positions of every column whose top-level
// label equals name.
func (t *Table) ColumnsByTop(name string) []int {
	var out []int
	for i, k := range t.Columns {
		if k.Top == name {
			out = append(out, i)
		}
	}
	return out
}

// Lookup finds a column by flattened name, falling back to a unique
// top-level match.
func (t *Table) Lookup(name string) (int, bool) {
	for i, k := range t.Columns {
		if k.Flat() == name {
			return i, true
		}
	}
	if idx := t.ColumnsByTop(name); len(idx) == 1 {
		return idx[0], true
	}
	return -1, false
}

// Floats returns the column as float64 with NaN for non-numeric cells.
func (t *Table) Floats(col int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col].Float()
	}
	return out
}

// Filter keeps the rows for which keep returns true, along with their
// index entries.
func (t *Table) Filter(keep func(i int, row []Value) bool) {
	rows := t.Rows[:0]
	var index []time.Time
	for i, r := range t.Rows {
		if !keep(i, r) {
			continue
		}
		rows = append(rows, r)
		if t.Index != nil {
			index = append(index, t.Index[i])
		}
	}
	t.Rows = rows
	if t.Index != nil {
		t.Index = index
	}
}

// DropColumns removes every column for which drop returns true.
func (t *Table) DropColumns(drop func(col int) bool) {
	var keep []int
	for c := range t.Columns {
		if !drop(c) {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(t.Columns) {
		return
	}

	cols := make([]Key, len(keep))
	for i, c := range keep {
		cols[i] = t.Columns[c]
	}
	for ri, r := range t.Rows {
		nr := make([]Value, len(keep))
		for i, c := range keep {
			nr[i] = r[c]
		}
		t.Rows[ri] = nr
	}
	t.Columns = cols
}

// Subset returns a new table holding only the given rows, in order.
func (t *Table) Subset(rows []int) *Table {
	c := &Table{Columns: append([]Key(nil), t.Columns...)}
	for _, i := range rows {
		c.Rows = append(c.Rows, append([]Value(nil), t.Rows[i]...))
		if t.Index != nil {
			c.Index = append(c.Index, t.Index[i])
		}
	}
	return c
}
