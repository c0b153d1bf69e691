// Package clean turns a freshly extracted poll table into a date indexed
// table with numeric vote columns.
package clean

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/diag"
	"github.com/brogergvhs/pollsmooth/internal/table"
)

var ErrPrecondition = errors.New("clean precondition failed")

const DefaultDateColumn = "Date(s)"

var trailingFootnote = regexp.MustCompile(`\[.*\]$`)

// numericNoise is removed, in order, from every cell of a schema column.
var numericNoise = []string{"%", "~", hyphen, endash, emdash, minus, "n/a", "?", "<"}

type Options struct {
	Schema       Schema
	DateColumn   string
	BrandColumns []string
}

// DefaultOptions are the settings for Wikipedia's Australian poll tables.
func DefaultOptions() Options {
	return Options{
		Schema:       DefaultSchema(),
		DateColumn:   DefaultDateColumn,
		BrandColumns: []string{"Brand", "Firm"},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Schema == nil {
		o.Schema = def.Schema
	}
	if o.DateColumn == "" {
		o.DateColumn = def.DateColumn
	}
	if o.BrandColumns == nil {
		o.BrandColumns = def.BrandColumns
	}
	return o
}

// Clean runs the full pipeline on a copy of raw. The input table is
// never modified. Data quality problems are recorded in log.
func Clean(raw *table.Table, opts Options, log *diag.Log) (*table.Table, error) {
	opts = opts.withDefaults()
	t := raw.Clone()

	if err := RemoveEventRows(t); err != nil {
		return nil, err
	}
	DropEmpty(t)
	if err := CoerceNumeric(t, opts.Schema); err != nil {
		return nil, err
	}
	FixColumnNames(t)
	if err := RemoveFootnotes(t, opts.BrandColumns); err != nil {
		return nil, err
	}
	if err := MiddleDate(t, opts.DateColumn, log); err != nil {
		return nil, err
	}
	SortByIndex(t)

	return t, nil
}

// RemoveEventRows drops the rows that mark events rather than polls.
// Those rows repeat one piece of text across the first columns, or
// leave the second column empty.
func RemoveEventRows(t *table.Table) error {
	if t.NumCols() < 3 {
		return fmt.Errorf("%w: need at least 3 columns to find event rows, got %d", ErrPrecondition, t.NumCols())
	}

	t.Filter(func(_ int, row []table.Value) bool {
		if row[0].Equal(row[1]) || row[1].Equal(row[2]) {
			return false
		}
		return !row[1].IsMissing()
	})
	return nil
}

// DropEmpty removes rows, then columns, that hold no values at all.
func DropEmpty(t *table.Table) {
	t.Filter(func(_ int, row []table.Value) bool {
		for _, v := range row {
			if !v.IsMissing() {
				return true
			}
		}
		return false
	})

	t.DropColumns(func(c int) bool {
		for _, r := range t.Rows {
			if !r[c].IsMissing() {
				return false
			}
		}
		return true
	})
}

// CoerceNumeric converts the text cells of every schema column to
// numbers. Cells that are empty once the noise is stripped become
// missing.
func CoerceNumeric(t *table.Table, schema Schema) error {
	for c, key := range t.Columns {
		rule, ok := schema[key.Top]
		if !ok {
			continue
		}

		for r, row := range t.Rows {
			v := row[c]
			if v.Kind != table.Text {
				continue
			}

			n, ok, err := parseNumeric(v.Str, rule)
			if err != nil {
				return fmt.Errorf("%w: row %d column %q: %v", ErrPrecondition, r, key.Flat(), err)
			}
			if ok {
				t.Rows[r][c] = table.N(n)
			} else {
				t.Rows[r][c] = table.NA()
			}
		}
	}
	return nil
}

func parseNumeric(s string, rule Rule) (float64, bool, error) {
	s = trailingFootnote.ReplaceAllString(s, "")
	for _, noise := range numericNoise {
		s = strings.ReplaceAll(s, noise, "")
	}
	for _, extra := range rule.Strip {
		s = strings.ReplaceAll(s, extra, "")
	}
	if rule.Thousands {
		s = strings.ReplaceAll(s, ",", "")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("cannot parse %q as a number", s)
	}
	return n, true, nil
}

// FixColumnNames blanks the auto-generated sub-labels of columns that
// had no header text.
func FixColumnNames(t *table.Table) {
	for i, k := range t.Columns {
		if strings.Contains(k.Sub, "Unnamed") {
			t.Columns[i].Sub = ""
		}
	}
}

// RemoveFootnotes strips trailing reference markers such as "[12]" from
// the pollster name columns.
func RemoveFootnotes(t *table.Table, brands []string) error {
	for _, brand := range brands {
		cols := t.ColumnsByTop(brand)
		if len(cols) == 0 {
			continue
		}
		if len(cols) > 1 {
			return fmt.Errorf("%w: %d columns named %q", ErrPrecondition, len(cols), brand)
		}

		c := cols[0]
		for r, row := range t.Rows {
			if row[c].Kind != table.Text {
				continue
			}
			s := trailingFootnote.ReplaceAllString(row[c].Str, "")
			t.Rows[r][c] = table.S(strings.TrimSpace(s))
		}
	}
	return nil
}

// MiddleDate sets the table index to the mean date of each row's date
// range. Rows whose dates cannot be resolved are dropped with a
// warning.
func MiddleDate(t *table.Table, column string, log *diag.Log) error {
	cols := t.ColumnsByTop(column)
	if len(cols) == 0 {
		return fmt.Errorf("%w: no %q column", ErrPrecondition, column)
	}
	c := cols[0]

	index := make([]time.Time, t.NumRows())
	valid := make([]bool, t.NumRows())
	for r, row := range t.Rows {
		v := row[c]
		if v.IsMissing() {
			log.Warnf("row %d has no date, dropped", r)
			continue
		}

		mean, err := MeanDate(TokeniseDate(v.String()), log)
		if err != nil {
			log.Warnf("row %d dropped: %v", r, err)
			continue
		}
		index[r] = mean
		valid[r] = true
	}

	t.Index = index
	t.Filter(func(i int, _ []table.Value) bool { return valid[i] })
	if t.Index == nil {
		t.Index = []time.Time{}
	}
	return nil
}

// SortByIndex orders rows by their index. Rows sharing a date keep their
// relative order.
func SortByIndex(t *table.Table) {
	if t.NumRows() < 2 || len(t.Index) != t.NumRows() {
		return
	}

	order := make([]int, t.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.Index[order[a]].Before(t.Index[order[b]])
	})

	sorted := t.Subset(order)
	t.Rows = sorted.Rows
	t.Index = sorted.Index
}
