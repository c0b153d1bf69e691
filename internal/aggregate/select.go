package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/table"
)

// Selection names the table data a summary is computed from: either a
// single column or the row-wise sum of several.
type Selection interface {
	Resolve(t *table.Table) ([]float64, error)
	Label() string
}

type SingleColumn struct {
	Name string
}

func (s SingleColumn) Resolve(t *table.Table) ([]float64, error) {
	c, ok := t.Lookup(s.Name)
	if !ok {
		return nil, fmt.Errorf("%w: no column %q", ErrPrecondition, s.Name)
	}
	return t.Floats(c), nil
}

func (s SingleColumn) Label() string { return s.Name }

// ColumnGroup sums its columns row by row, skipping missing cells. A row
// where every column is missing stays missing.
type ColumnGroup struct {
	Names []string
}

func (g ColumnGroup) Resolve(t *table.Table) ([]float64, error) {
	if len(g.Names) == 0 {
		return nil, fmt.Errorf("%w: empty column group", ErrPrecondition)
	}

	cols := make([]int, len(g.Names))
	for i, name := range g.Names {
		c, ok := t.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: no column %q", ErrPrecondition, name)
		}
		cols[i] = c
	}

	out := make([]float64, t.NumRows())
	for r := range t.Rows {
		sum, seen := 0.0, false
		for _, c := range cols {
			if v := t.Rows[r][c].Float(); !math.IsNaN(v) {
				sum += v
				seen = true
			}
		}
		if seen {
			out[r] = sum
		} else {
			out[r] = math.NaN()
		}
	}
	return out, nil
}

func (g ColumnGroup) Label() string { return strings.Join(g.Names, " + ") }

// NewSelection returns a SingleColumn for one name and a ColumnGroup
// otherwise.
func NewSelection(names ...string) Selection {
	if len(names) == 1 {
		return SingleColumn{Name: names[0]}
	}
	return ColumnGroup{Names: names}
}

// GroupBy returns the row positions for each distinct text value of the
// named column, with the keys in sorted order.
func GroupBy(t *table.Table, column string) ([]string, map[string][]int, error) {
	c, ok := t.Lookup(column)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no column %q", ErrPrecondition, column)
	}

	groups := map[string][]int{}
	for r, row := range t.Rows {
		if row[c].IsMissing() {
			continue
		}
		name := row[c].String()
		groups[name] = append(groups[name], r)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups, nil
}

// Observed drops the positions where values is NaN, returning the
// remaining values and their times.
func Observed(t *table.Table, values []float64) ([]float64, []time.Time) {
	var (
		vs []float64
		ts []time.Time
	)
	for i, v := range values {
		if math.IsNaN(v) || i >= len(t.Index) {
			continue
		}
		vs = append(vs, v)
		ts = append(ts, t.Index[i])
	}
	return vs, ts
}
