package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrNoNumeric = errors.New("table has no numeric columns")

// Describe summarises every numeric column of t. Each column is described
// over its present cells only, so a column with gaps still gets a mean.
func Describe(t *table.Table) (dataframe.DataFrame, error) {
	var (
		out  dataframe.DataFrame
		have bool
		seen = map[string]int{}
	)

	for c, key := range t.Columns {
		var vs []float64
		for _, v := range t.Floats(c) {
			if !math.IsNaN(v) {
				vs = append(vs, v)
			}
		}
		if len(vs) == 0 {
			continue
		}

		name := key.Flat()
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		seen[key.Flat()]++

		d := dataframe.New(series.New(vs, series.Float, name)).Describe()
		if d.Err != nil {
			return d, fmt.Errorf("describe %s: %w", name, d.Err)
		}
		if !have {
			out, have = d, true
			continue
		}
		out = out.CBind(d.Select([]string{name}))
	}

	if !have {
		return out, ErrNoNumeric
	}
	return out, out.Err
}
