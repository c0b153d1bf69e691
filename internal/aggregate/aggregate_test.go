package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

func days(offsets ...int) []time.Time {
	out := make([]time.Time, len(offsets))
	for i, d := range offsets {
		out[i] = epoch.AddDate(0, 0, d)
	}
	return out
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestEWMConstant(t *testing.T) {
	times := days(0, 3, 4, 10, 30)
	got, err := EWM([]float64{42, 42, 42, 42, 42}, times, 7*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 5, got.Len())
	for _, v := range got.Values {
		assert.InDelta(t, 42, v, 1e-12)
	}
	assert.Equal(t, times, got.Index)
}

func TestEWMWeightsByElapsedTime(t *testing.T) {
	h := 10 * 24 * time.Hour
	got, err := EWM([]float64{0, 10}, days(0, 10), h)
	require.NoError(t, err)
	assert.InDelta(t, 0, got.Values[0], 1e-12)
	// earlier point is one halflife old: (0*0.5 + 10) / (0.5 + 1)
	assert.InDelta(t, 10/1.5, got.Values[1], 1e-12)

	// same-day observations weigh equally
	got, err = EWM([]float64{0, 10}, days(0, 0), h)
	require.NoError(t, err)
	assert.InDelta(t, 5, got.Values[1], 1e-12)
}

func TestEWMPreconditions(t *testing.T) {
	h := 24 * time.Hour
	tests := map[string]func() error{
		"length": func() error {
			_, err := EWM([]float64{1, 2}, days(0), h)
			return err
		},
		"nan": func() error {
			_, err := EWM([]float64{1, math.NaN()}, days(0, 1), h)
			return err
		},
		"unsorted": func() error {
			_, err := EWM([]float64{1, 2}, days(1, 0), h)
			return err
		},
		"zero time": func() error {
			_, err := EWM([]float64{1, 2}, []time.Time{epoch, {}}, h)
			return err
		},
		"halflife": func() error {
			_, err := EWM([]float64{1}, days(0), 0)
			return err
		},
	}

	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, fn(), ErrPrecondition)
		})
	}
}

func TestLowessReproducesLine(t *testing.T) {
	n := 30
	times := days(seq(n)...)
	values := make([]float64, n)
	for i := range values {
		values[i] = 0.5*float64(i) + 30
	}

	got, ok, err := Lowess(values, times, 12)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, n, got.Len())
	for i := range values {
		assert.InDelta(t, values[i], got.Values[i], 1e-6, "day %d", i)
	}
	assert.Equal(t, times, got.Index)
}

func TestLowessWindowTooWide(t *testing.T) {
	_, ok, err := Lowess([]float64{1, 2, 3}, days(0, 5, 10), 100)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Lowess([]float64{1, 2, 3}, days(0, 5, 10), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLowessSameDayShareFit(t *testing.T) {
	values := []float64{40, 42, 41, 44, 43, 45, 44, 46}
	times := days(0, 2, 2, 5, 7, 9, 9, 12)

	got, ok, err := Lowess(values, times, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got.Values[1], got.Values[2])
	assert.Equal(t, got.Values[5], got.Values[6])
	for _, v := range got.Values {
		assert.False(t, math.IsNaN(v))
	}
}

func TestLowessPreconditions(t *testing.T) {
	_, _, err := Lowess([]float64{1}, days(0, 1), 1)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, _, err = Lowess(nil, nil, 1)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, _, err = Lowess([]float64{1, math.NaN()}, days(0, 1), 1)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestInterpolate(t *testing.T) {
	nan := math.NaN()
	got := interpolate([]float64{nan, 1, nan, nan, 4, nan})
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{1, 2, 3, 4, 4}, got[1:])
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, median(nil))

	in := []float64{3, 1, 2}
	median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestChiSquaredBounds(t *testing.T) {
	got, err := ChiSquaredTest([]float64{40, 42}, []float64{1000, 1000}, 95, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, got.DegreesOfFreedom)
	assert.Equal(t, 95.0, got.Percent)
	assert.InDelta(t, 0.000982, got.Lower, 1e-5)
	assert.InDelta(t, 5.0239, got.Upper, 1e-3)

	// each value is 1 point from the mean of 41
	want := 1/(40*60.0/1000) + 1/(42*58.0/1000)
	assert.InDelta(t, want, got.Statistic, 1e-9)
	assert.Equal(t, WithinNoise, got.Verdict())
}

func TestChiSquaredIdenticalValues(t *testing.T) {
	values := []float64{45, 45, 45, 45}
	sizes := []float64{1000, 1500, 800, 1200}

	got, err := ChiSquaredTest(values, sizes, 95, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Statistic)
	assert.Greater(t, got.Lower, 0.0)
	assert.Equal(t, UnderDispersed, got.Verdict())

	got, err = ChiSquaredTest(values, sizes, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Lower)
	assert.True(t, math.IsInf(got.Upper, 1))
	assert.Equal(t, WithinNoise, got.Verdict())
}

func TestChiSquaredIdenticalAtBoundary(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		percent float64
		verdict Verdict
	}{
		{"all zero", []float64{0, 0, 0}, 95, UnderDispersed},
		{"all hundred", []float64{100, 100}, 100, WithinNoise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizes := make([]float64, len(tt.values))
			for i := range sizes {
				sizes[i] = 1000
			}
			got, err := ChiSquaredTest(tt.values, sizes, tt.percent, nil)
			require.NoError(t, err)
			assert.Equal(t, 0.0, got.Statistic)
			assert.Equal(t, tt.verdict, got.Verdict())
		})
	}
}

func TestChiSquaredBoundaryOffMean(t *testing.T) {
	mean := 10.0
	got, err := ChiSquaredTest([]float64{0, 0}, []float64{1000, 1000}, 95, &mean)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Statistic, 1))
	assert.Equal(t, OverDispersed, got.Verdict())
}

func TestChiSquaredVerdictNaN(t *testing.T) {
	c := ChiSquared{Statistic: math.NaN(), Lower: 0.05, Upper: 7.4}
	assert.Equal(t, Indeterminate, c.Verdict())
	assert.Equal(t, "indeterminate", c.Verdict().String())

	mean := math.NaN()
	_, err := ChiSquaredTest([]float64{40, 41}, []float64{1000, 1000}, 95, &mean)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestChiSquaredExplicitMean(t *testing.T) {
	mean := 50.0
	got, err := ChiSquaredTest([]float64{50, 50, 60}, []float64{100, 100, 100}, 90, &mean)
	require.NoError(t, err)
	assert.InDelta(t, 100/24.0, got.Statistic, 1e-9)
	assert.Equal(t, 2, got.DegreesOfFreedom)
}

func TestChiSquaredPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		sizes   []float64
		percent float64
	}{
		{"one observation", []float64{40}, []float64{1000}, 95},
		{"percent too low", []float64{40, 41}, []float64{1000, 1000}, 49},
		{"percent too high", []float64{40, 41}, []float64{1000, 1000}, 101},
		{"value out of range", []float64{40, 141}, []float64{1000, 1000}, 95},
		{"negative value", []float64{-1, 41}, []float64{1000, 1000}, 95},
		{"length mismatch", []float64{40, 41}, []float64{1000}, 95},
		{"zero sample", []float64{40, 41}, []float64{1000, 0}, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChiSquaredTest(tt.values, tt.sizes, tt.percent, nil)
			assert.ErrorIs(t, err, ErrPrecondition)
		})
	}
}

func TestChiSquaredPDF(t *testing.T) {
	// chi-squared with 2 dof is exponential with rate 1/2
	assert.InDelta(t, 0.5*math.Exp(-1), ChiSquaredPDF(2, 2), 1e-12)
	assert.InDelta(t, 0.5*math.Exp(-2), ChiSquaredPDF(2, 4), 1e-12)
}

func pollTable() *table.Table {
	tbl := table.New([]table.Key{
		{Top: "Brand", Sub: "Brand"},
		{Top: "Primary vote", Sub: "GRN"},
		{Top: "Primary vote", Sub: "OTH"},
	})
	tbl.Append([]table.Value{table.S("Newspoll"), table.N(10), table.N(15)})
	tbl.Append([]table.Value{table.S("Essential"), table.NA(), table.N(14)})
	tbl.Append([]table.Value{table.S("Newspoll"), table.NA(), table.NA()})
	tbl.Index = days(0, 1, 2)
	return tbl
}

func TestSelections(t *testing.T) {
	tbl := pollTable()

	single, err := NewSelection("Primary vote GRN").Resolve(tbl)
	require.NoError(t, err)
	assert.Equal(t, 10.0, single[0])
	assert.True(t, math.IsNaN(single[1]))

	group := NewSelection("Primary vote GRN", "Primary vote OTH")
	assert.IsType(t, ColumnGroup{}, group)
	assert.Equal(t, "Primary vote GRN + Primary vote OTH", group.Label())

	sum, err := group.Resolve(tbl)
	require.NoError(t, err)
	assert.Equal(t, 25.0, sum[0])
	assert.Equal(t, 14.0, sum[1])
	assert.True(t, math.IsNaN(sum[2]))

	_, err = NewSelection("Primary vote ONP").Resolve(tbl)
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = ColumnGroup{}.Resolve(tbl)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestObserved(t *testing.T) {
	tbl := pollTable()
	vals, _ := NewSelection("Primary vote GRN", "Primary vote OTH").Resolve(tbl)

	vs, ts := Observed(tbl, vals)
	assert.Equal(t, []float64{25, 14}, vs)
	assert.Equal(t, days(0, 1), ts)
}

func TestGroupBy(t *testing.T) {
	keys, groups, err := GroupBy(pollTable(), "Brand")
	require.NoError(t, err)
	assert.Equal(t, []string{"Essential", "Newspoll"}, keys)
	assert.Equal(t, []int{0, 2}, groups["Newspoll"])

	_, _, err = GroupBy(pollTable(), "Firm")
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestSmoothers(t *testing.T) {
	values := []float64{40, 41, 42, 43}
	times := days(0, 7, 14, 21)

	ewm := EWMSmoother(14 * 24 * time.Hour)
	assert.Equal(t, "EWM (halflife 14 days)", ewm.Name)
	s, ok, err := ewm.Smooth(values, times)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, s.Len())

	lw := LowessSmoother(500)
	_, ok, err = lw.Smooth(values, times)
	require.NoError(t, err)
	assert.False(t, ok)
}
