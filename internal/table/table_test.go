package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := New([]Key{
		{Top: "Date", Sub: "Date"},
		{Top: "Primary vote", Sub: "L/NP"},
		{Top: "Primary vote", Sub: "ALP"},
	})
	t.Append([]Value{S("1 Jan 2022"), N(40), N(35)})
	t.Append([]Value{S("2 Jan 2022"), NA(), N(36)})
	return t
}

func TestValueEqual(t *testing.T) {
	assert.True(t, S("a").Equal(S("a")))
	assert.True(t, N(1).Equal(N(1)))
	assert.False(t, S("1").Equal(N(1)))
	assert.False(t, NA().Equal(NA()))
	assert.False(t, NA().Equal(S("")))
}

func TestKeyFlat(t *testing.T) {
	assert.Equal(t, "Date", Key{Top: "Date", Sub: "Date"}.Flat())
	assert.Equal(t, "Primary vote ALP", Key{Top: "Primary vote", Sub: "ALP"}.Flat())
	assert.Equal(t, "Firm", Key{Top: "Firm", Sub: ""}.Flat())
}

func TestLookup(t *testing.T) {
	tbl := sample()

	i, ok := tbl.Lookup("Primary vote ALP")
	require.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok = tbl.Lookup("Date")
	require.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = tbl.Lookup("Primary vote")
	assert.False(t, ok, "ambiguous top-level name must not resolve")

	assert.Equal(t, []int{1, 2}, tbl.ColumnsByTop("Primary vote"))
}

func TestFloats(t *testing.T) {
	f := sample().Floats(1)
	assert.Equal(t, 40.0, f[0])
	assert.True(t, math.IsNaN(f[1]))
}

func TestCloneIsDeep(t *testing.T) {
	tbl := sample()
	tbl.Index = []time.Time{time.Unix(0, 0), time.Unix(1, 0)}

	c := tbl.Clone()
	c.Rows[0][1] = N(99)
	c.Columns[0].Sub = "changed"
	c.Index[0] = time.Unix(5, 0)

	assert.Equal(t, 40.0, tbl.Rows[0][1].Num)
	assert.Equal(t, "Date", tbl.Columns[0].Sub)
	assert.Equal(t, time.Unix(0, 0), tbl.Index[0])
}

func TestFilterKeepsIndexAligned(t *testing.T) {
	tbl := sample()
	tbl.Index = []time.Time{time.Unix(10, 0), time.Unix(20, 0)}

	tbl.Filter(func(_ int, row []Value) bool { return !row[1].IsMissing() })

	require.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, []time.Time{time.Unix(10, 0)}, tbl.Index)
}

func TestDropColumns(t *testing.T) {
	tbl := sample()
	tbl.DropColumns(func(c int) bool { return c == 1 })

	assert.Equal(t, []string{"Date", "Primary vote ALP"}, tbl.FlatNames())
	assert.Equal(t, 36.0, tbl.Rows[1][1].Num)
}

func TestSubset(t *testing.T) {
	tbl := sample()
	sub := tbl.Subset([]int{1})
	require.Equal(t, 1, sub.NumRows())
	assert.Equal(t, "2 Jan 2022", sub.Rows[0][0].Str)
	assert.Nil(t, sub.Index)
}
