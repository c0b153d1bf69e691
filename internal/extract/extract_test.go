package extract

import (
	"testing"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/clean"
	"github.com/brogergvhs/pollsmooth/internal/diag"
	"github.com/brogergvhs/pollsmooth/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pollPage = `<html><body>
<p>Voting intention</p>
<table class="wikitable">
 <thead>
  <tr><th rowspan="2">Date(s)</th><th rowspan="2">Brand</th><th colspan="2">Primary vote</th><th rowspan="2"></th></tr>
  <tr><th>L/NP</th><th>ALP</th></tr>
 </thead>
 <tbody>
  <tr><td>12–15 Mar 2022</td><td>Newspoll<sup>[1]</sup></td><td>35%</td><td>38</td><td></td></tr>
  <tr><td colspan="5">Election held</td></tr>
  <tr><td rowspan="2">1 Apr<br>2022</td><td>Essential</td><td>36</td><td>37</td><td>x</td></tr>
  <tr><td>Ipsos<span style="display: none">hidden</span></td><td>34</td><td>39</td><td>y</td></tr>
 </tbody>
</table>
<table><tr><th>A</th><th>B</th></tr><tr><td>1,000</td><td>x</td></tr><tr><td></td><td>y</td></tr></table>
</body></html>`

func TestTablesInDocumentOrder(t *testing.T) {
	tables, err := Tables(pollPage)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, 5, tables[0].NumCols())
	assert.Equal(t, 2, tables[1].NumCols())
}

func TestTwoLevelHeader(t *testing.T) {
	tables, err := Tables(pollPage)
	require.NoError(t, err)
	tbl := tables[0]

	assert.Equal(t, []table.Key{
		{Top: "Date(s)", Sub: "Date(s)"},
		{Top: "Brand", Sub: "Brand"},
		{Top: "Primary vote", Sub: "L/NP"},
		{Top: "Primary vote", Sub: "ALP"},
		{Top: "Unnamed: 4_level_0", Sub: "Unnamed: 4_level_1"},
	}, tbl.Columns)
}

func TestSpansAndCellText(t *testing.T) {
	tables, err := Tables(pollPage)
	require.NoError(t, err)
	tbl := tables[0]
	require.Equal(t, 4, tbl.NumRows())

	assert.Equal(t, "Newspoll[1]", tbl.Rows[0][1].Str)
	assert.True(t, tbl.Rows[0][4].IsMissing())

	for c := 0; c < 5; c++ {
		assert.Equal(t, "Election held", tbl.Rows[1][c].Str, "colspan copies into column %d", c)
	}

	assert.Equal(t, "1 Apr 2022", tbl.Rows[2][0].Str)
	assert.Equal(t, "1 Apr 2022", tbl.Rows[3][0].Str, "rowspan carries down")
	assert.Equal(t, "Ipsos", tbl.Rows[3][1].Str)
}

func TestSingleHeaderAndNumericInference(t *testing.T) {
	tables, err := Tables(pollPage)
	require.NoError(t, err)
	tbl := tables[1]

	assert.Equal(t, []string{"A", "B"}, tbl.FlatNames())
	assert.Equal(t, table.Number, tbl.Rows[0][0].Kind)
	assert.Equal(t, 1000.0, tbl.Rows[0][0].Num)
	assert.True(t, tbl.Rows[1][0].IsMissing())
	assert.Equal(t, table.Text, tbl.Rows[0][1].Kind)
}

func TestHeaderlessTable(t *testing.T) {
	tables, err := Tables(`<table><tr><td>a</td><td></td></tr></table>`)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"0", "1"}, tables[0].FlatNames())
}

func TestNestedTables(t *testing.T) {
	page := `<table>
<tr><th>Outer</th></tr>
<tr><td><table><tr><th>Inner</th></tr><tr><td>1</td></tr></table></td></tr>
</table>`

	tables, err := Tables(page)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"Outer"}, tables[0].FlatNames())
	assert.Equal(t, 1, tables[0].NumRows())
	assert.Equal(t, []string{"Inner"}, tables[1].FlatNames())
}

func TestNoTables(t *testing.T) {
	tables, err := Tables(`<p>nothing here</p>`)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestExtractedTableCleans(t *testing.T) {
	tables, err := Tables(pollPage)
	require.NoError(t, err)

	log := diag.New(nil)
	got, err := clean.Clean(tables[0], clean.DefaultOptions(), log)
	require.NoError(t, err)
	assert.Equal(t, 0, log.Len(), log.Warnings())

	require.Equal(t, 3, got.NumRows())
	assert.Equal(t, time.Date(2022, time.March, 13, 0, 0, 0, 0, time.UTC), got.Index[0])
	assert.Equal(t, time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC), got.Index[2])

	brand, ok := got.Lookup("Brand")
	require.True(t, ok)
	assert.Equal(t, "Newspoll", got.Rows[0][brand].Str)

	lnp, ok := got.Lookup("Primary vote L/NP")
	require.True(t, ok)
	assert.Equal(t, []float64{35, 36, 34}, got.Floats(lnp))

	assert.Contains(t, got.FlatNames(), "Unnamed: 4_level_0")
}
