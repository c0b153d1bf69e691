package clean

import (
	"testing"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTokeniseDate(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"12–15 Mar 2022[a]", []string{"12", "15", "Mar", "2022"}},
		{"  3 Jan 2021 ", []string{"3", "Jan", "2021"}},
		{"28 Feb — 3 Mar 2022", []string{"28", "Feb", "3", "Mar", "2022"}},
		{"c. 5 June 2020", []string{"5", "June", "2020"}},
		{"10/11 Apr 2019", []string{"10", "11", "Apr", "2019"}},
		{"−3 Jan 2021", []string{"3", "Jan", "2021"}},
		{"1, 2 May 2019", []string{"1", "2", "May", "2019"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TokeniseDate(tt.in))
		})
	}
}

func TestMeanDate(t *testing.T) {
	tests := []struct {
		in       string
		want     time.Time
		warnings int
	}{
		{"12–15 Mar 2022", day(2022, time.March, 13), 0},
		{"3 Jan 2021", day(2021, time.January, 3), 0},
		{"Mar 2022", day(2022, time.March, 1), 0},
		{"28 Feb – 3 Mar 2022", day(2022, time.March, 1), 0},
		{"30 Dec 2021 – 2 Jan 2022", day(2021, time.December, 31), 0},
		{"1–7 Sept 2021[b]", day(2021, time.September, 4), 0},
		{"10/11 Apr 2019", day(2019, time.April, 10), 0},
		{"c. 5 June 2020", day(2020, time.June, 5), 0},
		{"Early Mar 2022", day(2022, time.March, 1), 1},
		{"1 Mar 2022 *", day(2022, time.March, 1), 1},
		{"15–12 Mar 2022", day(2022, time.March, 13), 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			log := diag.New(nil)
			got, err := MeanDate(TokeniseDate(tt.in), log)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.warnings, log.Len(), log.Warnings())
		})
	}
}

func TestMeanDateUnresolvable(t *testing.T) {
	tests := []string{
		"15 2022",
		"2022",
		"31 Feb 2022",
		"5 Mar",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := MeanDate(TokeniseDate(in), diag.New(nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadDate)
		})
	}
}

func TestMeanDateMissingMonthWarns(t *testing.T) {
	log := diag.New(nil)
	_, err := MeanDate([]string{"15", "2022"}, log)
	require.Error(t, err)
	require.Equal(t, 1, log.Len())
	assert.Contains(t, log.Warnings()[0], "missing month")
}

func TestMeanDateNilLog(t *testing.T) {
	got, err := MeanDate([]string{"Bogus", "4", "Jul", "2023"}, nil)
	require.NoError(t, err)
	assert.Equal(t, day(2023, time.July, 4), got)
}
