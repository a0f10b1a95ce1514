package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Layouts(t *testing.T) {
	want := time.Date(2017, 5, 1, 0, 1, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{name: "sql datetime", in: "2017-05-01 00:01:00"},
		{name: "rfc3339", in: "2017-05-01T00:01:00Z"},
		{name: "iso without zone", in: "2017-05-01T00:01:00"},
		{name: "offset", in: "2017-04-30T17:01:00-07:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in, time.UTC)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %v, want %v", got, want)
		})
	}
}

func TestParse_DateOnly(t *testing.T) {
	got, err := Parse("2017-05-01", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2017, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("", time.UTC)
	assert.Error(t, err)

	_, err = Parse("05/01/2017", time.UTC)
	assert.Error(t, err)
}

func TestParseLocation_DefaultUTC(t *testing.T) {
	loc, err := ParseLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = ParseLocation("Nowhere/Atlantis")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	in := time.Date(2017, 5, 8, 0, 10, 0, 0, la)
	got := EndOfDay(in)
	assert.Equal(t, time.Date(2017, 5, 8, 23, 59, 59, 0, la), got)
}

func TestDaysBetween(t *testing.T) {
	join := time.Date(2017, 5, 1, 0, 1, 0, 0, time.UTC)

	tests := []struct {
		name  string
		order time.Time
		want  int
	}{
		{name: "same instant", order: join, want: 0},
		{name: "just under a day", order: join.Add(24*time.Hour - time.Second), want: 0},
		{name: "exactly one day", order: join.Add(24 * time.Hour), want: 1},
		{name: "seven days and change", order: time.Date(2017, 5, 8, 0, 8, 1, 0, time.UTC), want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(join, tt.order))
			assert.Equal(t, tt.want, DaysBetween(tt.order, join))
		})
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 12 mars 2017 : passage à l'heure d'été, la journée ne dure que 23h
	a := time.Date(2017, 3, 11, 12, 0, 0, 0, ny)
	b := time.Date(2017, 3, 12, 12, 0, 0, 0, ny)
	assert.Equal(t, 1, DaysBetween(a, b))
}
