package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	valid := []struct {
		in   string
		want CalendarDate
	}{
		{"2025-10-13", CalendarDate{2025, time.October, 13}},
		{"2024-02-29", CalendarDate{2024, time.February, 29}},
		{"0001-01-01", CalendarDate{1, time.January, 1}},
		{"9999-12-31", CalendarDate{9999, time.December, 31}},
	}
	for _, tc := range valid {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.in, got.String())
	}

	invalid := []string{
		"",
		"2025-13-01",
		"2025-00-10",
		"2025-02-29",
		"2025-04-31",
		"2025-10-00",
		"0000-01-01",
		"2025/10/13",
		"2025-1-13",
		"25-10-13",
		"2025-10-13T00:00:00Z",
		"20a5-10-13",
		"2025-+1-13",
		" 2025-10-13",
	}
	for _, in := range invalid {
		_, err := ParseDate(in)
		require.Error(t, err, in)
		var fe *InvalidDateFormatError
		assert.True(t, errors.As(err, &fe), in)
		assert.ErrorIs(t, err, ErrInvalidDateFormat, in)
	}
}

func TestCivilConversion(t *testing.T) {
	d := MustParseDate("2024-02-29")
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 29}, civil.Date(d))
	assert.Equal(t, "2024-03-01", CalendarDate(civil.Date(d).AddDays(1)).String())
	assert.Equal(t, d, d.AddDays(365).AddDays(-365))
}

func TestNewDate(t *testing.T) {
	d, err := NewDate(2025, time.November, 30)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-30", d.String())

	_, err = NewDate(2025, time.November, 31)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
	_, err = NewDate(2025, 13, 1)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestWeekdayMatchesTimePackage(t *testing.T) {
	start := time.Date(1899, time.December, 25, 0, 0, 0, 0, time.UTC)
	d := FromTime(start)
	for i := 0; i < 80000; i++ {
		ref := start.AddDate(0, 0, i)
		require.Equal(t, FromTime(ref), d, "date at offset %d", i)
		require.Equal(t, ref.Weekday(), d.Weekday(), d.String())
		require.Equal(t, FromTime(ref), FromTime(start).AddDays(i), "AddDays %d", i)
		d = d.Next()
	}
}

func TestKnownWeekdays(t *testing.T) {
	assert.Equal(t, time.Monday, MustParseDate("2025-10-13").Weekday())
	assert.Equal(t, time.Sunday, MustParseDate("2025-10-19").Weekday())
	assert.Equal(t, time.Saturday, MustParseDate("2025-11-01").Weekday())
	assert.Equal(t, time.Thursday, MustParseDate("1970-01-01").Weekday())
	assert.Equal(t, time.Monday, MustParseDate("0001-01-01").Weekday())
}

func TestNextAcrossBoundaries(t *testing.T) {
	cases := map[string]string{
		"2025-01-31": "2025-02-01",
		"2025-02-28": "2025-03-01",
		"2024-02-28": "2024-02-29",
		"2024-02-29": "2024-03-01",
		"2025-12-31": "2026-01-01",
		"2025-10-13": "2025-10-14",
	}
	for in, want := range cases {
		assert.Equal(t, want, MustParseDate(in).Next().String(), in)
	}
}

func TestCompareAndDaysUntil(t *testing.T) {
	a := MustParseDate("2025-10-13")
	b := MustParseDate("2025-10-29")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 16, a.DaysUntil(b))
	assert.Equal(t, -16, b.DaysUntil(a))
	assert.Equal(t, 366, MustParseDate("2024-01-01").DaysUntil(MustParseDate("2025-01-01")))
}

func TestFromTimeKeepsOwnLocation(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	late := time.Date(2025, time.October, 13, 23, 30, 0, 0, bogota)
	assert.Equal(t, "2025-10-13", FromTime(late).String())

	tokyo := time.FixedZone("JST", 9*3600)
	early := time.Date(2025, time.October, 13, 0, 30, 0, 0, tokyo)
	assert.Equal(t, "2025-10-13", FromTime(early).String())
}

func TestJSONRoundTrip(t *testing.T) {
	var payload struct {
		Start CalendarDate `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-10-13"}`), &payload))
	assert.Equal(t, MustParseDate("2025-10-13"), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-10-13"}`, string(out))

	err = json.Unmarshal([]byte(`{"start":"2025-13-01"}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestScan(t *testing.T) {
	var d CalendarDate
	require.NoError(t, d.Scan(time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-10-19", d.String())

	require.NoError(t, d.Scan("2025-11-01"))
	assert.Equal(t, "2025-11-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := MustParseDate("2025-10-13").Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-10-13", v)
}
