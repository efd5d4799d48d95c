package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		key   string
		ok    bool
		year  int
		month time.Month
	}{
		{"2024-03", true, 2024, time.March},
		{" 2024-12 ", true, 2024, time.December},
		{"2024-13", false, 0, 0},
		{"2024-00", false, 0, 0},
		{"2024-3", false, 0, 0},
		{"March 2024", false, 0, 0},
		{"", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			year, month, ok := Parse(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.year, year)
			assert.Equal(t, tt.month, month)
		})
	}
}

func TestRangeOf(t *testing.T) {
	now := time.Date(2024, time.July, 15, 10, 0, 0, 0, time.UTC)

	r := RangeOf("2024-02", now, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), r.End)

	fallback := RangeOf("not-a-period", now, time.UTC)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), fallback.Start)
	assert.Equal(t, time.July, fallback.End.Month())
	assert.Equal(t, 31, fallback.End.Day())
}

func TestEndOfMonth(t *testing.T) {
	now := time.Date(2024, time.July, 15, 10, 0, 0, 0, time.UTC)
	end := EndOfMonth("2023-11", now, time.UTC)
	assert.Equal(t, time.Date(2023, time.November, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
}

func TestKeyUsesLocation(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// 2024-01-31 20:00 UTC is already February 1st in Manila.
	instant := time.Date(2024, time.January, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01", Key(instant, time.UTC))
	assert.Equal(t, "2024-02", Key(instant, manila))
	assert.Equal(t, "2024-02-01", DayKey(instant, manila))
}

func TestBusinessDayKeys(t *testing.T) {
	r := RangeOf("2024-06", time.Now(), time.UTC)
	keys := BusinessDayKeys(r.Start, r.End, time.UTC)

	// June 2024 has 30 days, 10 of them on weekends.
	assert.Len(t, keys, 20)
	assert.Equal(t, "2024-06-03", keys[0])
	assert.Equal(t, "2024-06-28", keys[len(keys)-1])
	assert.NotContains(t, keys, "2024-06-01")
	assert.NotContains(t, keys, "2024-06-02")
}

func TestBusinessDayKeys_PartialDays(t *testing.T) {
	start := time.Date(2024, time.June, 5, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 7, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-06-05", "2024-06-06", "2024-06-07"}, BusinessDayKeys(start, end, time.UTC))
}

func TestBusinessDayKeys_InvertedRange(t *testing.T) {
	start := time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, BusinessDayKeys(start, end, time.UTC))
}

func TestRangeContains(t *testing.T) {
	r := RangeOf("2024-06", time.Now(), time.UTC)
	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.End.Add(time.Millisecond)))
}
