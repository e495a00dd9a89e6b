package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"00:00", Clock{0, 0}, false},
		{"06:30", Clock{6, 30}, false},
		{"23:59", Clock{23, 59}, false},
		{"24:00", Clock{}, true},
		{"12:60", Clock{}, true},
		{"6:30", Clock{}, true},
		{"06:3", Clock{}, true},
		{"ab:cd", Clock{}, true},
		{"06-30", Clock{}, true},
		{"", Clock{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestShiftWindow(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	friday := time.Date(2024, 1, 5, 0, 0, 0, 0, ny)

	t.Run("overnight rolls to next day", func(t *testing.T) {
		start, end, err := ShiftWindow(friday, Clock{22, 0}, Clock{6, 0})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 22, 0, 0, 0, ny), start)
		assert.Equal(t, time.Date(2024, 1, 6, 6, 0, 0, 0, ny), end)
	})

	t.Run("same day", func(t *testing.T) {
		start, end, err := ShiftWindow(friday, Clock{8, 0}, Clock{16, 30})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 8, 0, 0, 0, ny), start)
		assert.Equal(t, time.Date(2024, 1, 5, 16, 30, 0, 0, ny), end)
	})

	t.Run("end at midnight is next day", func(t *testing.T) {
		_, end, err := ShiftWindow(friday, Clock{16, 0}, Clock{0, 0})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, ny), end)
	})

	t.Run("month boundary", func(t *testing.T) {
		_, end, err := ShiftWindow(time.Date(2024, 1, 31, 0, 0, 0, 0, ny), Clock{23, 0}, Clock{7, 0})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 1, 7, 0, 0, 0, ny), end)
	})

	t.Run("zero length rejected", func(t *testing.T) {
		_, _, err := ShiftWindow(friday, Clock{9, 0}, Clock{9, 0})
		assert.ErrorIs(t, err, ErrZeroLength)
	})

	t.Run("spring forward keeps wall clock", func(t *testing.T) {
		// 2024-03-10 02:00 EST jumps to 03:00 EDT
		start, end, err := ShiftWindow(time.Date(2024, 3, 9, 0, 0, 0, 0, ny), Clock{22, 0}, Clock{6, 0})
		require.NoError(t, err)
		assert.Equal(t, 6, end.Hour())
		assert.Equal(t, 7*time.Hour, end.Sub(start))
	})
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{"sunday itself", time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"midweek", time.Date(2024, 3, 6, 15, 4, 5, 0, time.UTC)},
		{"saturday night", time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)},
	}
	wantStart := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 9, 23, 59, 59, 999000000, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekBounds(tt.in)
			assert.Equal(t, wantStart, start)
			assert.Equal(t, wantEnd, end)
			assert.Equal(t, time.Sunday, start.Weekday())
			assert.Equal(t, time.Saturday, end.Weekday())
		})
	}

	t.Run("crosses year", func(t *testing.T) {
		start, end := WeekBounds(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, 2025, end.Year())
		assert.Equal(t, time.January, end.Month())
		assert.Equal(t, 4, end.Day())
	})
}

func TestParseDate(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	d, err := ParseDate("2024-01-05", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, ny), d)
	assert.Equal(t, "2024-01-05", DateKey(d))

	_, err = ParseDate("01/05/2024", ny)
	assert.ErrorIs(t, err, ErrInvalidDate)

	utc, err := ParseDate("2024-01-05", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, utc.Location())
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 3.99, RoundHours(3.994))
	assert.Equal(t, 1.13, RoundHours(1.125))
	assert.Equal(t, 8.0, RoundHours(8))
	assert.Equal(t, 0.0, RoundHours(0.004))
}

func TestWorkedHours(t *testing.T) {
	in := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		d    time.Duration
		want float64
	}{
		{"below half", 3*time.Hour + 59*time.Minute + 38*time.Second + 400*time.Millisecond, 3.99},
		{"3.995 rounds up", 14382 * time.Second, 4.00},
		{"1.005 rounds up", 3618 * time.Second, 1.01},
		{"8.245 rounds up", 29682 * time.Second, 8.25},
		{"2.675 rounds up", 9630 * time.Second, 2.68},
		{"just under half", 14382*time.Second - time.Nanosecond, 3.99},
		{"whole hours", 8 * time.Hour, 8.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := WorkedHours(in, in.Add(tt.d))
			require.NoError(t, err)
			assert.Equal(t, tt.want, h)
		})
	}

	_, err := WorkedHours(in, in)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = WorkedHours(in, in.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestHoursBetween(t *testing.T) {
	in := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	h, err := HoursBetween(in, in.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1.5, h)

	_, err = HoursBetween(in, in)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSumHours_PerEntryPolicy(t *testing.T) {
	// 3.994 + 3.994 = 7.988 which would round to 7.99 as a raw total
	raw := 3.994 + 3.994
	assert.Equal(t, 7.99, RoundHours(raw))
	assert.Equal(t, 7.98, SumHours(RoundHours(3.994), RoundHours(3.994)))
	assert.Equal(t, 0.0, SumHours())
	assert.Equal(t, 0.3, SumHours(0.1, 0.2))
	assert.Equal(t, 12.33, SumHours(4.11, 4.11, 4.11))
}
