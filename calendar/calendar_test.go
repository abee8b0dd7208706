package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/calendar"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

// =============================================================================
// QUALIFYING DAY COUNT
// =============================================================================

func TestCountQualifyingDays_ExcludesSundayAndHoliday(t *testing.T) {
	// GIVEN: Mon 2024-01-01 is a holiday, Sun 2024-01-07 closes the week
	// WHEN: Counting the whole week
	// THEN: 7 days minus 1 holiday minus 1 Sunday = 5
	holidays := calendar.NewHolidaySet([]calendar.Holiday{
		{Date: d("2024-01-01"), Description: "New Year"},
	})

	assert.Equal(t, 5, calendar.CountQualifyingDays(d("2024-01-01"), d("2024-01-07"), holidays))
}

func TestCountQualifyingDays_StartAfterEnd(t *testing.T) {
	assert.Equal(t, 0, calendar.CountQualifyingDays(d("2024-01-07"), d("2024-01-01"), nil))
}

func TestCountQualifyingDays_InvalidDates(t *testing.T) {
	assert.Equal(t, 0, calendar.CountQualifyingDays(calendar.Date{}, d("2024-01-01"), nil))
	assert.Equal(t, 0, calendar.CountQualifyingDays(d("2024-01-01"), calendar.New(2024, time.February, 30), nil))
}

func TestCountQualifyingDays_SingleDay(t *testing.T) {
	assert.Equal(t, 1, calendar.CountQualifyingDays(d("2024-01-06"), d("2024-01-06"), nil), "Saturday counts")
	assert.Equal(t, 0, calendar.CountQualifyingDays(d("2024-01-07"), d("2024-01-07"), nil), "Sunday never counts")
}

func TestCountQualifyingDays_HolidayOnSundayCountedOnce(t *testing.T) {
	holidays := calendar.NewHolidaySet([]calendar.Holiday{{Date: d("2024-01-07")}})
	assert.Equal(t, 6, calendar.CountQualifyingDays(d("2024-01-01"), d("2024-01-07"), holidays))
}

func TestCountQualifyingDays_AcrossMonthBoundary(t *testing.T) {
	// Jan 29 (Mon) .. Feb 4 (Sun)
	assert.Equal(t, 6, calendar.CountQualifyingDays(d("2024-01-29"), d("2024-02-04"), nil))
}

// =============================================================================
// DATE
// =============================================================================

func TestParse(t *testing.T) {
	got, err := calendar.Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, calendar.New(2024, time.February, 29), got)

	_, err = calendar.Parse("2023-02-29")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	_, err = calendar.Parse("not-a-date")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestFromTime_UsesLocalCalendarDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC; the date must not shift.
	zone := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, time.March, 9, 23, 30, 0, 0, zone)

	assert.Equal(t, d("2024-03-09"), calendar.FromTime(ts))
}

func TestAddMonths_FollowsAddDateOverflow(t *testing.T) {
	assert.Equal(t, d("2024-05-10"), d("2024-03-10").AddMonths(2))
	assert.Equal(t, d("2024-03-02"), d("2024-01-31").AddMonths(1))
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, d("2024-02-29"), d("2024-02-10").EndOfMonth())
	assert.Equal(t, d("2023-02-28"), d("2023-02-10").EndOfMonth())
	assert.True(t, d("2024-12-31").IsLastDayOfMonth())
	assert.False(t, d("2024-12-30").IsLastDayOfMonth())
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     calendar.MonthsDays
	}{
		{"exact months", "2024-03-10", "2024-05-10", calendar.MonthsDays{Months: 2}},
		{"months and days", "2024-03-10", "2024-05-15", calendar.MonthsDays{Months: 2, Days: 5}},
		{"days only", "2024-03-31", "2024-04-01", calendar.MonthsDays{Days: 1}},
		{"to before from", "2024-05-10", "2024-03-10", calendar.MonthsDays{}},
		{"same day", "2024-05-10", "2024-05-10", calendar.MonthsDays{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.Diff(d(tt.from), d(tt.to)))
		})
	}
}

func TestMonthsDays_String(t *testing.T) {
	assert.Equal(t, "1 month 5 days", calendar.MonthsDays{Months: 1, Days: 5}.String())
	assert.Equal(t, "2 months 1 day", calendar.MonthsDays{Months: 2, Days: 1}.String())
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		At calendar.Date `json:"at"`
	}{At: d("2024-03-10")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-03-10"}`, string(b))

	var out struct {
		At calendar.Date `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2025-01-31"}`), &out))
	assert.Equal(t, d("2025-01-31"), out.At)

	assert.Error(t, json.Unmarshal([]byte(`{"at":"2025-13-01"}`), &out))
}

// =============================================================================
// PERIOD
// =============================================================================

func TestMonthPeriod(t *testing.T) {
	p := calendar.MonthPeriod(2024, time.February)
	assert.Equal(t, d("2024-02-01"), p.Start)
	assert.Equal(t, d("2024-02-29"), p.End)
	assert.Len(t, p.Days(), 29)
	assert.True(t, p.Contains(d("2024-02-15")))
	assert.False(t, p.Contains(d("2024-03-01")))
}

func TestPeriod_WorkingDays(t *testing.T) {
	// February 2024 has 4 Sundays.
	assert.Equal(t, 25, calendar.MonthPeriod(2024, time.February).WorkingDays(nil))
}

func TestPeriod_NextAndPreviousMonth(t *testing.T) {
	p := calendar.MonthPeriod(2024, time.December)
	assert.Equal(t, calendar.MonthPeriod(2025, time.January), p.NextMonth())
	assert.Equal(t, calendar.MonthPeriod(2024, time.November), p.PreviousMonth())
}
