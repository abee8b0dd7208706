package leave_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) calendar.Date { return calendar.MustParse(s) }

func clock(s string) *leave.ClockTime {
	ct, err := leave.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return &ct
}

func approved(id string, cat leave.Category, start, end string) leave.Request {
	return leave.Request{
		ID:        id,
		UserID:    "u-1",
		StartDate: d(start),
		EndDate:   d(end),
		Category:  cat,
		Status:    leave.StatusApproved,
	}
}

var rules = leave.DefaultRules()

// =============================================================================
// EXTRA-TIME HOURS
// =============================================================================

func TestExtraTimeSeconds_TimeRangeUsesQualifyingDays(t *testing.T) {
	// GIVEN: 14:00-16:30 on Sat 2024-01-06 .. Mon 2024-01-08
	// THEN: Sunday is excluded, so 2.5h x 2 days
	req := approved("l-1", leave.CategoryExtraTime, "2024-01-06", "2024-01-08")
	req.StartTime, req.EndTime = clock("14:00"), clock("16:30")

	assert.Equal(t, int64(5*3600), leave.ExtraTimeSeconds(req, nil, rules))
}

func TestExtraTimeSeconds_TimeRangeExcludesHolidays(t *testing.T) {
	req := approved("l-1", leave.CategoryExtraTime, "2024-01-01", "2024-01-02")
	req.StartTime, req.EndTime = clock("09:00"), clock("10:00")
	holidays := calendar.NewHolidaySet([]calendar.Holiday{{Date: d("2024-01-01")}})

	assert.Equal(t, int64(3600), leave.ExtraTimeSeconds(req, holidays, rules))
}

func TestExtraTimeSeconds_OvernightRangeWraps(t *testing.T) {
	req := approved("l-1", leave.CategoryExtraTime, "2024-01-02", "2024-01-02")
	req.StartTime, req.EndTime = clock("22:00"), clock("02:00")

	assert.Equal(t, int64(4*3600), leave.ExtraTimeSeconds(req, nil, rules))
}

func TestExtraTimeSeconds_FallbackCountsRawCalendarDays(t *testing.T) {
	// GIVEN: no time range over Sat..Mon, Monday a holiday
	// THEN: all three calendar days count at 8.25h each
	req := approved("l-1", leave.CategoryExtraTime, "2024-01-06", "2024-01-08")
	holidays := calendar.NewHolidaySet([]calendar.Holiday{{Date: d("2024-01-08")}})

	got := leave.ExtraTimeSeconds(req, holidays, rules)

	assert.Equal(t, int64(3*29700), got)
}

func TestExtraTimeSeconds_FallbackRequiresBothTimes(t *testing.T) {
	req := approved("l-1", leave.CategoryExtraTime, "2024-01-02", "2024-01-02")
	req.StartTime = clock("09:00")

	assert.Equal(t, int64(29700), leave.ExtraTimeSeconds(req, nil, rules))
}

func TestExtraTimeSeconds_HalfDay(t *testing.T) {
	plain := approved("l-1", leave.CategoryHalfDay, "2024-01-02", "2024-01-05")
	tagged := plain
	tagged.Reason = "doctor visit [Extra Time Leave]"

	assert.Zero(t, leave.ExtraTimeSeconds(plain, nil, rules), "untagged half day is ordinary leave")
	assert.Equal(t, int64(4*3600), leave.ExtraTimeSeconds(tagged, nil, rules), "flat 4h regardless of span")
}

func TestExtraTimeSeconds_OnlyApproved(t *testing.T) {
	req := approved("l-1", leave.CategoryExtraTime, "2024-01-02", "2024-01-02")
	req.Status = leave.StatusPending
	assert.Zero(t, leave.ExtraTimeSeconds(req, nil, rules))

	req.Status = leave.StatusRejected
	assert.Zero(t, leave.ExtraTimeSeconds(req, nil, rules))
}

func TestExtraTimeSeconds_OtherCategoriesSpendNothing(t *testing.T) {
	for _, c := range []leave.Category{leave.CategoryPaid, leave.CategoryUnpaid, leave.CategoryOther} {
		req := approved("l-1", c, "2024-01-02", "2024-01-02")
		req.Reason = leave.ExtraTimeMarker
		assert.Zero(t, leave.ExtraTimeSeconds(req, nil, rules), c)
	}
}

func TestExtraTimeLeave_Sums(t *testing.T) {
	ranged := approved("l-1", leave.CategoryExtraTime, "2024-01-02", "2024-01-02")
	ranged.StartTime, ranged.EndTime = clock("15:00"), clock("17:00")
	half := approved("l-2", leave.CategoryHalfDay, "2024-01-03", "2024-01-03")
	half.Reason = "[Extra Time Leave] errand"
	paid := approved("l-3", leave.CategoryPaid, "2024-01-04", "2024-01-04")

	s := leave.ExtraTimeLeave([]leave.Request{ranged, half, paid}, nil, rules)

	assert.Equal(t, int64(6*3600), s.ExtraTimeLeaveSeconds)
	assert.Equal(t, []string{"l-1", "l-2"}, s.RequestIDs)
	assert.True(t, decimal.NewFromInt(6).Equal(s.Hours()))
}

func TestRules_OrDefault(t *testing.T) {
	r := leave.Rules{HalfDaySeconds: 3 * 3600}.OrDefault()
	assert.Equal(t, int64(3*3600), r.HalfDaySeconds)
	assert.Equal(t, int64(29700), r.FallbackSecondsPerDay)
	assert.Equal(t, leave.ExtraTimeMarker, r.ExtraTimeMarker)
}

// =============================================================================
// LEAVE DAYS
// =============================================================================

func TestLeaveDays_PerCategory(t *testing.T) {
	holidays := calendar.NewHolidaySet([]calendar.Holiday{{Date: d("2024-01-01")}})
	reqs := []leave.Request{
		approved("l-1", leave.CategoryPaid, "2024-01-01", "2024-01-07"),
		approved("l-2", leave.CategoryPaid, "2024-01-09", "2024-01-09"),
		approved("l-3", leave.CategoryUnpaid, "2024-01-10", "2024-01-11"),
		{UserID: "u-1", StartDate: d("2024-01-12"), EndDate: d("2024-01-12"), Category: leave.CategoryPaid, Status: leave.StatusPending},
	}

	assert.Equal(t, 6, leave.LeaveDays(reqs, leave.CategoryPaid, holidays))
	assert.Equal(t, 2, leave.LeaveDays(reqs, leave.CategoryUnpaid, holidays))

	byCat := leave.DaysByCategory(reqs, holidays)
	assert.Equal(t, 6, byCat[leave.CategoryPaid])
	assert.Equal(t, 0, byCat[leave.CategoryExtraTime])
	assert.Len(t, byCat, len(leave.Categories))
}

func TestLeaveDays_IgnoresExtraTimeMarker(t *testing.T) {
	half := approved("l-1", leave.CategoryHalfDay, "2024-01-02", "2024-01-02")
	half.Reason = leave.ExtraTimeMarker

	assert.Equal(t, 1, leave.LeaveDays([]leave.Request{half}, leave.CategoryHalfDay, nil))
	assert.Equal(t, 0, leave.LeaveDays([]leave.Request{half}, leave.CategoryExtraTime, nil))
}

func TestPaidLeaveBalance(t *testing.T) {
	reqs := []leave.Request{approved("l-1", leave.CategoryPaid, "2024-01-02", "2024-01-04")}

	assert.Equal(t, leave.PaidBalance{Allocated: 12, Used: 3, Remaining: 9}, leave.PaidLeaveBalance(12, reqs, nil))
	assert.Equal(t, -1, leave.PaidLeaveBalance(2, reqs, nil).Remaining)
}

func TestForPeriod(t *testing.T) {
	jan := calendar.Period{Start: d("2024-01-01"), End: d("2024-01-31")}
	straddle := approved("l-1", leave.CategoryPaid, "2024-01-30", "2024-02-02")
	feb := approved("l-2", leave.CategoryPaid, "2024-02-05", "2024-02-05")
	other := approved("l-3", leave.CategoryPaid, "2024-01-05", "2024-01-05")
	other.UserID = "u-2"
	pending := approved("l-4", leave.CategoryPaid, "2024-01-05", "2024-01-05")
	pending.Status = leave.StatusPending

	got := leave.ForPeriod([]leave.Request{straddle, feb, other, pending}, "u-1", jan)

	require.Len(t, got, 1)
	assert.Equal(t, "l-1", got[0].ID)
}

// =============================================================================
// CLOCK TIME
// =============================================================================

func TestParseClockTime(t *testing.T) {
	ct, err := leave.ParseClockTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9*60+5, ct.Minutes())
	assert.Equal(t, "09:05", ct.String())

	ct, err = leave.ParseClockTime(" 7:30 ")
	require.NoError(t, err)
	assert.Equal(t, "07:30", ct.String())

	for _, bad := range []string{"", "24:00", "12:60", "noon", "09:30xyz", "9:5", "09:30:00"} {
		_, err := leave.ParseClockTime(bad)
		assert.ErrorIs(t, err, leave.ErrInvalidClockTime, bad)
	}
}

func TestRequest_JSONClockTimes(t *testing.T) {
	var req leave.Request
	require.NoError(t, json.Unmarshal([]byte(`{
		"start_date": "2024-01-02", "end_date": "2024-01-02",
		"category": "extra_time", "status": "approved",
		"start_time": "14:00", "end_time": "16:00"
	}`), &req))

	require.NotNil(t, req.StartTime)
	assert.Equal(t, "14:00", req.StartTime.String())
	assert.Equal(t, int64(7200), leave.ExtraTimeSeconds(req, nil, rules))
}
