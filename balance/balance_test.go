package balance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/balance"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var march = calendar.MonthPeriod(2024, time.March)

func d(s string) calendar.Date { return calendar.MustParse(s) }

// workedOn builds a record for date with exactly net seconds worked.
func workedOn(date string, net int64) attendance.Record {
	day := d(date)
	in := time.Date(day.Year, day.Month, day.Day, 9, 0, 0, 0, time.UTC)
	out := in.Add(time.Duration(net) * time.Second)
	return attendance.Record{UserID: "u-1", Date: day, CheckIn: &in, CheckOut: &out}
}

func extraTimeLeave(date string, from, to string) leave.Request {
	start, _ := leave.ParseClockTime(from)
	end, _ := leave.ParseClockTime(to)
	return leave.Request{
		ID: "l-" + date, UserID: "u-1",
		StartDate: d(date), EndDate: d(date),
		Category: leave.CategoryExtraTime, Status: leave.StatusApproved,
		StartTime: &start, EndTime: &end,
	}
}

// =============================================================================
// CORE RULES
// =============================================================================

func TestCompute_RemainingExtraTimeLeave(t *testing.T) {
	// GIVEN: 1h extra worked, no low time, 2h extra-time leave taken
	// THEN: 1h of the leave is not yet earned back
	b := balance.Compute("u-1", march, d("2024-03-15"), balance.Carryover{}, 0, 3600, 7200)

	assert.Equal(t, int64(3600), b.RemainingExtraTimeLeaveSeconds)
	assert.True(t, decimal.NewFromInt(1).Equal(b.RemainingExtraTimeLeaveHours()))
	assert.Equal(t, int64(3600-7200), b.FinalDifferenceSeconds)
	assert.Equal(t, balance.PerformanceNeedsImprovement, b.Performance)
}

func TestCompute_SurplusIsGoodPerformance(t *testing.T) {
	b := balance.Compute("u-1", march, d("2024-03-15"), balance.Carryover{}, 600, 5000, 1800)

	assert.Equal(t, int64(5000-1800-600), b.FinalDifferenceSeconds)
	assert.Equal(t, balance.PerformanceGood, b.Performance)
	assert.Zero(t, b.RemainingExtraTimeLeaveSeconds)
}

func TestCompute_LowTimeExceedingExtraEarnsNothingBack(t *testing.T) {
	b := balance.Compute("u-1", march, d("2024-03-15"), balance.Carryover{}, 5000, 1000, 3600)

	assert.Equal(t, int64(3600), b.RemainingExtraTimeLeaveSeconds)
}

func TestCompute_ZeroDifferenceIsGood(t *testing.T) {
	b := balance.Compute("u-1", march, d("2024-03-15"), balance.Carryover{}, 0, 0, 0)

	assert.Equal(t, balance.PerformanceGood, b.Performance)
	assert.Nil(t, b.Carryover)
}

// =============================================================================
// CARRYOVER AND STATE
// =============================================================================

func TestCompute_CarryoverOnlyAtMonthEnd(t *testing.T) {
	mid := balance.Compute("u-1", march, d("2024-03-30"), balance.Carryover{}, 1800, 0, 7200)
	end := balance.Compute("u-1", march, d("2024-03-31"), balance.Carryover{}, 1800, 0, 7200)

	assert.Equal(t, balance.StateEvaluatedMidPeriod, mid.State)
	assert.Nil(t, mid.Carryover)

	assert.Equal(t, balance.StateEvaluatedAtMonthEnd, end.State)
	require.NotNil(t, end.Carryover)
	assert.Equal(t, int64(7200), end.Carryover.ExtraTimeLeaveSeconds)
	assert.Equal(t, int64(9000), end.Carryover.LowTimeSeconds)
}

func TestCompute_NoLowCarryoverWhenInSurplus(t *testing.T) {
	b := balance.Compute("u-1", march, d("2024-03-31"), balance.Carryover{}, 0, 7200, 3600)

	require.NotNil(t, b.Carryover)
	assert.True(t, b.Carryover.IsZero())
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, balance.StateOpen, balance.StateFor(march, d("2024-02-29")))
	assert.Equal(t, balance.StateOpen, balance.StateFor(march, calendar.Date{}))
	assert.Equal(t, balance.StateEvaluatedMidPeriod, balance.StateFor(march, d("2024-03-01")))
	assert.Equal(t, balance.StateEvaluatedAtMonthEnd, balance.StateFor(march, d("2024-03-31")))
	// AsOf is judged against its own month, not the period's.
	assert.Equal(t, balance.StateEvaluatedAtMonthEnd, balance.StateFor(march, d("2024-04-30")))
}

func TestCompute_OpeningSeedIsApplied(t *testing.T) {
	// GIVEN: February left 1h of unearned leave and 30m of low time
	opening := balance.Carryover{ExtraTimeLeaveSeconds: 3600, LowTimeSeconds: 1800}

	b := balance.Compute("u-1", march, d("2024-03-10"), opening, 0, 3600, 0)

	assert.Equal(t, int64(3600), b.ExtraTimeLeaveSeconds)
	assert.Equal(t, int64(1800), b.LowTimeSeconds)
	assert.Equal(t, int64(3600-3600-1800), b.FinalDifferenceSeconds)
	assert.Equal(t, int64(1800), b.RemainingExtraTimeLeaveSeconds)
	assert.Equal(t, opening, b.Opening)
}

// =============================================================================
// EVALUATE FROM RECORDS
// =============================================================================

func TestEvaluate_FromRecordsAndLeaves(t *testing.T) {
	// GIVEN: one Extra day (+1h), one Low day (-15m), a 2h extra-time leave
	records := []attendance.Record{
		workedOn("2024-03-11", attendance.MaxNormal+3600),
		workedOn("2024-03-12", attendance.MinNormal-900),
		{UserID: "u-1", Date: d("2024-03-13")},
		workedOn("2024-04-01", attendance.MaxNormal+7200), // next month
	}
	leaves := []leave.Request{extraTimeLeave("2024-03-14", "15:00", "17:00")}

	b := balance.Evaluate(balance.Input{
		UserID:  "u-1",
		Period:  march,
		AsOf:    d("2024-03-31"),
		Records: records,
		Leaves:  leaves,
	})

	assert.Equal(t, int64(3600), b.ExtraTimeSeconds)
	assert.Equal(t, int64(900), b.LowTimeSeconds)
	assert.Equal(t, int64(7200), b.ExtraTimeLeaveSeconds)
	assert.Equal(t, int64(3600-(7200+900)), b.FinalDifferenceSeconds)
	assert.Equal(t, int64(7200-2700), b.RemainingExtraTimeLeaveSeconds)
	require.NotNil(t, b.Carryover)
	assert.Equal(t, int64(4500), b.Carryover.ExtraTimeLeaveSeconds)
	assert.Equal(t, int64(4500), b.Carryover.LowTimeSeconds)
}

func TestEvaluate_IsPure(t *testing.T) {
	in := balance.Input{
		UserID:  "u-1",
		Period:  march,
		AsOf:    d("2024-03-20"),
		Records: []attendance.Record{workedOn("2024-03-11", attendance.MaxNormal+60)},
	}

	assert.Equal(t, balance.Evaluate(in), balance.Evaluate(in))
}

// =============================================================================
// MONTHLY STATS
// =============================================================================

func TestMonthly(t *testing.T) {
	holidays := calendar.NewHolidaySet([]calendar.Holiday{{Date: d("2024-03-29"), Description: "Good Friday"}})
	records := []attendance.Record{
		workedOn("2024-03-11", attendance.MaxNormal+600),
		workedOn("2024-03-12", attendance.MinNormal+60),
		{UserID: "u-1", Date: d("2024-03-13")},
	}
	leaves := []leave.Request{
		{ID: "jan", UserID: "u-1", StartDate: d("2024-01-08"), EndDate: d("2024-01-09"), Category: leave.CategoryPaid, Status: leave.StatusApproved},
		{ID: "mar", UserID: "u-1", StartDate: d("2024-03-18"), EndDate: d("2024-03-18"), Category: leave.CategoryPaid, Status: leave.StatusApproved},
		{ID: "lop", UserID: "u-1", StartDate: d("2024-03-19"), EndDate: d("2024-03-19"), Category: leave.CategoryUnpaid, Status: leave.StatusApproved},
	}

	stats := balance.Monthly(balance.Input{
		UserID:   "u-1",
		Period:   march,
		AsOf:     d("2024-03-20"),
		Records:  records,
		Leaves:   leaves,
		Holidays: holidays,
	}, 12)

	// March 2024: 31 days, 5 Sundays, 1 holiday
	assert.Equal(t, 25, stats.WorkingDays)
	assert.Equal(t, 2, stats.PresentDays)
	assert.Equal(t, 1, stats.DayCounts[attendance.Extra])
	assert.Equal(t, 1, stats.DayCounts[attendance.Normal])
	assert.Equal(t, 1, stats.DayCounts[attendance.Absent])
	assert.Equal(t, 1, stats.LeaveDays[leave.CategoryPaid])
	assert.Equal(t, 1, stats.LeaveDays[leave.CategoryUnpaid])
	assert.Equal(t, leave.PaidBalance{Allocated: 12, Used: 3, Remaining: 9}, stats.PaidLeave)
	assert.Equal(t, int64(600), stats.Balance.ExtraTimeSeconds)
	assert.Len(t, stats.Days, 3)
}
