package balance

import (
	"time"

	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/leave"
)

// MonthlyStats is the per-user report for one reporting period.
type MonthlyStats struct {
	UserID           string                            `json:"user_id"`
	WorkingDays      int                               `json:"working_days"`
	PresentDays      int                               `json:"present_days"`
	DayCounts        map[attendance.Classification]int `json:"day_counts"`
	NetWorkedSeconds int64                             `json:"net_worked_seconds"`
	LeaveDays        map[leave.Category]int            `json:"leave_days"`
	PaidLeave        leave.PaidBalance                 `json:"paid_leave"`
	Balance          TimeBalance                       `json:"balance"`
	Days             []attendance.DayFacts             `json:"days,omitempty"`
}

// Monthly builds the full report for in. paidAllocation is the user's yearly
// paid-leave allocation; usage runs from January 1 of the period's year
// through the period end.
func Monthly(in Input, paidAllocation int) MonthlyStats {
	days := attendance.Summarize(in.Records, in.UserID, in.Period, in.Thresholds)
	periodLeaves := leave.ForPeriod(in.Leaves, in.UserID, in.Period)
	extraLeave := leave.ExtraTimeLeave(periodLeaves, in.Holidays, in.Rules)
	yearToDate := calendar.Period{Start: calendar.New(in.Period.End.Year, time.January, 1), End: in.Period.End}

	return MonthlyStats{
		UserID:           in.UserID,
		WorkingDays:      in.Period.WorkingDays(in.Holidays),
		PresentDays:      days.PresentDays(),
		DayCounts:        days.Counts,
		NetWorkedSeconds: days.NetWorkedSeconds,
		LeaveDays:        leave.DaysByCategory(periodLeaves, in.Holidays),
		PaidLeave:        leave.PaidLeaveBalance(paidAllocation, leave.ForPeriod(in.Leaves, in.UserID, yearToDate), in.Holidays),
		Balance:          Compute(in.UserID, in.Period, in.AsOf, in.Opening, days.LowTimeSeconds, days.ExtraTimeSeconds, extraLeave.ExtraTimeLeaveSeconds),
		Days:             days.Days,
	}
}
