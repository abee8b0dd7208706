/*
Package balance combines attendance and extra-time leave over a reporting
period into a net time balance and month-end carryover.

COMPUTATION:
  low, extra      = Σ per-day deficit / surplus            (attendance)
  leave           = Σ extra-time leave spent               (leave)
  final           = extra - (leave + low)
  remainingLeave  = max(0, leave - max(0, extra - low))

  final >= 0  -> Good Performance
  final <  0  -> Needs Improvement

CARRYOVER:
  Only when AsOf is the last day of its own month:
    carryover leave = remainingLeave
    carryover low   = |final| when final < 0

  The engine never applies carryover itself. The caller persists it and
  passes it back as Input.Opening for the next period.

STATES (determined by AsOf alone):
  Open -> EvaluatedMidPeriod -> EvaluatedAtMonthEnd

SEE ALSO:
  - attendance: per-day classification
  - leave: extra-time leave hours
  - api/scheduler.go: persists month-end carryover
*/
package balance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/leave"
)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Carryover is the unresolved balance moved from one month into the next.
type Carryover struct {
	ExtraTimeLeaveSeconds int64 `json:"extra_time_leave_seconds"`
	LowTimeSeconds        int64 `json:"low_time_seconds"`
}

func (c Carryover) IsZero() bool { return c.ExtraTimeLeaveSeconds == 0 && c.LowTimeSeconds == 0 }

func (c Carryover) ExtraTimeLeaveHours() decimal.Decimal {
	return leave.SecondsToHours(c.ExtraTimeLeaveSeconds)
}

// Input is the snapshot a balance is computed from. Records and Leaves may
// hold other users' or other periods' data; Evaluate filters them.
type Input struct {
	UserID   string
	Period   calendar.Period
	AsOf     calendar.Date
	Records  []attendance.Record
	Leaves   []leave.Request
	Holidays calendar.HolidaySet

	// Opening is last period's carryover, applied by the caller.
	Opening Carryover

	// Zero values select the package defaults.
	Thresholds attendance.Thresholds
	Rules      leave.Rules
}

type State string

const (
	StateOpen                State = "open"
	StateEvaluatedMidPeriod  State = "evaluated_mid_period"
	StateEvaluatedAtMonthEnd State = "evaluated_at_month_end"
)

type Performance string

const (
	PerformanceGood             Performance = "Good Performance"
	PerformanceNeedsImprovement Performance = "Needs Improvement"
)

// TimeBalance is the net time position for one user and period.
type TimeBalance struct {
	UserID                         string          `json:"user_id"`
	Period                         calendar.Period `json:"period"`
	AsOf                           calendar.Date   `json:"as_of"`
	State                          State           `json:"state"`
	LowTimeSeconds                 int64           `json:"low_time_seconds"`
	ExtraTimeSeconds               int64           `json:"extra_time_seconds"`
	ExtraTimeLeaveSeconds          int64           `json:"extra_time_leave_seconds"`
	FinalDifferenceSeconds         int64           `json:"final_difference_seconds"`
	RemainingExtraTimeLeaveSeconds int64           `json:"remaining_extra_time_leave_seconds"`
	Performance                    Performance     `json:"performance"`
	Opening                        Carryover       `json:"opening"`

	// Carryover is set only in StateEvaluatedAtMonthEnd.
	Carryover *Carryover `json:"carryover,omitempty"`
}

func (b TimeBalance) ExtraTimeLeaveHours() decimal.Decimal {
	return leave.SecondsToHours(b.ExtraTimeLeaveSeconds)
}

func (b TimeBalance) RemainingExtraTimeLeaveHours() decimal.Decimal {
	return leave.SecondsToHours(b.RemainingExtraTimeLeaveSeconds)
}

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluate computes the time balance for in.
func Evaluate(in Input) TimeBalance {
	days := attendance.Summarize(in.Records, in.UserID, in.Period, in.Thresholds)
	leaves := leave.ExtraTimeLeave(leave.ForPeriod(in.Leaves, in.UserID, in.Period), in.Holidays, in.Rules)
	return Compute(in.UserID, in.Period, in.AsOf, in.Opening, days.LowTimeSeconds, days.ExtraTimeSeconds, leaves.ExtraTimeLeaveSeconds)
}

// Compute applies the balance rules to already-aggregated totals, folding
// in the opening carryover.
func Compute(userID string, period calendar.Period, asOf calendar.Date, opening Carryover, low, extra, extraLeave int64) TimeBalance {
	low += max(0, opening.LowTimeSeconds)
	extraLeave += max(0, opening.ExtraTimeLeaveSeconds)

	final := extra - (extraLeave + low)
	remaining := max(0, extraLeave-max(0, extra-low))

	b := TimeBalance{
		UserID:                         userID,
		Period:                         period,
		AsOf:                           asOf,
		State:                          StateFor(period, asOf),
		LowTimeSeconds:                 low,
		ExtraTimeSeconds:               extra,
		ExtraTimeLeaveSeconds:          extraLeave,
		FinalDifferenceSeconds:         final,
		RemainingExtraTimeLeaveSeconds: remaining,
		Performance:                    PerformanceGood,
		Opening:                        opening,
	}
	if final < 0 {
		b.Performance = PerformanceNeedsImprovement
	}

	if b.State == StateEvaluatedAtMonthEnd {
		co := Carryover{ExtraTimeLeaveSeconds: remaining}
		if final < 0 {
			co.LowTimeSeconds = -final
		}
		b.Carryover = &co
	}
	return b
}

// StateFor reports how far evaluation of period has progressed as of asOf.
func StateFor(period calendar.Period, asOf calendar.Date) State {
	switch {
	case !asOf.IsValid() || (period.Start.IsValid() && asOf.Before(period.Start)):
		return StateOpen
	case asOf.IsLastDayOfMonth():
		return StateEvaluatedAtMonthEnd
	default:
		return StateEvaluatedMidPeriod
	}
}
