package calendar

import "time"

// =============================================================================
// PERIOD - Inclusive date range used for reporting
// =============================================================================

// Period is the inclusive range [Start, End]. Monthly stats, leave filtering
// and carryover all work on a Period.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// MonthPeriod returns the full calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	start := New(year, month, 1)
	return Period{Start: start, End: start.EndOfMonth()}
}

// PeriodFor returns the calendar month that contains d.
func PeriodFor(d Date) Period {
	return Period{Start: d.StartOfMonth(), End: d.EndOfMonth()}
}

func (p Period) IsValid() bool {
	return p.Start.IsValid() && p.End.IsValid() && p.Start.BeforeOrEqual(p.End)
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period.
func (p Period) Days() []Date {
	if !p.IsValid() {
		return nil
	}
	days := make([]Date, 0, DaysBetween(p.Start, p.End)+1)
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// WorkingDays counts qualifying days in the period.
func (p Period) WorkingDays(holidays HolidaySet) int {
	return CountQualifyingDays(p.Start, p.End, holidays)
}

// NextMonth returns the calendar month after the one p starts in.
func (p Period) NextMonth() Period {
	return PeriodFor(p.Start.StartOfMonth().AddMonths(1))
}

// PreviousMonth returns the calendar month before the one p starts in.
func (p Period) PreviousMonth() Period {
	return PeriodFor(p.Start.StartOfMonth().AddDays(-1))
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
