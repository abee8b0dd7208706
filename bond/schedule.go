package bond

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// TIMELINE
// =============================================================================

type Status string

const (
	StatusExpired Status = "expired"
	StatusActive  Status = "active"
	StatusFuture  Status = "future"
)

// Entry is one bond placed on the calendar.
type Entry struct {
	Index        int             `json:"index"`
	Type         Type            `json:"type"`
	PeriodMonths int             `json:"period_months"`
	Salary       decimal.Decimal `json:"salary"`
	Start        calendar.Date   `json:"start_date"`
	End          calendar.Date   `json:"end_date"`
}

// StatusAt classifies the entry relative to today.
func (e Entry) StatusAt(today calendar.Date) Status {
	switch {
	case today.AfterOrEqual(e.End):
		return StatusExpired
	case today.AfterOrEqual(e.Start):
		return StatusActive
	default:
		return StatusFuture
	}
}

// Remaining is the calendar time left from today until the entry ends.
// Zero once the entry has expired.
func (e Entry) Remaining(today calendar.Date) calendar.MonthsDays {
	return calendar.Diff(today, e.End)
}

// Timeline is the ordered, non-overlapping chain of bonds.
type Timeline struct {
	JoiningDate calendar.Date `json:"joining_date"`
	Entries     []Entry       `json:"entries"`
}

// Schedule chains bonds from joiningDate. An invalid joining date yields an
// empty timeline.
func Schedule(joiningDate calendar.Date, bonds []Bond) Timeline {
	tl := Timeline{JoiningDate: joiningDate}
	if !joiningDate.IsValid() {
		return tl
	}

	start := joiningDate
	for i, b := range Active(bonds) {
		if i > 0 {
			prev := tl.Entries[i-1]
			start = prev.Start.AddMonths(prev.PeriodMonths).AddDays(1)
		}
		tl.Entries = append(tl.Entries, Entry{
			Index:        i,
			Type:         b.Type,
			PeriodMonths: b.PeriodMonths,
			Salary:       b.Salary,
			Start:        start,
			End:          start.AddMonths(b.PeriodMonths),
		})
	}
	return tl
}

// Current returns the active entry, if any.
func (tl Timeline) Current(today calendar.Date) (Entry, bool) {
	for _, e := range tl.Entries {
		if e.StatusAt(today) == StatusActive {
			return e, true
		}
	}
	return Entry{}, false
}

// End returns the final entry's end date, or the zero Date for an empty chain.
func (tl Timeline) End() calendar.Date {
	if len(tl.Entries) == 0 {
		return calendar.Date{}
	}
	return tl.Entries[len(tl.Entries)-1].End
}

// TotalRemaining is the time left until the final bond ends.
type TotalRemaining struct {
	calendar.MonthsDays
	Ended bool
}

// String renders the remaining time, or "-" once every bond has expired.
func (r TotalRemaining) String() string {
	if r.Ended {
		return "-"
	}
	return r.MonthsDays.String()
}

func (r TotalRemaining) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// TotalRemaining measures from today to the end of the chain. It reports
// Ended when no bond is active or still to come.
func (tl Timeline) TotalRemaining(today calendar.Date) TotalRemaining {
	for _, e := range tl.Entries {
		if e.StatusAt(today) != StatusExpired {
			return TotalRemaining{MonthsDays: calendar.Diff(today, tl.End())}
		}
	}
	return TotalRemaining{Ended: true}
}

// =============================================================================
// BOND INFO
// =============================================================================

// Info is the per-bond status view handed to presentation.
type Info struct {
	Entry
	Status    Status `json:"status"`
	Remaining string `json:"remaining"`
}

// Infos returns status and remaining time for every entry.
func (tl Timeline) Infos(today calendar.Date) []Info {
	out := make([]Info, len(tl.Entries))
	for i, e := range tl.Entries {
		out[i] = Info{Entry: e, Status: e.StatusAt(today), Remaining: e.Remaining(today).String()}
	}
	return out
}
