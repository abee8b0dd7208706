/*
Package attendance turns a day's punches into net worked time and a
Normal/Low/Extra classification.

CLASSIFICATION:
  net = (checkOut - checkIn) - breaks, floored at zero

  ┌──────────┬───────────────────────────────┬──────────────────────┐
  │ Low      │ net <  MinNormal (8h15m)      │ deficit = Min - net  │
  │ Normal   │ MinNormal <= net <= MaxNormal │                      │
  │ Extra    │ net >  MaxNormal (8h30m)      │ surplus = net - Max  │
  │ Absent   │ no check-in                   │                      │
  │ Progress │ check-in, no check-out        │                      │
  └──────────┴───────────────────────────────┴──────────────────────┘

BREAKS:
  A break is either an explicit duration in seconds or a start/end pair.
  Entries with neither contribute nothing.

SEE ALSO:
  - balance: sums deficits and surpluses over a reporting period
*/
package attendance

import (
	"time"

	"github.com/warp/payroll-engine/calendar"
)

const (
	// MinNormal is the shortest net working day that is not Low.
	MinNormal int64 = 8*3600 + 15*60
	// MaxNormal is the longest net working day that is not Extra.
	MaxNormal int64 = 8*3600 + 30*60
)

// Thresholds bound the Normal band, in seconds.
type Thresholds struct {
	MinNormal int64 `json:"min_normal_seconds"`
	MaxNormal int64 `json:"max_normal_seconds"`
}

// DefaultThresholds returns the 8h15m-8h30m band.
func DefaultThresholds() Thresholds {
	return Thresholds{MinNormal: MinNormal, MaxNormal: MaxNormal}
}

// OrDefault replaces an unset band with the defaults.
func (t Thresholds) OrDefault() Thresholds {
	if t.MinNormal <= 0 && t.MaxNormal <= 0 {
		return DefaultThresholds()
	}
	return t
}

// =============================================================================
// RECORDS
// =============================================================================

// Break is one pause in a working session.
type Break struct {
	Seconds *int64     `json:"seconds,omitempty"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
}

// Duration returns the break length in seconds, never negative.
func (b Break) Duration() int64 {
	switch {
	case b.Seconds != nil:
		return max(0, *b.Seconds)
	case b.Start != nil && b.End != nil:
		return max(0, int64(b.End.Sub(*b.Start)/time.Second))
	default:
		return 0
	}
}

// Record is one user's attendance for one day.
type Record struct {
	ID       string        `json:"id"`
	UserID   string        `json:"user_id"`
	Date     calendar.Date `json:"date"`
	CheckIn  *time.Time    `json:"check_in,omitempty"`
	CheckOut *time.Time    `json:"check_out,omitempty"`
	Breaks   []Break       `json:"breaks,omitempty"`
}

// BreakSeconds sums every break on the record.
func (r Record) BreakSeconds() int64 {
	var total int64
	for _, b := range r.Breaks {
		total += b.Duration()
	}
	return total
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

type Classification string

const (
	Absent     Classification = "absent"
	InProgress Classification = "in_progress"
	Low        Classification = "low"
	Normal     Classification = "normal"
	Extra      Classification = "extra"
)

// DayFacts is the classified view of one record.
type DayFacts struct {
	Date             calendar.Date  `json:"date"`
	Classification   Classification `json:"classification"`
	SessionSeconds   int64          `json:"session_seconds"`
	BreakSeconds     int64          `json:"break_seconds"`
	NetWorkedSeconds int64          `json:"net_worked_seconds"`
	LowSeconds       int64          `json:"low_seconds"`
	ExtraSeconds     int64          `json:"extra_seconds"`
}

// Classify classifies r against the default band.
func Classify(r Record) DayFacts {
	return ClassifyWith(r, DefaultThresholds())
}

// ClassifyWith classifies r against th.
func ClassifyWith(r Record, th Thresholds) DayFacts {
	th = th.OrDefault()
	facts := DayFacts{Date: r.Date}

	if r.CheckIn == nil {
		facts.Classification = Absent
		return facts
	}
	if r.CheckOut == nil {
		facts.Classification = InProgress
		return facts
	}

	// A check-out before check-in is bad data; nothing was worked.
	facts.SessionSeconds = max(0, int64(r.CheckOut.Sub(*r.CheckIn)/time.Second))
	facts.BreakSeconds = r.BreakSeconds()
	facts.NetWorkedSeconds = max(0, facts.SessionSeconds-facts.BreakSeconds)

	switch net := facts.NetWorkedSeconds; {
	case net < th.MinNormal:
		facts.Classification = Low
		facts.LowSeconds = th.MinNormal - net
	case net > th.MaxNormal:
		facts.Classification = Extra
		facts.ExtraSeconds = net - th.MaxNormal
	default:
		facts.Classification = Normal
	}
	return facts
}
