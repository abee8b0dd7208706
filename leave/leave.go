/*
Package leave converts approved leave requests into leave days and
extra-time leave hours.

CATEGORIES:
  paid, unpaid (loss of pay), half_day, extra_time, other

EXTRA-TIME LEAVE HOURS (per approved request):
  extra_time with start+end time:
      perDay = (end - start) wrapped over midnight
      hours  = perDay x CountQualifyingDays(startDate, endDate)
  extra_time without times:
      hours  = (raw calendar days, inclusive) x 8.25
      Sundays and holidays are NOT excluded on this path.
  half_day:
      4h flat, whatever the span; counted as extra-time leave only when the
      reason carries the "[Extra Time Leave]" marker.

LEAVE DAYS:
  Per-category day counts sum CountQualifyingDays over approved requests and
  never look at the extra-time rules.

SEE ALSO:
  - calendar/holiday.go: CountQualifyingDays
  - balance: consumes Summary.ExtraTimeLeaveSeconds
*/
package leave

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// ErrInvalidClockTime is returned for a wall-clock value that is not HH:MM.
var ErrInvalidClockTime = errors.New("invalid clock time")

// ExtraTimeMarker tags a half-day taken against the extra-time balance.
const ExtraTimeMarker = "[Extra Time Leave]"

// =============================================================================
// TYPES
// =============================================================================

type Category string

const (
	CategoryPaid      Category = "paid"
	CategoryUnpaid    Category = "unpaid"
	CategoryHalfDay   Category = "half_day"
	CategoryExtraTime Category = "extra_time"
	CategoryOther     Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPaid, CategoryUnpaid, CategoryHalfDay, CategoryExtraTime, CategoryOther}

func (c Category) IsValid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ClockTime is a wall-clock HH:MM with no date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime reads "HH:MM" in 24-hour form. Minutes take two digits and
// nothing may follow them.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) Minutes() int   { return c.Hour*60 + c.Minute }
func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Request is a leave request as stored by the surrounding system.
type Request struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	Category  Category      `json:"category"`
	Status    Status        `json:"status"`
	Reason    string        `json:"reason"`
	StartTime *ClockTime    `json:"start_time,omitempty"`
	EndTime   *ClockTime    `json:"end_time,omitempty"`
}

func (r Request) IsApproved() bool { return r.Status == StatusApproved }

// =============================================================================
// RULES
// =============================================================================

// Rules holds the hour constants of the extra-time calculation.
type Rules struct {
	HalfDaySeconds        int64  `json:"half_day_seconds"`
	FallbackSecondsPerDay int64  `json:"fallback_seconds_per_day"`
	ExtraTimeMarker       string `json:"extra_time_marker"`
}

// DefaultRules returns 4h half days, 8.25h fallback days and the standard marker.
func DefaultRules() Rules {
	return Rules{
		HalfDaySeconds:        4 * 3600,
		FallbackSecondsPerDay: 8*3600 + 15*60,
		ExtraTimeMarker:       ExtraTimeMarker,
	}
}

// OrDefault fills unset fields from DefaultRules.
func (r Rules) OrDefault() Rules {
	def := DefaultRules()
	if r.HalfDaySeconds <= 0 {
		r.HalfDaySeconds = def.HalfDaySeconds
	}
	if r.FallbackSecondsPerDay <= 0 {
		r.FallbackSecondsPerDay = def.FallbackSecondsPerDay
	}
	if r.ExtraTimeMarker == "" {
		r.ExtraTimeMarker = def.ExtraTimeMarker
	}
	return r
}

// CountsAsExtraTime reports whether req is spent against the extra-time balance.
func (r Rules) CountsAsExtraTime(req Request) bool {
	switch req.Category {
	case CategoryExtraTime:
		return true
	case CategoryHalfDay:
		return strings.Contains(req.Reason, r.OrDefault().ExtraTimeMarker)
	default:
		return false
	}
}

// HoursToSeconds converts a decimal hour figure to whole seconds.
func HoursToSeconds(h decimal.Decimal) int64 {
	return h.Mul(decimal.NewFromInt(3600)).Round(0).IntPart()
}

// SecondsToHours converts whole seconds to hours.
func SecondsToHours(s int64) decimal.Decimal {
	return decimal.NewFromInt(s).DivRound(decimal.NewFromInt(3600), 4)
}
