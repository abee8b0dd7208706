/*
Package calendar provides timezone-independent calendar dates and the
working-day counter the rest of the engine builds on.

KEY CONCEPTS:
  - Date: a (year, month, day) value with no clock or location attached
  - HolidaySet: exact-date membership for company holidays
  - Period: an inclusive [Start, End] date range
  - CountQualifyingDays: the single definition of "working day"

WORKING DAY:
  A day qualifies unless it is a Sunday or a listed holiday. Saturdays
  count. Every leave-day and working-day figure in the engine goes through
  CountQualifyingDays so there is exactly one rule.

USAGE:
  holidays := calendar.NewHolidaySet([]calendar.Holiday{
      {Date: calendar.MustParse("2024-01-01"), Description: "New Year"},
  })
  n := calendar.CountQualifyingDays(
      calendar.MustParse("2024-01-01"), calendar.MustParse("2024-01-07"), holidays)
  // n == 5

SEE ALSO:
  - period.go: Period and month ranges
  - attendance, leave, balance: consumers of Date and CountQualifyingDays
*/
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a string does not name a real calendar day.
var ErrInvalidDate = errors.New("invalid calendar date")

const layout = "2006-01-02"

// =============================================================================
// DATE
// =============================================================================

// Date is a calendar day. The zero value is invalid.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the date for the given components. Out-of-range components
// are kept as-is; use IsValid to check them.
func New(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Parse reads a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// MustParse is Parse for literals in tests and fixtures. It panics on bad input.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsValid reports whether d names a real day (no month/day overflow, year > 0).
func (d Date) IsValid() bool {
	if d.Year <= 0 || d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return d.Day <= daysIn(d.Year, d.Month)
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns UTC midnight of d. All arithmetic runs on this value so no
// step ever crosses a DST or zone boundary.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool        { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool         { return d.Compare(o) > 0 }
func (d Date) BeforeOrEqual(o Date) bool { return d.Compare(o) <= 0 }
func (d Date) AfterOrEqual(o Date) bool  { return d.Compare(o) >= 0 }

// Arithmetic. AddMonths follows time.AddDate normalization: Jan 31 + 1 month
// lands in early March, never clamps to Feb 28.
func (d Date) AddDays(n int) Date   { return FromTime(d.Time().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return FromTime(d.Time().AddDate(0, n, 0)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsSunday() bool        { return d.Weekday() == time.Sunday }

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date { return Date{Year: d.Year, Month: d.Month, Day: 1} }

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: daysIn(d.Year, d.Month)}
}

// IsLastDayOfMonth reports whether d is the final day of its own month.
func (d Date) IsLastDayOfMonth() bool { return d.IsValid() && d.Day == daysIn(d.Year, d.Month) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the signed number of days from `from` to `to`.
func DaysBetween(from, to Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

// MonthsDays is a calendar difference expressed as whole months plus days.
type MonthsDays struct {
	Months int
	Days   int
}

func (md MonthsDays) IsZero() bool { return md.Months == 0 && md.Days == 0 }

func (md MonthsDays) String() string {
	return fmt.Sprintf("%d %s %d %s", md.Months, plural(md.Months, "month"), md.Days, plural(md.Days, "day"))
}

// Diff returns the calendar difference from `from` up to `to`: the largest
// number of months m with from+m months <= to, then the leftover days.
// Returns zero when to is not after from.
func Diff(from, to Date) MonthsDays {
	if !from.IsValid() || !to.IsValid() || !to.After(from) {
		return MonthsDays{}
	}
	months := (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
	for months > 0 && from.AddMonths(months).After(to) {
		months--
	}
	return MonthsDays{Months: months, Days: DaysBetween(from.AddMonths(months), to)}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
