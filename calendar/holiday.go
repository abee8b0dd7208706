package calendar

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a company holiday. Only the date matters to the engine.
type Holiday struct {
	Date        Date   `json:"date"`
	Description string `json:"description"`
}

// HolidaySet answers exact calendar-date membership. The zero value is an
// empty set and is safe to use.
type HolidaySet map[Date]struct{}

// NewHolidaySet builds a set from a holiday list, ignoring invalid dates.
func NewHolidaySet(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		if h.Date.IsValid() {
			set[h.Date] = struct{}{}
		}
	}
	return set
}

// Contains reports whether d is a holiday.
func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// IsWorkday reports whether d counts as a working day: not a Sunday and not
// a holiday.
func (s HolidaySet) IsWorkday(d Date) bool {
	return !d.IsSunday() && !s.Contains(d)
}

// CountQualifyingDays counts the working days in [start, end] inclusive.
// It returns 0 when either date is invalid or start is after end.
func CountQualifyingDays(start, end Date, holidays HolidaySet) int {
	count := 0
	for _, d := range (Period{Start: start, End: end}).Days() {
		if holidays.IsWorkday(d) {
			count++
		}
	}
	return count
}
