package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// EXTRA-TIME LEAVE
// =============================================================================

// ExtraTimeSeconds returns how much extra-time leave req spends, in seconds.
// Requests that are not approved or not extra-time leave spend nothing.
func ExtraTimeSeconds(req Request, holidays calendar.HolidaySet, rules Rules) int64 {
	rules = rules.OrDefault()
	if !req.IsApproved() || !rules.CountsAsExtraTime(req) {
		return 0
	}

	if req.Category == CategoryHalfDay {
		return rules.HalfDaySeconds
	}

	if req.StartTime != nil && req.EndTime != nil {
		minutes := req.EndTime.Minutes() - req.StartTime.Minutes()
		if minutes < 0 {
			minutes += 24 * 60
		}
		days := calendar.CountQualifyingDays(req.StartDate, req.EndDate, holidays)
		return int64(minutes) * 60 * int64(days)
	}

	// No time range: raw inclusive calendar days, Sundays and holidays included.
	if !req.StartDate.IsValid() || !req.EndDate.IsValid() || req.EndDate.Before(req.StartDate) {
		return 0
	}
	days := calendar.DaysBetween(req.StartDate, req.EndDate) + 1
	return int64(days) * rules.FallbackSecondsPerDay
}

// Summary is the extra-time leave spent over a set of requests.
type Summary struct {
	ExtraTimeLeaveSeconds int64    `json:"extra_time_leave_seconds"`
	RequestIDs            []string `json:"request_ids,omitempty"`
}

func (s Summary) Hours() decimal.Decimal { return SecondsToHours(s.ExtraTimeLeaveSeconds) }

// ExtraTimeLeave totals extra-time leave across reqs.
func ExtraTimeLeave(reqs []Request, holidays calendar.HolidaySet, rules Rules) Summary {
	var s Summary
	for _, req := range reqs {
		if secs := ExtraTimeSeconds(req, holidays, rules); secs > 0 {
			s.ExtraTimeLeaveSeconds += secs
			s.RequestIDs = append(s.RequestIDs, req.ID)
		}
	}
	return s
}

// =============================================================================
// LEAVE DAYS
// =============================================================================

// LeaveDays sums qualifying days over approved requests of category.
func LeaveDays(reqs []Request, category Category, holidays calendar.HolidaySet) int {
	total := 0
	for _, req := range reqs {
		if !req.IsApproved() || req.Category != category {
			continue
		}
		total += calendar.CountQualifyingDays(req.StartDate, req.EndDate, holidays)
	}
	return total
}

// DaysByCategory returns LeaveDays for every category.
func DaysByCategory(reqs []Request, holidays calendar.HolidaySet) map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		out[c] = LeaveDays(reqs, c, holidays)
	}
	return out
}

// PaidBalance is the paid-leave allocation against what has been used.
type PaidBalance struct {
	Allocated int `json:"allocated"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// PaidLeaveBalance reports paid-leave usage against allocation. Remaining
// goes negative when usage exceeds the allocation.
func PaidLeaveBalance(allocation int, reqs []Request, holidays calendar.HolidaySet) PaidBalance {
	used := LeaveDays(reqs, CategoryPaid, holidays)
	return PaidBalance{Allocated: allocation, Used: used, Remaining: allocation - used}
}

// =============================================================================
// FILTERS
// =============================================================================

// ForPeriod returns userID's approved requests that start inside period.
// A request belongs to the period its first day falls in, so a leave that
// straddles a month end is counted once. An empty userID matches everyone.
func ForPeriod(reqs []Request, userID string, period calendar.Period) []Request {
	var out []Request
	for _, req := range reqs {
		if !req.IsApproved() {
			continue
		}
		if userID != "" && req.UserID != userID {
			continue
		}
		if period.Contains(req.StartDate) {
			out = append(out, req)
		}
	}
	return out
}
