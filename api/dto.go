/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types that
  already carry JSON tags (bond.Info, salary.Entry, balance.MonthlyStats)
  are returned as they are; DTOs exist where the API adds fields or takes
  input.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/balance"
	"github.com/warp/payroll-engine/bond"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/leave"
	"github.com/warp/payroll-engine/salary"
)

// =============================================================================
// USERS
// =============================================================================

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Name                string        `json:"name"`
	Email               string        `json:"email"`
	JoiningDate         calendar.Date `json:"joining_date"`
	PaidLeaveAllocation int           `json:"paid_leave_allocation"`
	Bonds               []bond.Bond   `json:"bonds"`
}

// UpdateBondsRequest is the body of PUT /api/users/{id}/bonds.
type UpdateBondsRequest struct {
	Bonds []bond.Bond `json:"bonds"`
}

// =============================================================================
// BONDS
// =============================================================================

// BondTimelineResponse is a user's bond timeline evaluated on Today.
type BondTimelineResponse struct {
	UserID         string              `json:"user_id"`
	JoiningDate    calendar.Date       `json:"joining_date"`
	Today          calendar.Date       `json:"today"`
	EndDate        calendar.Date       `json:"end_date"`
	Bonds          []bond.Info         `json:"bonds"`
	Current        *bond.Info          `json:"current,omitempty"`
	TotalRemaining bond.TotalRemaining `json:"total_remaining"`
}

// =============================================================================
// SALARY
// =============================================================================

// SalaryResponse is a user's month-by-month pay schedule.
type SalaryResponse struct {
	UserID    string          `json:"user_id"`
	Rows      []salary.Entry  `json:"rows"`
	Total     decimal.Decimal `json:"total"`
	PaidTotal decimal.Decimal `json:"paid_total"`
}

// UpdateSalaryRequest sets a custom amount for one month.
type UpdateSalaryRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// MarkPaidRequest records who paid a month. PaidAt defaults to now.
type MarkPaidRequest struct {
	PaidBy string     `json:"paid_by"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// =============================================================================
// ATTENDANCE AND LEAVE
// =============================================================================

// AttendanceRequest is one day of attendance for a user.
type AttendanceRequest struct {
	Date     calendar.Date      `json:"date"`
	CheckIn  *time.Time         `json:"check_in,omitempty"`
	CheckOut *time.Time         `json:"check_out,omitempty"`
	Breaks   []attendance.Break `json:"breaks,omitempty"`
}

// AttendanceResponse echoes the stored record with its classification.
type AttendanceResponse struct {
	Record attendance.Record   `json:"record"`
	Facts  attendance.DayFacts `json:"facts"`
}

// LeaveRequest is the body of POST /api/users/{id}/leaves.
type LeaveRequest struct {
	StartDate calendar.Date    `json:"start_date"`
	EndDate   calendar.Date    `json:"end_date"`
	Category  leave.Category   `json:"category"`
	Reason    string           `json:"reason"`
	StartTime *leave.ClockTime `json:"start_time,omitempty"`
	EndTime   *leave.ClockTime `json:"end_time,omitempty"`
}

// LeaveDTO is a stored leave request with its extra-time hours.
type LeaveDTO struct {
	leave.Request
	ExtraTimeHours decimal.Decimal `json:"extra_time_hours"`
}

// =============================================================================
// STATS
// =============================================================================

// HoursDTO mirrors the second-based balance fields in hours.
type HoursDTO struct {
	LowTime                 decimal.Decimal `json:"low_time"`
	ExtraTime               decimal.Decimal `json:"extra_time"`
	ExtraTimeLeave          decimal.Decimal `json:"extra_time_leave"`
	FinalDifference         decimal.Decimal `json:"final_difference"`
	RemainingExtraTimeLeave decimal.Decimal `json:"remaining_extra_time_leave"`
}

// StatsDTO is one user's monthly report.
type StatsDTO struct {
	balance.MonthlyStats
	Name  string   `json:"name"`
	Hours HoursDTO `json:"hours"`
}

// TeamStatsResponse holds every user's report for one period.
type TeamStatsResponse struct {
	Period calendar.Period `json:"period"`
	AsOf   calendar.Date   `json:"as_of"`
	Users  []StatsDTO      `json:"users"`
}

// CloseMonthResponse reports a carryover run.
type CloseMonthResponse struct {
	Date      calendar.Date `json:"date"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayRequest is the body of POST /api/holidays.
type HolidayRequest struct {
	Date        calendar.Date `json:"date"`
	Description string        `json:"description"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toStatsDTO(name string, s balance.MonthlyStats) StatsDTO {
	b := s.Balance
	return StatsDTO{
		MonthlyStats: s,
		Name:         name,
		Hours: HoursDTO{
			LowTime:                 leave.SecondsToHours(b.LowTimeSeconds),
			ExtraTime:               leave.SecondsToHours(b.ExtraTimeSeconds),
			ExtraTimeLeave:          b.ExtraTimeLeaveHours(),
			FinalDifference:         leave.SecondsToHours(b.FinalDifferenceSeconds),
			RemainingExtraTimeLeave: b.RemainingExtraTimeLeaveHours(),
		},
	}
}
