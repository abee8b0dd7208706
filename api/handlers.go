/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the calendar, attendance, leave, balance, bond and salary
  engines via REST API. Handlers load a snapshot from the store, call the
  pure engine functions and serialize the result.

ENDPOINTS:
  Users:
    GET    /api/users                              List users
    POST   /api/users                              Create user
    GET    /api/users/{id}                         Get user
    PUT    /api/users/{id}/bonds                   Replace bonds (regenerates salary)
    GET    /api/users/{id}/bonds?today=            Bond timeline

  Salary:
    GET    /api/users/{id}/salary                  Pay schedule
    GET    /api/users/{id}/salary.pdf              Pay schedule as PDF
    PUT    /api/users/{id}/salary/{year}/{month}   Custom amount
    POST   /api/users/{id}/salary/{year}/{month}/paid   Mark paid
    DELETE /api/users/{id}/salary/{year}/{month}/paid   Mark unpaid

  Attendance and leave:
    POST   /api/users/{id}/attendance              Record a day
    POST   /api/users/{id}/leaves                  Submit leave
    POST   /api/leaves/{id}/approve                Approve leave
    POST   /api/leaves/{id}/reject                 Reject leave

  Stats:
    GET    /api/users/{id}/stats?year=&month=&as_of=   Monthly report
    GET    /api/stats?year=&month=&as_of=              Every user's report
    POST   /api/admin/carryover?date=                  Close the month
    GET    /api/policy                                 Active work policy

  Holidays:
    GET    /api/holidays                           List holidays
    POST   /api/holidays                           Create holiday
    DELETE /api/holidays/{id}                      Delete holiday

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Automatic month close
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/balance"
	"github.com/warp/payroll-engine/bond"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/leave"
	"github.com/warp/payroll-engine/salary"
	"github.com/warp/payroll-engine/store/sqlite"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Policy factory.WorkPolicy

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store and work policy.
func NewHandler(store *sqlite.Store, policy factory.WorkPolicy) *Handler {
	return &Handler{
		Store:  store,
		Policy: policy,
		Now:    time.Now,
	}
}

// renderStatement draws the salary statement; tests replace it.
var renderStatement = salary.WriteStatementPDF

func (h *Handler) today() calendar.Date {
	return calendar.FromTime(h.Now())
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users", err)
		return
	}
	if users == nil {
		users = []sqlite.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateUser creates a user with its bonds.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if !req.JoiningDate.IsValid() {
		writeError(w, http.StatusBadRequest, "joining_date is required", nil)
		return
	}
	if req.PaidLeaveAllocation < 0 {
		writeError(w, http.StatusBadRequest, "paid_leave_allocation must not be negative", nil)
		return
	}
	if err := bond.Validate(req.Bonds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bonds", err)
		return
	}

	user, err := h.Store.SaveUser(r.Context(), sqlite.User{
		Name:                req.Name,
		Email:               req.Email,
		JoiningDate:         req.JoiningDate,
		PaidLeaveAllocation: req.PaidLeaveAllocation,
		Bonds:               req.Bonds,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	log.Info().Str("user_id", user.ID).Int("bonds", len(user.Bonds)).Msg("user created")
	writeJSON(w, http.StatusCreated, user)
}

// =============================================================================
// BOND HANDLERS
// =============================================================================

// UpdateBonds replaces a user's bonds. The salary schedule is regenerated;
// edited months that are still scheduled keep their amount and paid mark.
func (h *Handler) UpdateBonds(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	var req UpdateBondsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := bond.Validate(req.Bonds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bonds", err)
		return
	}

	stored, err := h.Store.LoadOverrides(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load salary", err)
		return
	}
	rows := salary.Regenerate(user.JoiningDate, req.Bonds, stored)
	kept := stored.Retain(rows)

	if err := h.Store.UpdateBonds(r.Context(), user.ID, req.Bonds, kept); err != nil {
		writeStoreError(w, "failed to update bonds", err)
		return
	}

	log.Info().Str("user_id", user.ID).Int("bonds", len(req.Bonds)).Int("salary_rows", len(rows)).Msg("bonds updated")
	writeJSON(w, http.StatusOK, SalaryResponse{
		UserID:    user.ID,
		Rows:      nonNilRows(rows),
		Total:     salary.Total(rows),
		PaidTotal: salary.PaidTotal(rows),
	})
}

// GetBonds returns the bond timeline as of ?today= (default: the clock).
func (h *Handler) GetBonds(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	today, ok := dateParam(w, r, "today", h.today())
	if !ok {
		return
	}

	tl := bond.Schedule(user.JoiningDate, user.Bonds)
	infos := tl.Infos(today)
	resp := BondTimelineResponse{
		UserID:         user.ID,
		JoiningDate:    user.JoiningDate,
		Today:          today,
		EndDate:        tl.End(),
		Bonds:          infos,
		TotalRemaining: tl.TotalRemaining(today),
	}
	if resp.Bonds == nil {
		resp.Bonds = []bond.Info{}
	}
	if cur, found := tl.Current(today); found {
		for i := range infos {
			if infos[i].Index == cur.Index {
				resp.Current = &infos[i]
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// GetSalary returns the user's pay schedule.
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	rows, err := h.salaryRows(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load salary", err)
		return
	}
	writeJSON(w, http.StatusOK, SalaryResponse{
		UserID:    user.ID,
		Rows:      nonNilRows(rows),
		Total:     salary.Total(rows),
		PaidTotal: salary.PaidTotal(rows),
	})
}

// GetSalaryPDF renders the pay schedule as a PDF statement.
func (h *Handler) GetSalaryPDF(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	rows, err := h.salaryRows(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load salary", err)
		return
	}

	var buf bytes.Buffer
	if err := renderStatement(&buf, user.Name, rows); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("salary statement render failed")
		writeError(w, http.StatusInternalServerError, "failed to render statement", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="salary-%s.pdf"`, user.ID))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// UpdateSalaryAmount sets a custom amount for one month of the schedule.
func (h *Handler) UpdateSalaryAmount(w http.ResponseWriter, r *http.Request) {
	user, key, ok := h.loadSalaryMonth(w, r)
	if !ok {
		return
	}
	var req UpdateSalaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}
	if !h.saveOverride(w, r, user.ID, key, func(ov salary.Overrides) salary.Overrides {
		return ov.WithAmount(key, req.Amount)
	}) {
		return
	}
	h.writeSalaryRow(w, r, user, key)
}

// MarkSalaryPaid marks one month of the schedule as paid.
func (h *Handler) MarkSalaryPaid(w http.ResponseWriter, r *http.Request) {
	user, key, ok := h.loadSalaryMonth(w, r)
	if !ok {
		return
	}
	var req MarkPaidRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaidBy == "" {
		writeError(w, http.StatusBadRequest, "paid_by is required", nil)
		return
	}
	paidAt := h.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	if !h.saveOverride(w, r, user.ID, key, func(ov salary.Overrides) salary.Overrides {
		return ov.MarkPaid(key, paidAt, req.PaidBy)
	}) {
		return
	}

	log.Info().Str("user_id", user.ID).Str("month", key.String()).Str("paid_by", req.PaidBy).Msg("salary paid")
	h.writeSalaryRow(w, r, user, key)
}

// MarkSalaryUnpaid clears the paid mark of one month.
func (h *Handler) MarkSalaryUnpaid(w http.ResponseWriter, r *http.Request) {
	user, key, ok := h.loadSalaryMonth(w, r)
	if !ok {
		return
	}
	if !h.saveOverride(w, r, user.ID, key, func(ov salary.Overrides) salary.Overrides {
		return ov.MarkUnpaid(key)
	}) {
		return
	}
	h.writeSalaryRow(w, r, user, key)
}

// saveOverride applies edit to the user's stored overrides and persists the
// resulting override of key.
func (h *Handler) saveOverride(w http.ResponseWriter, r *http.Request, userID string, key salary.Key, edit func(salary.Overrides) salary.Overrides) bool {
	stored, err := h.Store.LoadOverrides(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load salary", err)
		return false
	}
	updated := edit(stored)
	if err := h.Store.SaveOverride(r.Context(), userID, key, updated[key]); err != nil {
		writeStoreError(w, "failed to save salary", err)
		return false
	}
	return true
}

func (h *Handler) salaryRows(ctx context.Context, user sqlite.User) ([]salary.Entry, error) {
	overrides, err := h.Store.LoadOverrides(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return salary.Merge(salary.Generate(user.JoiningDate, user.Bonds), overrides), nil
}

// loadSalaryMonth resolves {id}/{year}/{month} to a month of the user's
// schedule. Months outside the schedule are 404.
func (h *Handler) loadSalaryMonth(w http.ResponseWriter, r *http.Request) (sqlite.User, salary.Key, bool) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return sqlite.User{}, salary.Key{}, false
	}
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid year or month", nil)
		return sqlite.User{}, salary.Key{}, false
	}
	key := salary.Key{Year: year, Month: time.Month(month)}
	for _, row := range salary.Generate(user.JoiningDate, user.Bonds) {
		if row.Key() == key {
			return user, key, true
		}
	}
	writeError(w, http.StatusNotFound, "month not in salary schedule", fmt.Errorf("%s", key))
	return sqlite.User{}, salary.Key{}, false
}

func (h *Handler) writeSalaryRow(w http.ResponseWriter, r *http.Request, user sqlite.User, key salary.Key) {
	rows, err := h.salaryRows(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load salary", err)
		return
	}
	for _, row := range rows {
		if row.Key() == key {
			writeJSON(w, http.StatusOK, row)
			return
		}
	}
	writeError(w, http.StatusNotFound, "month not in salary schedule", nil)
}

// =============================================================================
// ATTENDANCE AND LEAVE HANDLERS
// =============================================================================

// RecordAttendance stores one day of attendance and returns its
// classification under the configured work policy.
func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Date.IsValid() {
		writeError(w, http.StatusBadRequest, "date is required", nil)
		return
	}

	rec, err := h.Store.SaveAttendance(r.Context(), attendance.Record{
		UserID:   user.ID,
		Date:     req.Date,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Breaks:   req.Breaks,
	})
	if err != nil {
		writeStoreError(w, "failed to record attendance", err)
		return
	}

	facts := attendance.ClassifyWith(rec, h.Policy.Thresholds)
	log.Debug().Str("user_id", user.ID).Str("date", rec.Date.String()).Str("classification", string(facts.Classification)).Msg("attendance recorded")
	writeJSON(w, http.StatusOK, AttendanceResponse{Record: rec, Facts: facts})
}

// SubmitLeave stores a pending leave request.
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	var req LeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.StartDate.IsValid() || !req.EndDate.IsValid() {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required", nil)
		return
	}
	if req.EndDate.Before(req.StartDate) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date", nil)
		return
	}
	if !req.Category.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid category", fmt.Errorf("%q", req.Category))
		return
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		writeError(w, http.StatusBadRequest, "start_time and end_time must be given together", nil)
		return
	}

	saved, err := h.Store.SaveLeave(r.Context(), leave.Request{
		UserID:    user.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Category:  req.Category,
		Status:    leave.StatusPending,
		Reason:    req.Reason,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeStoreError(w, "failed to submit leave", err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("leave_id", saved.ID).Str("category", string(saved.Category)).Msg("leave submitted")
	writeJSON(w, http.StatusCreated, h.toLeaveDTO(r.Context(), saved))
}

// ApproveLeave approves a pending leave request.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, leave.StatusApproved)
}

// RejectLeave rejects a pending leave request.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, leave.StatusRejected)
}

func (h *Handler) setLeaveStatus(w http.ResponseWriter, r *http.Request, status leave.Status) {
	id := chi.URLParam(r, "id")
	if err := h.Store.SetLeaveStatus(r.Context(), id, status); err != nil {
		writeStoreError(w, "failed to update leave", err)
		return
	}
	req, err := h.Store.GetLeave(r.Context(), id)
	if err != nil {
		writeStoreError(w, "failed to load leave", err)
		return
	}

	log.Info().Str("leave_id", id).Str("status", string(status)).Msg("leave status changed")
	writeJSON(w, http.StatusOK, h.toLeaveDTO(r.Context(), req))
}

func (h *Handler) toLeaveDTO(ctx context.Context, req leave.Request) LeaveDTO {
	holidays, err := h.Store.HolidaySet(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("holidays unavailable; counting without them")
	}
	dto := LeaveDTO{Request: req}
	if h.Policy.Rules.CountsAsExtraTime(req) {
		dto.ExtraTimeHours = leave.SecondsToHours(leave.ExtraTimeSeconds(req, holidays, h.Policy.Rules))
	}
	return dto
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

// GetUserStats returns one user's monthly report.
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	period, asOf, ok := h.periodParams(w, r)
	if !ok {
		return
	}
	holidays, err := h.Store.HolidaySet(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load holidays", err)
		return
	}

	stats, err := h.monthlyStats(r.Context(), user, period, asOf, holidays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(user.Name, stats))
}

// GetTeamStats returns every user's monthly report, computed concurrently.
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	period, asOf, ok := h.periodParams(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users", err)
		return
	}
	holidays, err := h.Store.HolidaySet(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load holidays", err)
		return
	}

	results := make([]StatsDTO, len(users))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, user := range users {
		i, user := i, user
		g.Go(func() error {
			stats, err := h.monthlyStats(gCtx, user, period, asOf, holidays)
			if err != nil {
				return fmt.Errorf("user %s: %w", user.ID, err)
			}
			results[i] = toStatsDTO(user.Name, stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}

	writeJSON(w, http.StatusOK, TeamStatsResponse{Period: period, AsOf: asOf, Users: results})
}

// CloseMonth persists the month-end carryover of every user for ?date=
// (default: today). The date must be the last day of its month.
func (h *Handler) CloseMonth(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, "date", h.today())
	if !ok {
		return
	}
	if !date.IsLastDayOfMonth() {
		writeError(w, http.StatusBadRequest, "date is not the last day of its month", fmt.Errorf("%s", date))
		return
	}
	processed, skipped, err := h.closeMonth(r.Context(), date, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to close month", err)
		return
	}
	writeJSON(w, http.StatusOK, CloseMonthResponse{Date: date, Processed: processed, Skipped: skipped})
}

// closeMonth evaluates every user's balance at monthEnd and stores the
// carryover as the next month's opening. Users whose next month already
// has an opening are skipped unless overwrite is set.
func (h *Handler) closeMonth(ctx context.Context, monthEnd calendar.Date, overwrite bool) (processed, skipped int, err error) {
	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		return 0, 0, err
	}
	holidays, err := h.Store.HolidaySet(ctx)
	if err != nil {
		return 0, 0, err
	}
	period := calendar.PeriodFor(monthEnd)
	next := period.NextMonth()

	for _, user := range users {
		if !overwrite {
			_, found, err := h.Store.Opening(ctx, user.ID, next)
			if err != nil {
				return processed, skipped, err
			}
			if found {
				skipped++
				continue
			}
		}

		stats, err := h.monthlyStats(ctx, user, period, monthEnd, holidays)
		if err != nil {
			return processed, skipped, fmt.Errorf("user %s: %w", user.ID, err)
		}
		carry := stats.Balance.Carryover
		if carry == nil {
			carry = &balance.Carryover{}
		}
		if err := h.Store.SaveCarryover(ctx, user.ID, next, *carry); err != nil {
			return processed, skipped, err
		}

		log.Info().
			Str("user_id", user.ID).
			Str("period", period.String()).
			Int64("carry_extra_leave_seconds", carry.ExtraTimeLeaveSeconds).
			Int64("carry_low_seconds", carry.LowTimeSeconds).
			Msg("carryover stored")
		processed++
	}
	return processed, skipped, nil
}

// monthlyStats loads the snapshot for one user and period and builds the
// report. Leaves are loaded from January 1 so paid leave runs year to date.
func (h *Handler) monthlyStats(ctx context.Context, user sqlite.User, period calendar.Period, asOf calendar.Date, holidays calendar.HolidaySet) (balance.MonthlyStats, error) {
	records, err := h.Store.ListAttendance(ctx, user.ID, period)
	if err != nil {
		return balance.MonthlyStats{}, err
	}
	yearStart := calendar.New(period.Start.Year, time.January, 1)
	leaves, err := h.Store.ListLeaves(ctx, user.ID, calendar.Period{Start: yearStart, End: period.End})
	if err != nil {
		return balance.MonthlyStats{}, err
	}
	opening, _, err := h.Store.Opening(ctx, user.ID, period)
	if err != nil {
		return balance.MonthlyStats{}, err
	}

	return balance.Monthly(balance.Input{
		UserID:     user.ID,
		Period:     period,
		AsOf:       asOf,
		Records:    records,
		Leaves:     leaves,
		Holidays:   holidays,
		Opening:    opening,
		Thresholds: h.Policy.Thresholds,
		Rules:      h.Policy.Rules,
	}, user.PaidLeaveAllocation), nil
}

// periodParams reads ?year=&month=&as_of=. The period defaults to the
// current month; as_of defaults to today capped at the period end.
func (h *Handler) periodParams(w http.ResponseWriter, r *http.Request) (calendar.Period, calendar.Date, bool) {
	today := h.today()
	year, month := today.Year, int(today.Month)
	q := r.URL.Query()

	if s := q.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "invalid year", err)
			return calendar.Period{}, calendar.Date{}, false
		}
		year = v
	}
	if s := q.Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			writeError(w, http.StatusBadRequest, "invalid month", err)
			return calendar.Period{}, calendar.Date{}, false
		}
		month = v
	}
	period := calendar.MonthPeriod(year, time.Month(month))

	def := today
	if def.After(period.End) {
		def = period.End
	}
	asOf, ok := dateParam(w, r, "as_of", def)
	if !ok {
		return calendar.Period{}, calendar.Date{}, false
	}
	return period, asOf, true
}

// GetPolicy returns the work policy the server classifies with.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.ToJSON(h.Policy))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list holidays", err)
		return
	}
	if holidays == nil {
		holidays = []sqlite.HolidayRecord{}
	}
	writeJSON(w, http.StatusOK, holidays)
}

// CreateHoliday adds a holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Date.IsValid() {
		writeError(w, http.StatusBadRequest, "date is required", nil)
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required", nil)
		return
	}

	rec, err := h.Store.SaveHoliday(r.Context(), calendar.Holiday{Date: req.Date, Description: req.Description})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (sqlite.User, bool) {
	user, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "failed to load user", err)
		return sqlite.User{}, false
	}
	return user, true
}

func dateParam(w http.ResponseWriter, r *http.Request, name string, def calendar.Date) (calendar.Date, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	d, err := calendar.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name, err)
		return calendar.Date{}, false
	}
	return d, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func nonNilRows(rows []salary.Entry) []salary.Entry {
	if rows == nil {
		return []salary.Entry{}
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeStoreError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}
