/*
Package sqlite provides the SQLite snapshot store behind the HTTP API.

PURPOSE:
  Persists the inputs the engine packages compute from (users, bonds,
  attendance, leave requests, holidays) and the two pieces of state the
  engine does not own: salary row overrides and month-end carryovers.
  Every read returns plain engine types, so handlers pass store output
  straight into balance.Evaluate, bond.Schedule and salary.Generate.

KEY TABLES:
  users:            Profile, joining date, paid-leave allocation, bonds (JSON)
  attendance:       One row per user and date; breaks stored as JSON
  leave_requests:   Leave requests with optional HH:MM time range
  holidays:         Company holidays
  salary_overrides: Custom amount and paid mark per (user, year, month)
  carryovers:       Opening balance per (user, year, month) it seeds

SALARY ROWS:
  Salary rows are never stored. They are regenerated from the bonds and
  merged with salary_overrides, so only what the generator cannot derive
  is persisted.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's single writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not block
  the writer.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - api/handlers.go: the only caller
  - salary/overrides.go: override semantics
  - balance/balance.go: Carryover
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/bond"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/leave"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists engine inputs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		joining_date TEXT NOT NULL,
		paid_leave_allocation INTEGER NOT NULL DEFAULT 0,
		bonds_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT,
		breaks_json TEXT NOT NULL DEFAULT '[]',
		UNIQUE(user_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_user_date
		ON attendance(user_id, date);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT,
		start_time TEXT,
		end_time TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_user_start
		ON leave_requests(user_id, start_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, description);

	CREATE TABLE IF NOT EXISTS salary_overrides (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		amount TEXT,
		paid_at TEXT,
		paid_by TEXT,
		PRIMARY KEY (user_id, year, month)
	);

	CREATE TABLE IF NOT EXISTS carryovers (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		extra_leave_seconds INTEGER NOT NULL DEFAULT 0,
		low_seconds INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, year, month)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USER STORE
// =============================================================================

// User is an employee with the inputs of the bond and salary engines.
type User struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Email               string        `json:"email,omitempty"`
	JoiningDate         calendar.Date `json:"joining_date"`
	PaidLeaveAllocation int           `json:"paid_leave_allocation"`
	Bonds               []bond.Bond   `json:"bonds"`
	CreatedAt           time.Time     `json:"created_at"`
}

// SaveUser inserts or updates a user. An empty ID is assigned a new UUID.
func (s *Store) SaveUser(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	bondsJSON, err := marshalBonds(u.Bonds)
	if err != nil {
		return User{}, err
	}

	query := `
		INSERT INTO users (id, name, email, joining_date, paid_leave_allocation, bonds_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			joining_date = excluded.joining_date,
			paid_leave_allocation = excluded.paid_leave_allocation,
			bonds_json = excluded.bonds_json
	`
	_, err = s.db.ExecContext(ctx, query,
		u.ID, u.Name, nullString(u.Email), u.JoiningDate.String(),
		u.PaidLeaveAllocation, bondsJSON, u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, joining_date, paid_leave_allocation, bonds_json, created_at FROM users WHERE id = ?",
		id,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, err
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, joining_date, paid_leave_allocation, bonds_json, created_at FROM users ORDER BY name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u                             User
		email                         sql.NullString
		joining, bondsJSON, createdAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &email, &joining, &u.PaidLeaveAllocation, &bondsJSON, &createdAt); err != nil {
		return User{}, err
	}
	u.Email = email.String
	u.JoiningDate, _ = calendar.Parse(joining)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if err := json.Unmarshal([]byte(bondsJSON), &u.Bonds); err != nil {
		return User{}, fmt.Errorf("failed to decode bonds of user %s: %w", u.ID, err)
	}
	return u, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// SaveAttendance inserts or replaces the record for (UserID, Date).
func (s *Store) SaveAttendance(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	breaksJSON, err := json.Marshal(nonNil(r.Breaks))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to encode breaks: %w", err)
	}

	query := `
		INSERT INTO attendance (id, user_id, date, check_in, check_out, breaks_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			breaks_json = excluded.breaks_json
		RETURNING id
	`
	err = s.db.QueryRowContext(ctx, query,
		r.ID, r.UserID, r.Date.String(),
		nullTime(r.CheckIn), nullTime(r.CheckOut), string(breaksJSON),
	).Scan(&r.ID)
	if isForeignKeyError(err) {
		return attendance.Record{}, fmt.Errorf("user %s: %w", r.UserID, ErrNotFound)
	}
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance: %w", err)
	}
	return r, nil
}

// ListAttendance returns records dated within p. An empty userID lists
// every user.
func (s *Store) ListAttendance(ctx context.Context, userID string, p calendar.Period) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, date, check_in, check_out, breaks_json
		FROM attendance
		WHERE (? = '' OR user_id = ?) AND date >= ? AND date <= ?
		ORDER BY user_id, date
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID, p.Start.String(), p.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var (
			r                 attendance.Record
			date, breaksJSON  string
			checkIn, checkOut sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &date, &checkIn, &checkOut, &breaksJSON); err != nil {
			return nil, err
		}
		r.Date, _ = calendar.Parse(date)
		r.CheckIn = parseNullTime(checkIn)
		r.CheckOut = parseNullTime(checkOut)
		if err := json.Unmarshal([]byte(breaksJSON), &r.Breaks); err != nil {
			return nil, fmt.Errorf("failed to decode breaks of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// LEAVE STORE
// =============================================================================

// SaveLeave inserts or updates a leave request.
func (s *Store) SaveLeave(ctx context.Context, r leave.Request) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = leave.StatusPending
	}

	query := `
		INSERT INTO leave_requests (id, user_id, start_date, end_date, category, status, reason, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			category = excluded.category,
			status = excluded.status,
			reason = excluded.reason,
			start_time = excluded.start_time,
			end_time = excluded.end_time
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.UserID, r.StartDate.String(), r.EndDate.String(),
		string(r.Category), string(r.Status), nullString(r.Reason),
		nullClock(r.StartTime), nullClock(r.EndTime),
		time.Now().UTC().Format(time.RFC3339),
	)
	if isForeignKeyError(err) {
		return leave.Request{}, fmt.Errorf("user %s: %w", r.UserID, ErrNotFound)
	}
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to save leave request: %w", err)
	}
	return r, nil
}

// GetLeave retrieves a leave request by ID.
func (s *Store) GetLeave(ctx context.Context, id string) (leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reqs, err := s.queryLeaves(ctx, leaveSelect+" WHERE id = ?", id)
	if err != nil {
		return leave.Request{}, err
	}
	if len(reqs) == 0 {
		return leave.Request{}, fmt.Errorf("leave request %s: %w", id, ErrNotFound)
	}
	return reqs[0], nil
}

// ListLeaves returns requests whose start date falls within p. An empty
// userID lists every user.
func (s *Store) ListLeaves(ctx context.Context, userID string, p calendar.Period) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLeaves(ctx,
		leaveSelect+" WHERE (? = '' OR user_id = ?) AND start_date >= ? AND start_date <= ? ORDER BY user_id, start_date",
		userID, userID, p.Start.String(), p.End.String(),
	)
}

// SetLeaveStatus moves a request to status.
func (s *Store) SetLeaveStatus(ctx context.Context, id string, status leave.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE leave_requests SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update leave status: %w", err)
	}
	return requireAffected(res, "leave request "+id)
}

const leaveSelect = `
	SELECT id, user_id, start_date, end_date, category, status, reason, start_time, end_time
	FROM leave_requests`

func (s *Store) queryLeaves(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var reqs []leave.Request
	for rows.Next() {
		var (
			r                          leave.Request
			start, end, category, stat string
			reason, startTime, endTime sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &start, &end, &category, &stat, &reason, &startTime, &endTime); err != nil {
			return nil, err
		}
		r.StartDate, _ = calendar.Parse(start)
		r.EndDate, _ = calendar.Parse(end)
		r.Category = leave.Category(category)
		r.Status = leave.Status(stat)
		r.Reason = reason.String
		r.StartTime = parseNullClock(startTime)
		r.EndTime = parseNullClock(endTime)
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// HolidayRecord is a stored holiday.
type HolidayRecord struct {
	ID string `json:"id"`
	calendar.Holiday
}

// SaveHoliday stores a holiday. Saving the same date and description twice
// keeps the first ID.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) (HolidayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := HolidayRecord{ID: uuid.NewString(), Holiday: h}
	query := `
		INSERT INTO holidays (id, date, description, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date, description) DO UPDATE SET description = excluded.description
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		rec.ID, h.Date.String(), h.Description, time.Now().UTC().Format(time.RFC3339),
	).Scan(&rec.ID)
	if err != nil {
		return HolidayRecord{}, fmt.Errorf("failed to save holiday: %w", err)
	}
	return rec, nil
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return requireAffected(res, "holiday "+id)
}

// ListHolidays returns every holiday ordered by date.
func (s *Store) ListHolidays(ctx context.Context) ([]HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, description FROM holidays ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []HolidayRecord
	for rows.Next() {
		var h HolidayRecord
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Description); err != nil {
			return nil, err
		}
		h.Date, _ = calendar.Parse(date)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// HolidaySet returns every stored holiday as a lookup set.
func (s *Store) HolidaySet(ctx context.Context) (calendar.HolidaySet, error) {
	recs, err := s.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	holidays := make([]calendar.Holiday, len(recs))
	for i, r := range recs {
		holidays[i] = r.Holiday
	}
	return calendar.NewHolidaySet(holidays), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullClock(c *leave.ClockTime) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.String(), Valid: true}
}

func parseNullClock(ns sql.NullString) *leave.ClockTime {
	if !ns.Valid {
		return nil
	}
	c, err := leave.ParseClockTime(ns.String)
	if err != nil {
		return nil
	}
	return &c
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
