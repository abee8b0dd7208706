package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/balance"
	"github.com/warp/payroll-engine/bond"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/salary"
)

// =============================================================================
// SALARY OVERRIDES
// =============================================================================

// LoadOverrides returns every salary override stored for userID.
func (s *Store) LoadOverrides(ctx context.Context, userID string) (salary.Overrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT year, month, amount, paid_at, paid_by FROM salary_overrides WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary overrides: %w", err)
	}
	defer rows.Close()

	out := salary.Overrides{}
	for rows.Next() {
		var (
			k                      salary.Key
			month                  int
			amount, paidAt, paidBy sql.NullString
		)
		if err := rows.Scan(&k.Year, &month, &amount, &paidAt, &paidBy); err != nil {
			return nil, err
		}
		k.Month = time.Month(month)

		var ov salary.Override
		if amount.Valid {
			d, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse salary amount for %s: %w", k, err)
			}
			ov.Amount = &d
		}
		if paidAt.Valid {
			p := salary.Payment{PaidBy: paidBy.String}
			p.PaidAt, _ = time.Parse(time.RFC3339Nano, paidAt.String)
			ov.Payment = &p
		}
		out[k] = ov
	}
	return out, rows.Err()
}

// SaveOverride stores the override of one month. A zero override removes
// the row so the month falls back to its generated default.
func (s *Store) SaveOverride(ctx context.Context, userID string, k salary.Key, ov salary.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ov.IsZero() {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM salary_overrides WHERE user_id = ? AND year = ? AND month = ?",
			userID, k.Year, int(k.Month),
		)
		if err != nil {
			return fmt.Errorf("failed to clear salary override %s: %w", k, err)
		}
		return nil
	}

	query := `
		INSERT INTO salary_overrides (user_id, year, month, amount, paid_at, paid_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month) DO UPDATE SET
			amount = excluded.amount,
			paid_at = excluded.paid_at,
			paid_by = excluded.paid_by
	`
	amount, paidAt, paidBy := overrideColumns(ov)
	_, err := s.db.ExecContext(ctx, query, userID, k.Year, int(k.Month), amount, paidAt, paidBy)
	if isForeignKeyError(err) {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to save salary override %s: %w", k, err)
	}
	return nil
}

func overrideColumns(ov salary.Override) (amount, paidAt, paidBy sql.NullString) {
	if ov.Amount != nil {
		amount = sql.NullString{String: ov.Amount.String(), Valid: true}
	}
	if ov.Payment != nil {
		paidAt = sql.NullString{String: ov.Payment.PaidAt.UTC().Format(time.RFC3339Nano), Valid: true}
		paidBy = nullString(ov.Payment.PaidBy)
	}
	return amount, paidAt, paidBy
}

// UpdateBonds replaces a user's bonds and salary overrides in one
// transaction. Callers pass the overrides that still apply to the new
// schedule.
func (s *Store) UpdateBonds(ctx context.Context, userID string, bonds []bond.Bond, overrides salary.Overrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bondsJSON, err := marshalBonds(bonds)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE users SET bonds_json = ? WHERE id = ?", bondsJSON, userID)
	if err != nil {
		return fmt.Errorf("failed to update bonds: %w", err)
	}
	if err := requireAffected(res, "user "+userID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM salary_overrides WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear salary overrides: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO salary_overrides (user_id, year, month, amount, paid_at, paid_by) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare salary override insert: %w", err)
	}
	defer stmt.Close()

	for k, ov := range overrides {
		if ov.IsZero() {
			continue
		}
		amount, paidAt, paidBy := overrideColumns(ov)
		if _, err := stmt.ExecContext(ctx, userID, k.Year, int(k.Month), amount, paidAt, paidBy); err != nil {
			return fmt.Errorf("failed to save salary override %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// CARRYOVERS
// =============================================================================

// SaveCarryover stores c as the opening balance of period into.
func (s *Store) SaveCarryover(ctx context.Context, userID string, into calendar.Period, c balance.Carryover) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO carryovers (user_id, year, month, extra_leave_seconds, low_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month) DO UPDATE SET
			extra_leave_seconds = excluded.extra_leave_seconds,
			low_seconds = excluded.low_seconds
	`
	_, err := s.db.ExecContext(ctx, query,
		userID, into.Start.Year, int(into.Start.Month),
		c.ExtraTimeLeaveSeconds, c.LowTimeSeconds,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isForeignKeyError(err) {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to save carryover: %w", err)
	}
	return nil
}

// Opening returns the carryover seeding period p, and whether one was
// stored. A missing row is the zero carryover.
func (s *Store) Opening(ctx context.Context, userID string, p calendar.Period) (balance.Carryover, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c balance.Carryover
	err := s.db.QueryRowContext(ctx,
		"SELECT extra_leave_seconds, low_seconds FROM carryovers WHERE user_id = ? AND year = ? AND month = ?",
		userID, p.Start.Year, int(p.Start.Month),
	).Scan(&c.ExtraTimeLeaveSeconds, &c.LowTimeSeconds)
	if err == sql.ErrNoRows {
		return balance.Carryover{}, false, nil
	}
	if err != nil {
		return balance.Carryover{}, false, fmt.Errorf("failed to load carryover: %w", err)
	}
	return c, true, nil
}

func marshalBonds(bonds []bond.Bond) (string, error) {
	b, err := json.Marshal(nonNil(bonds))
	if err != nil {
		return "", fmt.Errorf("failed to encode bonds: %w", err)
	}
	return string(b), nil
}
