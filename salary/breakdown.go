/*
Package salary expands a joining date and bond chain into a month-by-month
pay schedule.

GENERATION:
  1. Joining day > 1: one partial row [joiningDate, end of that month] at
     bonds[0]'s type and salary. The first bond's full months start on the
     1st of the following month.
  2. Each bond then emits exactly PeriodMonths full calendar months.

  joining 2024-03-10, [{internship, 2}, {job, 12}]
    2024-03  partial  internship   10-31 Mar
    2024-04           internship
    2024-05           internship
    2024-06 .. 2025-05  job (12 rows)

OVERRIDES:
  Rows are keyed by (year, month). Amount edits and payment marks live in an
  Overrides map with the same key and are merged over freshly generated rows,
  so regeneration never loses them.

  The generator schedule deliberately differs from bond.Schedule: bonds run
  from the joining date itself, salary months from the next month start.

SEE ALSO:
  - bond/schedule.go: bond date ranges
  - pdf.go: printable statement
*/
package salary

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/bond"
	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// ENTRY
// =============================================================================

// Key identifies one row of a schedule.
type Key struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (k Key) String() string { return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month)) }

// Entry is one month of pay.
type Entry struct {
	Month          time.Month      `json:"month"`
	Year           int             `json:"year"`
	StartDate      calendar.Date   `json:"start_date"`
	EndDate        calendar.Date   `json:"end_date"`
	BondType       bond.Type       `json:"bond_type"`
	IsPartialMonth bool            `json:"is_partial_month"`
	Amount         decimal.Decimal `json:"amount"`
	IsPaid         bool            `json:"is_paid"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	PaidBy         string          `json:"paid_by,omitempty"`
}

func (e Entry) Key() Key { return Key{Year: e.Year, Month: e.Month} }

// =============================================================================
// GENERATOR
// =============================================================================

// Generate returns the default schedule. Bonds with PeriodMonths <= 0 are
// ignored; an invalid joining date or no usable bond yields nil.
func Generate(joiningDate calendar.Date, bonds []bond.Bond) []Entry {
	active := bond.Active(bonds)
	if !joiningDate.IsValid() || len(active) == 0 {
		return nil
	}

	var rows []Entry
	cursor := joiningDate
	if joiningDate.Day > 1 {
		rows = append(rows, row(joiningDate, joiningDate.EndOfMonth(), active[0], true))
		cursor = joiningDate.EndOfMonth().AddDays(1)
	}

	for _, b := range active {
		for i := 0; i < b.PeriodMonths; i++ {
			end := cursor.EndOfMonth()
			rows = append(rows, row(cursor, end, b, false))
			cursor = end.AddDays(1)
		}
	}
	return rows
}

func row(start, end calendar.Date, b bond.Bond, partial bool) Entry {
	return Entry{
		Month:          start.Month,
		Year:           start.Year,
		StartDate:      start,
		EndDate:        end,
		BondType:       b.Type,
		IsPartialMonth: partial,
		Amount:         b.Salary,
	}
}

// =============================================================================
// TOTALS
// =============================================================================

// Total sums every row's amount.
func Total(rows []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// PaidTotal sums the amounts already marked paid.
func PaidTotal(rows []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		if r.IsPaid {
			sum = sum.Add(r.Amount)
		}
	}
	return sum
}
