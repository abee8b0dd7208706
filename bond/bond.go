/*
Package bond chains a user's employment bonds into consecutive date ranges
starting from the joining date.

CHAINING:
  entry[0].Start = joiningDate
  entry[i].Start = entry[i-1].Start + entry[i-1].PeriodMonths months + 1 day
  entry[i].End   = entry[i].Start + PeriodMonths months

  Bonds with PeriodMonths <= 0 are dropped before chaining and do not take
  a slot.

STATUS (for a given today):
  Expired  today >= End
  Active   Start <= today < End
  Future   otherwise

  Overlap is never checked here; callers validate edits with Validate
  before storing them.

EXAMPLE:
  joining 2024-03-10, [{internship, 2}, {job, 12}]
    internship  2024-03-10 .. 2024-05-10
    job         2024-05-11 .. 2025-05-11

SEE ALSO:
  - salary: month-by-month pay schedule from the same bonds
*/
package bond

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidBond marks a bond list that cannot be saved.
var ErrInvalidBond = errors.New("invalid bond")

type Type string

const (
	TypeInternship Type = "internship"
	TypeJob        Type = "job"
	TypeOther      Type = "other"
)

func (t Type) IsValid() bool {
	return t == TypeInternship || t == TypeJob || t == TypeOther
}

// Bond is a fixed-length employment period with its monthly salary.
type Bond struct {
	Type         Type            `json:"type"`
	PeriodMonths int             `json:"period_months"`
	Salary       decimal.Decimal `json:"salary"`
}

// Active returns the bonds that take part in chaining, in order.
func Active(bonds []Bond) []Bond {
	out := make([]Bond, 0, len(bonds))
	for _, b := range bonds {
		if b.PeriodMonths > 0 {
			out = append(out, b)
		}
	}
	return out
}

// ValidationError describes the first bad bond in a list.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("bond %d: %s", e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidBond }

// Validate checks a bond list before it is stored. The scheduler itself
// tolerates all of these cases; this is for edit endpoints.
func Validate(bonds []Bond) error {
	for i, b := range bonds {
		switch {
		case !b.Type.IsValid():
			return &ValidationError{Index: i, Reason: fmt.Sprintf("unknown type %q", b.Type)}
		case b.PeriodMonths <= 0:
			return &ValidationError{Index: i, Reason: "period_months must be positive"}
		case b.Salary.IsNegative():
			return &ValidationError{Index: i, Reason: "salary must not be negative"}
		}
	}
	return nil
}
