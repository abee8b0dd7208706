package salary

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/bond"
	"github.com/warp/payroll-engine/calendar"
)

// Payment is the paid mark attached to a row by the payment action.
type Payment struct {
	PaidAt time.Time `json:"paid_at"`
	PaidBy string    `json:"paid_by"`
}

// Override is the persisted state of one row that the generator does not own.
// A nil Amount keeps the generated default.
type Override struct {
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Payment *Payment         `json:"payment,omitempty"`
}

func (o Override) IsZero() bool { return o.Amount == nil && o.Payment == nil }

// Overrides maps schedule keys to their edits. Methods return updated copies
// and never modify the receiver.
type Overrides map[Key]Override

func (o Overrides) clone() Overrides {
	out := make(Overrides, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}

// WithAmount returns a copy with a custom amount for k.
func (o Overrides) WithAmount(k Key, amount decimal.Decimal) Overrides {
	out := o.clone()
	ov := out[k]
	ov.Amount = &amount
	out[k] = ov
	return out
}

// MarkPaid returns a copy with k marked paid by paidBy at paidAt.
func (o Overrides) MarkPaid(k Key, paidAt time.Time, paidBy string) Overrides {
	out := o.clone()
	ov := out[k]
	ov.Payment = &Payment{PaidAt: paidAt, PaidBy: paidBy}
	out[k] = ov
	return out
}

// MarkUnpaid returns a copy with k's payment mark cleared.
func (o Overrides) MarkUnpaid(k Key) Overrides {
	out := o.clone()
	ov := out[k]
	ov.Payment = nil
	if ov.IsZero() {
		delete(out, k)
	} else {
		out[k] = ov
	}
	return out
}

// Retain returns the overrides whose keys appear in rows. Edits for months
// that left the schedule are dropped.
func (o Overrides) Retain(rows []Entry) Overrides {
	out := make(Overrides, len(o))
	for _, r := range rows {
		if ov, ok := o[r.Key()]; ok && !ov.IsZero() {
			out[r.Key()] = ov
		}
	}
	return out
}

// Merge lays overrides over generated rows. Period and bond metadata always
// come from rows; overrides for keys not in rows are ignored.
func Merge(rows []Entry, overrides Overrides) []Entry {
	out := make([]Entry, len(rows))
	for i, r := range rows {
		if ov, ok := overrides[r.Key()]; ok {
			if ov.Amount != nil {
				r.Amount = *ov.Amount
			}
			if ov.Payment != nil {
				paidAt := ov.Payment.PaidAt
				r.IsPaid = true
				r.PaidAt = &paidAt
				r.PaidBy = ov.Payment.PaidBy
			}
		}
		out[i] = r
	}
	return out
}

// Regenerate rebuilds the schedule for new inputs. Only the stored edits
// survive: a month keeps its custom amount and payment mark, every other
// month takes the salary of the bond that now covers it.
func Regenerate(joiningDate calendar.Date, bonds []bond.Bond, overrides Overrides) []Entry {
	rows := Generate(joiningDate, bonds)
	return Merge(rows, overrides.Retain(rows))
}
