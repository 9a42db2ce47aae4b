package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/money"
)

// Field names an editable attribute of a ledger entry.
type Field string

const (
	FieldOriginalAmount Field = "originalAmount"
	FieldDeduction      Field = "deduction"
	FieldDate           Field = "date"
	FieldReason         Field = "reason"
	FieldInstallments   Field = "installments"
)

// Status is the lifecycle state of a ledger entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusCleared Status = "cleared"
)

// StatusOf reports Pending while anything remains outstanding.
func StatusOf(entry models.LedgerEntry) Status {
	if entry.RemainingAmount.IsPositive() {
		return StatusPending
	}
	return StatusCleared
}

// AddEntry returns a copy of list with a blank entry dated today appended.
func AddEntry(list []models.LedgerEntry, now time.Time) []models.LedgerEntry {
	out := make([]models.LedgerEntry, 0, len(list)+1)
	out = append(out, list...)
	return append(out, NewEntry(now))
}

// NewEntry builds the blank entry AddEntry appends.
func NewEntry(now time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:              uuid.New(),
		OriginalAmount:  decimal.Zero,
		Date:            dates.DateOnly(now),
		Deduction:       decimal.Zero,
		RemainingAmount: decimal.Zero,
		Installments:    1,
	}
}

// UpdateEntry returns a copy of list with one field of the entry identified by
// id changed. Amount fields are coerced and clamped so that
// 0 <= Deduction <= OriginalAmount always holds, and RemainingAmount is
// recomputed. Other entries are copied unchanged. An unknown id or field leaves
// the list as it was.
func UpdateEntry(list []models.LedgerEntry, id uuid.UUID, field Field, value any) []models.LedgerEntry {
	out := make([]models.LedgerEntry, len(list))
	for i, entry := range list {
		if entry.ID == id {
			entry = apply(entry, field, value)
		}
		out[i] = entry
	}
	return out
}

func apply(entry models.LedgerEntry, field Field, value any) models.LedgerEntry {
	switch field {
	case FieldOriginalAmount:
		entry.OriginalAmount = money.NonNegative(money.Coerce(value))
		entry.Deduction = money.Clamp(entry.Deduction, decimal.Zero, entry.OriginalAmount)
		entry.RemainingAmount = remaining(entry)
	case FieldDeduction:
		entry.Deduction = money.Clamp(money.Coerce(value), decimal.Zero, entry.OriginalAmount)
		entry.RemainingAmount = remaining(entry)
	case FieldDate:
		entry.Date = dates.DateOnly(dates.Parse(value))
	case FieldReason:
		switch v := value.(type) {
		case string:
			entry.Reason = v
		case nil:
			entry.Reason = ""
		default:
			entry.Reason = fmt.Sprint(v)
		}
	case FieldInstallments:
		entry.Installments = models.CoerceInstallments(value)
	}
	return entry
}

func remaining(entry models.LedgerEntry) decimal.Decimal {
	return money.NonNegative(entry.OriginalAmount.Sub(entry.Deduction))
}

// RemoveEntry returns a copy of list without the entry identified by id.
// Removing an id that is not present is a no-op.
func RemoveEntry(list []models.LedgerEntry, id uuid.UUID) []models.LedgerEntry {
	out := make([]models.LedgerEntry, 0, len(list))
	for _, entry := range list {
		if entry.ID != id {
			out = append(out, entry)
		}
	}
	return out
}

// Find returns the entry with the given id.
func Find(list []models.LedgerEntry, id uuid.UUID) (models.LedgerEntry, bool) {
	i := slices.IndexFunc(list, func(e models.LedgerEntry) bool { return e.ID == id })
	if i < 0 {
		return models.LedgerEntry{}, false
	}
	return list[i], true
}

// Totals sums the amount columns of a ledger list.
type Totals struct {
	Original  decimal.Decimal
	Deduction decimal.Decimal
	Remaining decimal.Decimal
}

// Sum totals the original, deduction and remaining amounts of list.
func Sum(list []models.LedgerEntry) Totals {
	t := Totals{Original: decimal.Zero, Deduction: decimal.Zero, Remaining: decimal.Zero}
	for _, entry := range list {
		t.Original = t.Original.Add(entry.OriginalAmount)
		t.Deduction = t.Deduction.Add(entry.Deduction)
		t.Remaining = t.Remaining.Add(entry.RemainingAmount)
	}
	return t
}
