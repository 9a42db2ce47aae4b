package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/money"
)

const (
	StrategyFlat      = "flat"
	StrategyAmortized = "amortized"
)

// DeductionStrategy decides how much of a ledger list of the given kind is
// withheld in a given month and what is still outstanding at the end of it.
type DeductionStrategy interface {
	Name() string
	Deductions(kind models.LedgerKind, entries []models.LedgerEntry, year int, month time.Month) decimal.Decimal
	Remaining(kind models.LedgerKind, entries []models.LedgerEntry, year int, month time.Month) decimal.Decimal
}

// FlatDeductionStrategy withholds the standing Deduction of every entry in
// every month, whatever the entry date or kind. The month arguments are
// ignored.
type FlatDeductionStrategy struct{}

func (FlatDeductionStrategy) Name() string { return StrategyFlat }

func (FlatDeductionStrategy) Deductions(_ models.LedgerKind, entries []models.LedgerEntry, _ int, _ time.Month) decimal.Decimal {
	return ledger.Sum(entries).Deduction
}

func (FlatDeductionStrategy) Remaining(_ models.LedgerKind, entries []models.LedgerEntry, _ int, _ time.Month) decimal.Decimal {
	return ledger.Sum(entries).Remaining
}

// AmortizedScheduleStrategy is the date-filtered model. An advance is withheld
// in full in the month of its own date. A loan is withheld by the
// installments of its schedule that fall due in the queried month. Entries
// without a date are never withheld.
type AmortizedScheduleStrategy struct{}

func (AmortizedScheduleStrategy) Name() string { return StrategyAmortized }

func (AmortizedScheduleStrategy) Deductions(kind models.LedgerKind, entries []models.LedgerEntry, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		if kind == models.LedgerKindLoan {
			total = total.Add(ledger.DueIn(entry, year, month))
			continue
		}
		if dates.IsSameMonth(entry.Date, year, month) {
			total = total.Add(entry.OriginalAmount)
		}
	}
	return total
}

func (AmortizedScheduleStrategy) Remaining(kind models.LedgerKind, entries []models.LedgerEntry, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		left := entry.OriginalAmount
		switch {
		case entry.Date.IsZero():
		case kind == models.LedgerKindLoan:
			left = left.Sub(ledger.DueThrough(entry, year, month))
		case dates.MonthsBetween(entry.Date, dates.MonthStart(year, month)) >= 0:
			left = decimal.Zero
		}
		total = total.Add(money.NonNegative(left))
	}
	return total
}

// StrategyByName resolves a strategy from its configured name.
func StrategyByName(name string) (DeductionStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyFlat:
		return FlatDeductionStrategy{}, nil
	case StrategyAmortized:
		return AmortizedScheduleStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
