package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/models"
)

// AmortizedSchedule splits an entry into equal monthly installments of
// ceil(OriginalAmount / Installments). The first one falls due on the 1st of
// the month after the disbursement date. An entry without a date has no
// schedule.
func AmortizedSchedule(entry models.LedgerEntry) []models.Installment {
	if entry.Date.IsZero() {
		return nil
	}
	count := installments(entry)
	per := perInstallment(entry, count)
	first := dates.StartOfNextMonth(entry.Date)

	schedule := make([]models.Installment, 0, count)
	for i := 0; i < count; i++ {
		schedule = append(schedule, models.Installment{
			Sequence: i + 1,
			DueDate:  dates.AddMonths(first, i),
			Amount:   per,
			Paid:     false,
		})
	}
	return schedule
}

// DueIn is the installment of entry due in (year, month), or zero when none
// falls in that month.
func DueIn(entry models.LedgerEntry, year int, month time.Month) decimal.Decimal {
	count := installments(entry)
	if !dates.MonthRangeContains(entry.Date, count, year, month) {
		return decimal.Zero
	}
	return perInstallment(entry, count)
}

// DueThrough sums the installments of entry due on or before the end of
// (year, month).
func DueThrough(entry models.LedgerEntry, year int, month time.Month) decimal.Decimal {
	if entry.Date.IsZero() {
		return decimal.Zero
	}
	count := installments(entry)
	due := dates.MonthsBetween(dates.StartOfNextMonth(entry.Date), dates.MonthStart(year, month)) + 1
	switch {
	case due <= 0:
		return decimal.Zero
	case due > count:
		due = count
	}
	return perInstallment(entry, count).Mul(decimal.NewFromInt(int64(due)))
}

func installments(entry models.LedgerEntry) int {
	return models.ClampInstallments(int64(entry.Installments))
}

func perInstallment(entry models.LedgerEntry, count int) decimal.Decimal {
	return entry.OriginalAmount.Div(decimal.NewFromInt(int64(count))).Ceil()
}
