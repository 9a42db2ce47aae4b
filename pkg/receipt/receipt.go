// Package receipt builds and renders receipts from an employee snapshot.
package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/money"
)

var ErrUnknownType = errors.New("unknown receipt type")

const (
	KindEarning   = "earning"
	KindDeduction = "deduction"
	KindAdvance   = "advance"
	KindLoan      = "loan"
	KindCustom    = "custom"
)

// ParseType validates a receipt type name. An empty name means salary.
func ParseType(s string) (models.ReceiptType, error) {
	t := models.ReceiptType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return models.ReceiptTypeSalary, nil
	}
	for _, known := range models.ReceiptTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// CustomItem is a free line item typed in by the user.
type CustomItem struct {
	Description string `json:"description"`
	Amount      any    `json:"amount"`
}

// Items lists the line items of a receipt of type t for e.
func Items(e models.Employee, t models.ReceiptType, custom []CustomItem) ([]models.ReceiptItem, error) {
	switch t {
	case models.ReceiptTypeSalary:
		all := []models.ReceiptItem{
			{Description: "Basic Salary", Amount: e.BasicSalary, Kind: KindEarning},
			{Description: "Commission", Amount: e.Commission, Kind: KindEarning},
			{Description: "Overtime Pay", Amount: e.Overtime, Kind: KindEarning},
			{Description: "Advance Deduction", Amount: ledger.Sum(e.Advances).Deduction.Neg(), Kind: KindDeduction},
			{Description: "Loan Deduction", Amount: ledger.Sum(e.Loans).Deduction.Neg(), Kind: KindDeduction},
		}
		items := make([]models.ReceiptItem, 0, len(all))
		for _, it := range all {
			if !it.Amount.IsZero() {
				items = append(items, it)
			}
		}
		return items, nil
	case models.ReceiptTypeAdvance:
		return draws("Advance", KindAdvance, e.Advances), nil
	case models.ReceiptTypeLoan:
		return draws("Loan", KindLoan, e.Loans), nil
	case models.ReceiptTypeCustom:
		items := make([]models.ReceiptItem, 0, len(custom))
		for _, c := range custom {
			items = append(items, models.ReceiptItem{
				Description: strings.TrimSpace(c.Description),
				Amount:      money.Coerce(c.Amount),
				Kind:        KindCustom,
			})
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func draws(label, kind string, entries []models.LedgerEntry) []models.ReceiptItem {
	items := make([]models.ReceiptItem, 0, len(entries))
	for _, le := range entries {
		reason := strings.TrimSpace(le.Reason)
		if reason == "" {
			reason = "General"
		}
		items = append(items, models.ReceiptItem{
			Description: fmt.Sprintf("%s: %s", label, reason),
			Amount:      le.OriginalAmount,
			Kind:        kind,
			Date:        le.Date,
		})
	}
	return items
}

// Build snapshots a receipt for e at time now.
func Build(e models.Employee, t models.ReceiptType, custom []CustomItem, notes string, now time.Time) (models.Receipt, error) {
	items, err := Items(e, t, custom)
	if err != nil {
		return models.Receipt{}, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return models.Receipt{
		ID:           uuid.New(),
		Number:       Number(now),
		EmployeeRef:  e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.Name,
		Type:         t,
		Items:        items,
		Total:        total,
		Notes:        strings.TrimSpace(notes),
		IssuedAt:     now,
	}, nil
}

// Number is the printed receipt number.
func Number(now time.Time) string {
	return fmt.Sprintf("RCP-%d", now.UnixMilli())
}

// UniqueNumber returns number, or number with a "-2", "-3"... suffix when an
// issued receipt already carries it.
func UniqueNumber(number string, issued []models.Receipt) string {
	taken := make(map[string]struct{}, len(issued))
	for _, r := range issued {
		taken[r.Number] = struct{}{}
	}
	candidate := number
	for n := 2; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", number, n)
	}
}
