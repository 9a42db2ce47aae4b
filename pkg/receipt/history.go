package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/models"
)

// Filter narrows the receipt history. Zero fields match everything. To is
// inclusive of the whole day.
type Filter struct {
	Search     string
	Type       models.ReceiptType
	EmployeeID string
	From       time.Time
	To         time.Time
}

func (f Filter) Match(r models.Receipt) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(r.EmployeeName), term) &&
			!strings.Contains(strings.ToLower(r.Number), term) &&
			!strings.Contains(strings.ToLower(r.Notes), term) {
			return false
		}
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if !f.From.IsZero() && r.IssuedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !r.IssuedAt.Before(f.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func (f Filter) Apply(receipts []models.Receipt) []models.Receipt {
	out := make([]models.Receipt, 0, len(receipts))
	for _, r := range receipts {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

type Totals struct {
	ByType map[models.ReceiptType]decimal.Decimal `json:"byType"`
	Count  int                                    `json:"count"`
}

// TotalsByType sums receipt totals per type.
func TotalsByType(receipts []models.Receipt) Totals {
	t := Totals{ByType: make(map[models.ReceiptType]decimal.Decimal, len(models.ReceiptTypes))}
	for _, typ := range models.ReceiptTypes {
		t.ByType[typ] = decimal.Zero
	}
	for _, r := range receipts {
		t.ByType[r.Type] = t.ByType[r.Type].Add(r.Total)
		t.Count++
	}
	return t
}
