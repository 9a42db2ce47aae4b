package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcclellann/fredPayroll/pkg/models"
)

func employee() models.Employee {
	return models.Employee{
		ID:          uuid.New(),
		EmployeeID:  "EMP001",
		Name:        "John Doe",
		BasicSalary: decimal.NewFromInt(50000),
		Commission:  decimal.NewFromInt(5000),
		Advances: []models.LedgerEntry{
			{ID: uuid.New(), OriginalAmount: decimal.NewFromInt(2000), Deduction: decimal.NewFromInt(2000), Reason: "rent", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), OriginalAmount: decimal.NewFromInt(500), Deduction: decimal.NewFromInt(100)},
		},
		Loans: []models.LedgerEntry{
			{ID: uuid.New(), OriginalAmount: decimal.NewFromInt(1000), Deduction: decimal.NewFromInt(1000)},
		},
	}
}

var issued = time.Date(2024, 5, 31, 17, 0, 0, 0, time.UTC)

func TestBuildSalaryReceipt(t *testing.T) {
	r, err := Build(employee(), models.ReceiptTypeSalary, nil, " May ", issued)
	require.NoError(t, err)

	require.Len(t, r.Items, 4, "zero overtime is left out")
	assert.Equal(t, "Basic Salary", r.Items[0].Description)
	assert.Equal(t, "Advance Deduction", r.Items[2].Description)
	assert.True(t, r.Items[2].Amount.Equal(decimal.NewFromInt(-2100)))
	assert.Equal(t, KindDeduction, r.Items[3].Kind)
	assert.True(t, r.Total.Equal(decimal.NewFromInt(50000+5000-2100-1000)))
	assert.Equal(t, "May", r.Notes)
	assert.Equal(t, "RCP-1717174800000", r.Number)
	assert.Equal(t, "EMP001", r.EmployeeID)
	assert.Equal(t, issued, r.IssuedAt)
}

func TestBuildAdvanceAndLoanReceipts(t *testing.T) {
	r, err := Build(employee(), models.ReceiptTypeAdvance, nil, "", issued)
	require.NoError(t, err)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "Advance: rent", r.Items[0].Description)
	assert.Equal(t, "Advance: General", r.Items[1].Description)
	assert.True(t, r.Total.Equal(decimal.NewFromInt(2500)))

	r, err = Build(employee(), models.ReceiptTypeLoan, nil, "", issued)
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.True(t, r.Total.Equal(decimal.NewFromInt(1000)))
}

func TestBuildCustomReceipt(t *testing.T) {
	custom := []CustomItem{
		{Description: "Bonus", Amount: "750.50"},
		{Description: "Uniform", Amount: -120},
		{Description: "Typo", Amount: "n/a"},
	}
	r, err := Build(employee(), models.ReceiptTypeCustom, custom, "", issued)
	require.NoError(t, err)
	require.Len(t, r.Items, 3)
	assert.True(t, r.Items[2].Amount.IsZero())
	assert.True(t, r.Total.Equal(decimal.RequireFromString("630.50")))
}

func TestBuildUnknownType(t *testing.T) {
	_, err := Build(employee(), models.ReceiptType("bonus"), nil, "", issued)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptTypeSalary, typ)

	typ, err = ParseType(" LOAN ")
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptTypeLoan, typ)

	_, err = ParseType("refund")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func history() []models.Receipt {
	mk := func(name, code string, typ models.ReceiptType, total int64, at time.Time, notes string) models.Receipt {
		return models.Receipt{ID: uuid.New(), Number: Number(at), EmployeeName: name, EmployeeID: code, Type: typ, Total: decimal.NewFromInt(total), IssuedAt: at, Notes: notes}
	}
	return []models.Receipt{
		mk("John Doe", "EMP001", models.ReceiptTypeSalary, 51900, time.Date(2024, 5, 31, 17, 0, 0, 0, time.UTC), ""),
		mk("Jane Smith", "EMP002", models.ReceiptTypeAdvance, 1500, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), "emergency"),
		mk("John Doe", "EMP001", models.ReceiptTypeLoan, 1000, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), ""),
	}
}

func TestFilter(t *testing.T) {
	rs := history()

	assert.Len(t, Filter{}.Apply(rs), 3)
	assert.Len(t, Filter{Search: "john"}.Apply(rs), 2)
	assert.Len(t, Filter{Search: "EMERG"}.Apply(rs), 1)
	assert.Len(t, Filter{Search: rs[2].Number}.Apply(rs), 1)
	assert.Len(t, Filter{Type: models.ReceiptTypeLoan}.Apply(rs), 1)
	assert.Len(t, Filter{EmployeeID: "EMP002"}.Apply(rs), 1)
	assert.Len(t, Filter{From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}.Apply(rs), 2)
	assert.Len(t, Filter{To: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)}.Apply(rs), 1, "end date covers the whole day")
	assert.Len(t, Filter{From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)}.Apply(rs), 1)
}

func TestTotalsByType(t *testing.T) {
	totals := TotalsByType(history())
	assert.Equal(t, 3, totals.Count)
	assert.True(t, totals.ByType[models.ReceiptTypeSalary].Equal(decimal.NewFromInt(51900)))
	assert.True(t, totals.ByType[models.ReceiptTypeAdvance].Equal(decimal.NewFromInt(1500)))
	assert.True(t, totals.ByType[models.ReceiptTypeLoan].Equal(decimal.NewFromInt(1000)))
	assert.True(t, totals.ByType[models.ReceiptTypeCustom].IsZero())
}

func TestWritePDF(t *testing.T) {
	r, err := Build(employee(), models.ReceiptTypeSalary, nil, "Paid in cash", issued)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, r, Letterhead{CompanyName: "Acme Trading LLC", Currency: "AED"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestUniqueNumber(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	base := Number(at)

	assert.Equal(t, base, UniqueNumber(base, nil))

	issued := []models.Receipt{{Number: base}, {Number: base + "-2"}}
	assert.Equal(t, base+"-3", UniqueNumber(base, issued))
	assert.Equal(t, "RCP-1", UniqueNumber("RCP-1", issued))
}
