package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerKind tells which bucket of an employee a ledger entry belongs to.
type LedgerKind string

const (
	LedgerKindAdvance LedgerKind = "advance"
	LedgerKindLoan    LedgerKind = "loan"
)

// Valid reports whether k is a known ledger kind.
func (k LedgerKind) Valid() bool {
	return k == LedgerKindAdvance || k == LedgerKindLoan
}

// LedgerEntry is an amount drawn against future salary, either an advance or
// a loan. Both kinds share the same rules.
type LedgerEntry struct {
	ID              uuid.UUID       `json:"id"`
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	Date            time.Time       `json:"date,omitzero"`
	Reason          string          `json:"reason"`
	Deduction       decimal.Decimal `json:"deduction"`       // Withheld per payroll period, within [0, OriginalAmount]
	RemainingAmount decimal.Decimal `json:"remainingAmount"` // max(0, OriginalAmount - Deduction)
	Installments    int             `json:"installments"`    // Months to repay over; only the amortized schedule reads it
}

type Employee struct {
	ID          uuid.UUID `json:"id"`
	EmployeeID  string    `json:"employeeId"` // Human-facing code, unique
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	JobTitle    string    `json:"jobTitle"`
	CNIC        string    `json:"cnic"`
	PhoneNumber string    `json:"phoneNumber"`
	JoiningDate time.Time `json:"joiningDate,omitzero"`

	BasicSalary decimal.Decimal `json:"basicSalary"`
	Commission  decimal.Decimal `json:"commission"`
	Overtime    decimal.Decimal `json:"overtime"`

	Advances []LedgerEntry `json:"advances"`
	Loans    []LedgerEntry `json:"loans"`

	// Cached for listing. Only the roster write path may set these.
	NetSalary        decimal.Decimal `json:"netSalary"`
	RemainingAdvance decimal.Decimal `json:"remainingAdvance"`
	RemainingLoan    decimal.Decimal `json:"remainingLoan"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Entries returns the ledger list of the given kind.
func (e *Employee) Entries(kind LedgerKind) []LedgerEntry {
	if kind == LedgerKindLoan {
		return e.Loans
	}
	return e.Advances
}

// SetEntries replaces the ledger list of the given kind.
func (e *Employee) SetEntries(kind LedgerKind, entries []LedgerEntry) {
	if kind == LedgerKindLoan {
		e.Loans = entries
		return
	}
	e.Advances = entries
}

// Clone returns a copy that shares no slices with e.
func (e Employee) Clone() Employee {
	e.Advances = slices.Clone(e.Advances)
	e.Loans = slices.Clone(e.Loans)
	return e
}

// MonthlyPayrollRecord is the payroll of one employee, or of a whole roster,
// for one calendar month. It is derived and never stored.
type MonthlyPayrollRecord struct {
	EmployeeID   string     `json:"employeeId,omitempty"` // Empty for aggregated records
	EmployeeName string     `json:"employeeName,omitempty"`
	Headcount    int        `json:"headcount"`
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	MonthKey     string     `json:"monthKey"`
	Strategy     string     `json:"strategy"`

	BasicSalary decimal.Decimal `json:"basicSalary"`
	Commission  decimal.Decimal `json:"commission"`
	Overtime    decimal.Decimal `json:"overtime"`
	Gross       decimal.Decimal `json:"gross"`

	AdvanceDeductions decimal.Decimal `json:"advanceDeductions"`
	LoanDeductions    decimal.Decimal `json:"loanDeductions"`
	TotalDeductions   decimal.Decimal `json:"totalDeductions"`

	TotalAdvanceTaken decimal.Decimal `json:"totalAdvanceTaken"`
	TotalLoanTaken    decimal.Decimal `json:"totalLoanTaken"`
	RemainingAdvance  decimal.Decimal `json:"remainingAdvance"`
	RemainingLoan     decimal.Decimal `json:"remainingLoan"`

	Net decimal.Decimal `json:"net"`
}

// SameAmounts compares every money field of r and o by value.
func (r MonthlyPayrollRecord) SameAmounts(o MonthlyPayrollRecord) bool {
	a, b := r.amounts(), o.amounts()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (r MonthlyPayrollRecord) amounts() []decimal.Decimal {
	return []decimal.Decimal{
		r.BasicSalary, r.Commission, r.Overtime, r.Gross,
		r.AdvanceDeductions, r.LoanDeductions, r.TotalDeductions,
		r.TotalAdvanceTaken, r.TotalLoanTaken, r.RemainingAdvance, r.RemainingLoan,
		r.Net,
	}
}

// Installment is one due payment of an amortized ledger entry.
type Installment struct {
	Sequence int             `json:"sequence"`
	DueDate  time.Time       `json:"dueDate"`
	Amount   decimal.Decimal `json:"amount"`
	Paid     bool            `json:"paid"`
}

type ReceiptType string

const (
	ReceiptTypeSalary  ReceiptType = "salary"
	ReceiptTypeAdvance ReceiptType = "advance"
	ReceiptTypeLoan    ReceiptType = "loan"
	ReceiptTypeCustom  ReceiptType = "custom"
)

// ReceiptTypes lists the receipt types in display order.
var ReceiptTypes = []ReceiptType{ReceiptTypeSalary, ReceiptTypeAdvance, ReceiptTypeLoan, ReceiptTypeCustom}

type ReceiptItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"type"` // earning, deduction, advance, loan or custom
	Date        time.Time       `json:"date,omitzero"`
}

// Receipt is an immutable snapshot of line items issued to an employee.
type Receipt struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"receiptNumber"`
	EmployeeRef  uuid.UUID       `json:"employeeRef"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Type         ReceiptType     `json:"type"`
	Items        []ReceiptItem   `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
	IssuedAt     time.Time       `json:"date"`
}
