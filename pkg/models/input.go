package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/money"
)

// EmployeeInput is the loosely typed shape employees arrive in from forms,
// JSON bodies and legacy exports. Numbers may be strings, floats or missing.
type EmployeeInput struct {
	ID          any    `json:"id"`
	EmployeeID  string `json:"employeeId"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	JobTitle    string `json:"jobTitle"`
	CNIC        string `json:"cnic"`
	PhoneNumber string `json:"phoneNumber"`
	JoiningDate any    `json:"joiningDate"`

	BasicSalary any `json:"basicSalary"`
	Commission  any `json:"commission"`
	Overtime    any `json:"overtime"`

	Advances []LedgerEntryInput `json:"advances"`
	Loans    []LedgerEntryInput `json:"loans"`
}

type LedgerEntryInput struct {
	ID             any    `json:"id"`
	OriginalAmount any    `json:"originalAmount"`
	Date           any    `json:"date"`
	Reason         string `json:"reason"`
	Deduction      any    `json:"deduction"`
	Installments   any    `json:"installments"`
}

// NewEmployee applies every default and coercion in one place. Cached payroll
// fields and timestamps are left zero; the roster fills them on save.
func NewEmployee(in EmployeeInput) Employee {
	e := Employee{
		ID:          coerceID(in.ID),
		EmployeeID:  strings.TrimSpace(in.EmployeeID),
		Name:        strings.TrimSpace(in.Name),
		Location:    strings.TrimSpace(in.Location),
		JobTitle:    strings.TrimSpace(in.JobTitle),
		CNIC:        strings.TrimSpace(in.CNIC),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		JoiningDate: dates.DateOnly(dates.Parse(in.JoiningDate)),
		BasicSalary: money.NonNegative(money.Coerce(in.BasicSalary)),
		Commission:  money.NonNegative(money.Coerce(in.Commission)),
		Overtime:    money.NonNegative(money.Coerce(in.Overtime)),
		Advances:    make([]LedgerEntry, 0, len(in.Advances)),
		Loans:       make([]LedgerEntry, 0, len(in.Loans)),
	}
	for _, a := range in.Advances {
		e.Advances = append(e.Advances, NewLedgerEntry(a))
	}
	for _, l := range in.Loans {
		e.Loans = append(e.Loans, NewLedgerEntry(l))
	}
	e.UniqueEntryIDs()
	return e
}

// UniqueEntryIDs gives a fresh id to every advance or loan whose id is already
// taken by an earlier entry of e. Legacy records number advances and loans
// independently, so both lists may hash to the same id.
func (e *Employee) UniqueEntryIDs() {
	seen := make(map[uuid.UUID]struct{}, len(e.Advances)+len(e.Loans))
	for _, list := range [][]LedgerEntry{e.Advances, e.Loans} {
		for i := range list {
			if _, dup := seen[list[i].ID]; dup || list[i].ID == uuid.Nil {
				list[i].ID = uuid.New()
			}
			seen[list[i].ID] = struct{}{}
		}
	}
}

// NewLedgerEntry normalizes a single advance or loan.
func NewLedgerEntry(in LedgerEntryInput) LedgerEntry {
	entry := LedgerEntry{
		ID:             coerceID(in.ID),
		OriginalAmount: money.NonNegative(money.Coerce(in.OriginalAmount)),
		Date:           dates.DateOnly(dates.Parse(in.Date)),
		Reason:         in.Reason,
		Deduction:      money.Coerce(in.Deduction),
		Installments:   CoerceInstallments(in.Installments),
	}
	return entry.Normalized()
}

// Normalized clamps Deduction to [0, OriginalAmount] and recomputes
// RemainingAmount.
func (le LedgerEntry) Normalized() LedgerEntry {
	le.OriginalAmount = money.NonNegative(le.OriginalAmount)
	le.Deduction = money.Clamp(le.Deduction, decimal.Zero, le.OriginalAmount)
	le.RemainingAmount = money.NonNegative(le.OriginalAmount.Sub(le.Deduction))
	le.Installments = ClampInstallments(int64(le.Installments))
	return le
}

// MaxInstallments is the longest repayment plan accepted, fifty years of
// monthly installments.
const MaxInstallments = 600

// CoerceInstallments reads an installment count, defaulting to one and capped
// at MaxInstallments.
func CoerceInstallments(v any) int {
	return ClampInstallments(money.Coerce(v).IntPart())
}

// ClampInstallments bounds n to [1, MaxInstallments].
func ClampInstallments(n int64) int {
	switch {
	case n < 1:
		return 1
	case n > MaxInstallments:
		return MaxInstallments
	}
	return int(n)
}

// coerceID keeps a valid uuid, maps legacy numeric or string ids onto a stable
// uuid, and generates a fresh one when nothing usable was sent.
func coerceID(v any) uuid.UUID {
	switch id := v.(type) {
	case uuid.UUID:
		if id != uuid.Nil {
			return id
		}
	case string:
		id = strings.TrimSpace(id)
		if id == "" {
			break
		}
		if parsed, err := uuid.Parse(id); err == nil && parsed != uuid.Nil {
			return parsed
		}
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
	case nil:
	default:
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprint(id)))
	}
	return uuid.New()
}
