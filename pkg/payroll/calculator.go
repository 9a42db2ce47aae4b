// Package payroll turns employee snapshots into payroll figures.
//
// Everything here is a pure function of its arguments: no clock reads, no I/O,
// no errors for malformed amounts. Two calls with the same employee give the
// same record.
package payroll

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
)

var (
	ErrNoStrategy      = errors.New("deduction strategy is required")
	ErrUnknownStrategy = errors.New("unknown deduction strategy")
)

// Gross is basic salary plus commission plus overtime.
func Gross(e models.Employee) decimal.Decimal {
	return e.BasicSalary.Add(e.Commission).Add(e.Overtime)
}

// CurrentNetSalary is gross minus the standing deduction of every advance and
// loan. A negative result is a deficit and is returned as is.
func CurrentNetSalary(e models.Employee) decimal.Decimal {
	deductions := ledger.Sum(e.Advances).Deduction.Add(ledger.Sum(e.Loans).Deduction)
	return Gross(e).Sub(deductions)
}

// Refresh recomputes the cached NetSalary, RemainingAdvance and RemainingLoan
// of e from its current ledgers.
func Refresh(e *models.Employee) {
	e.NetSalary = CurrentNetSalary(*e)
	e.RemainingAdvance = ledger.Sum(e.Advances).Remaining
	e.RemainingLoan = ledger.Sum(e.Loans).Remaining
}

// IsStale reports whether the cached fields of e disagree with its ledgers.
func IsStale(e models.Employee) bool {
	fresh := e
	Refresh(&fresh)
	return !fresh.NetSalary.Equal(e.NetSalary) ||
		!fresh.RemainingAdvance.Equal(e.RemainingAdvance) ||
		!fresh.RemainingLoan.Equal(e.RemainingLoan)
}

// Calculator produces period records using one deduction strategy.
type Calculator struct {
	strategy DeductionStrategy
}

// NewCalculator binds a calculator to a strategy. There is no default: the
// flat and amortized models give different numbers for the same month.
func NewCalculator(strategy DeductionStrategy) (*Calculator, error) {
	if strategy == nil {
		return nil, ErrNoStrategy
	}
	return &Calculator{strategy: strategy}, nil
}

// Strategy returns the deduction strategy the calculator was built with.
func (c *Calculator) Strategy() DeductionStrategy {
	return c.strategy
}

// MonthlyPayroll computes the record of one employee for (year, month). Gross
// is not prorated: the same recurring salary is reported for any month.
func (c *Calculator) MonthlyPayroll(e models.Employee, year int, month time.Month) models.MonthlyPayrollRecord {
	advanceDeductions := c.strategy.Deductions(models.LedgerKindAdvance, e.Advances, year, month)
	loanDeductions := c.strategy.Deductions(models.LedgerKindLoan, e.Loans, year, month)
	totalDeductions := advanceDeductions.Add(loanDeductions)
	gross := Gross(e)

	return models.MonthlyPayrollRecord{
		EmployeeID:        e.EmployeeID,
		EmployeeName:      e.Name,
		Headcount:         1,
		Year:              year,
		Month:             month,
		MonthKey:          dates.MonthKey(year, month),
		Strategy:          c.strategy.Name(),
		BasicSalary:       e.BasicSalary,
		Commission:        e.Commission,
		Overtime:          e.Overtime,
		Gross:             gross,
		AdvanceDeductions: advanceDeductions,
		LoanDeductions:    loanDeductions,
		TotalDeductions:   totalDeductions,
		TotalAdvanceTaken: ledger.Sum(e.Advances).Original,
		TotalLoanTaken:    ledger.Sum(e.Loans).Original,
		RemainingAdvance:  c.strategy.Remaining(models.LedgerKindAdvance, e.Advances, year, month),
		RemainingLoan:     c.strategy.Remaining(models.LedgerKindLoan, e.Loans, year, month),
		Net:               gross.Sub(totalDeductions),
	}
}

// MonthlyPayrolls computes one record per employee, in input order.
func (c *Calculator) MonthlyPayrolls(employees []models.Employee, year int, month time.Month) []models.MonthlyPayrollRecord {
	records := make([]models.MonthlyPayrollRecord, 0, len(employees))
	for _, e := range employees {
		records = append(records, c.MonthlyPayroll(e, year, month))
	}
	return records
}

// YearlyPayroll returns twelve aggregate records, January through December,
// each summing MonthlyPayroll over all employees. With the flat strategy every
// month carries the same amounts.
func (c *Calculator) YearlyPayroll(employees []models.Employee, year int) []models.MonthlyPayrollRecord {
	months := make([]models.MonthlyPayrollRecord, 0, 12)
	for m := time.January; m <= time.December; m++ {
		agg := Aggregate(c.MonthlyPayrolls(employees, year, m))
		agg.Year = year
		agg.Month = m
		agg.MonthKey = dates.MonthKey(year, m)
		agg.Strategy = c.strategy.Name()
		months = append(months, agg)
	}
	return months
}

// Aggregate sums records into one. The identity fields are left empty and
// Headcount adds up.
func Aggregate(records []models.MonthlyPayrollRecord) models.MonthlyPayrollRecord {
	out := zeroRecord()
	for _, r := range records {
		out.Headcount += r.Headcount
		out.BasicSalary = out.BasicSalary.Add(r.BasicSalary)
		out.Commission = out.Commission.Add(r.Commission)
		out.Overtime = out.Overtime.Add(r.Overtime)
		out.Gross = out.Gross.Add(r.Gross)
		out.AdvanceDeductions = out.AdvanceDeductions.Add(r.AdvanceDeductions)
		out.LoanDeductions = out.LoanDeductions.Add(r.LoanDeductions)
		out.TotalDeductions = out.TotalDeductions.Add(r.TotalDeductions)
		out.TotalAdvanceTaken = out.TotalAdvanceTaken.Add(r.TotalAdvanceTaken)
		out.TotalLoanTaken = out.TotalLoanTaken.Add(r.TotalLoanTaken)
		out.RemainingAdvance = out.RemainingAdvance.Add(r.RemainingAdvance)
		out.RemainingLoan = out.RemainingLoan.Add(r.RemainingLoan)
		out.Net = out.Net.Add(r.Net)
	}
	return out
}

// YearTotals is the totals row under a yearly view. Flow amounts (gross,
// deductions, net) add up across months; balances are taken from the last
// month since they are point-in-time figures. Headcount is the largest monthly
// headcount.
func YearTotals(months []models.MonthlyPayrollRecord) models.MonthlyPayrollRecord {
	out := zeroRecord()
	for _, r := range months {
		out.Year = r.Year
		out.Strategy = r.Strategy
		out.Headcount = max(out.Headcount, r.Headcount)
		out.BasicSalary = out.BasicSalary.Add(r.BasicSalary)
		out.Commission = out.Commission.Add(r.Commission)
		out.Overtime = out.Overtime.Add(r.Overtime)
		out.Gross = out.Gross.Add(r.Gross)
		out.AdvanceDeductions = out.AdvanceDeductions.Add(r.AdvanceDeductions)
		out.LoanDeductions = out.LoanDeductions.Add(r.LoanDeductions)
		out.TotalDeductions = out.TotalDeductions.Add(r.TotalDeductions)
		out.Net = out.Net.Add(r.Net)
		out.TotalAdvanceTaken = r.TotalAdvanceTaken
		out.TotalLoanTaken = r.TotalLoanTaken
		out.RemainingAdvance = r.RemainingAdvance
		out.RemainingLoan = r.RemainingLoan
	}
	return out
}

func zeroRecord() models.MonthlyPayrollRecord {
	return models.MonthlyPayrollRecord{
		BasicSalary:       decimal.Zero,
		Commission:        decimal.Zero,
		Overtime:          decimal.Zero,
		Gross:             decimal.Zero,
		AdvanceDeductions: decimal.Zero,
		LoanDeductions:    decimal.Zero,
		TotalDeductions:   decimal.Zero,
		TotalAdvanceTaken: decimal.Zero,
		TotalLoanTaken:    decimal.Zero,
		RemainingAdvance:  decimal.Zero,
		RemainingLoan:     decimal.Zero,
		Net:               decimal.Zero,
	}
}
