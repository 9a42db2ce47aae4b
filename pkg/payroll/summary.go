package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
)

// Stats are the roster-wide figures shown above the employee list.
type Stats struct {
	TotalEmployees        int             `json:"totalEmployees"`
	TotalPayroll          decimal.Decimal `json:"totalPayroll"`
	NewThisMonth          int             `json:"newThisMonth"`
	TotalAdvanceDeducted  decimal.Decimal `json:"totalAdvanceDeducted"`
	TotalLoanDeducted     decimal.Decimal `json:"totalLoanDeducted"`
	TotalCommission       decimal.Decimal `json:"totalCommission"`
	TotalRemainingAdvance decimal.Decimal `json:"totalRemainingAdvance"`
	TotalRemainingLoan    decimal.Decimal `json:"totalRemainingLoan"`
}

// Summarize totals a roster. now only decides which joiners count as new this
// month.
func Summarize(employees []models.Employee, now time.Time) Stats {
	s := Stats{
		TotalEmployees:        len(employees),
		TotalPayroll:          decimal.Zero,
		TotalAdvanceDeducted:  decimal.Zero,
		TotalLoanDeducted:     decimal.Zero,
		TotalCommission:       decimal.Zero,
		TotalRemainingAdvance: decimal.Zero,
		TotalRemainingLoan:    decimal.Zero,
	}
	for _, e := range employees {
		s.TotalPayroll = s.TotalPayroll.Add(CurrentNetSalary(e))
		s.TotalAdvanceDeducted = s.TotalAdvanceDeducted.Add(ledger.Sum(e.Advances).Deduction)
		s.TotalLoanDeducted = s.TotalLoanDeducted.Add(ledger.Sum(e.Loans).Deduction)
		s.TotalCommission = s.TotalCommission.Add(e.Commission)
		s.TotalRemainingAdvance = s.TotalRemainingAdvance.Add(ledger.Sum(e.Advances).Remaining)
		s.TotalRemainingLoan = s.TotalRemainingLoan.Add(ledger.Sum(e.Loans).Remaining)
		if dates.IsSameMonth(e.JoiningDate, now.Year(), now.Month()) {
			s.NewThisMonth++
		}
	}
	return s
}
