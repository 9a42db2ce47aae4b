// Package export writes employees and payroll records as CSV.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/money"
)

// Missing stands in for empty text columns.
const Missing = "N/A"

type EmployeeRow struct {
	EmployeeID        string `csv:"Employee ID"`
	Name              string `csv:"Name"`
	PhoneNumber       string `csv:"Phone Number"`
	JobTitle          string `csv:"Job Title"`
	Location          string `csv:"Location"`
	BasicSalary       string `csv:"Basic Salary"`
	Commission        string `csv:"Commission"`
	Overtime          string `csv:"Overtime"`
	AdvanceDeductions string `csv:"Advance Deductions"`
	LoanDeductions    string `csv:"Loan Deductions"`
	RemainingAdvance  string `csv:"Remaining Advance"`
	RemainingLoan     string `csv:"Remaining Loan"`
	NetSalary         string `csv:"Net Salary"`
	CNIC              string `csv:"CNIC"`
	JoiningDate       string `csv:"Joining Date"`
}

func NewEmployeeRow(e models.Employee) EmployeeRow {
	return EmployeeRow{
		EmployeeID:        text(e.EmployeeID),
		Name:              text(e.Name),
		PhoneNumber:       text(e.PhoneNumber),
		JobTitle:          text(e.JobTitle),
		Location:          text(e.Location),
		BasicSalary:       money.Format(e.BasicSalary),
		Commission:        money.Format(e.Commission),
		Overtime:          money.Format(e.Overtime),
		AdvanceDeductions: money.Format(ledger.Sum(e.Advances).Deduction),
		LoanDeductions:    money.Format(ledger.Sum(e.Loans).Deduction),
		RemainingAdvance:  money.Format(e.RemainingAdvance),
		RemainingLoan:     money.Format(e.RemainingLoan),
		NetSalary:         money.Format(e.NetSalary),
		CNIC:              text(e.CNIC),
		JoiningDate:       text(dates.Format(e.JoiningDate)),
	}
}

func text(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

// WriteEmployees writes one row per employee, in order, with a header.
func WriteEmployees(w io.Writer, employees []models.Employee) error {
	rows := make([]EmployeeRow, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, NewEmployeeRow(e))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write employees csv: %w", err)
	}
	return nil
}

// ReadEmployees parses a file produced by WriteEmployees back into inputs
// for the roster. Cached and derived columns are ignored.
func ReadEmployees(r io.Reader) ([]models.EmployeeInput, error) {
	var rows []EmployeeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read employees csv: %w", err)
	}
	out := make([]models.EmployeeInput, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.EmployeeInput{
			EmployeeID:  untext(row.EmployeeID),
			Name:        untext(row.Name),
			PhoneNumber: untext(row.PhoneNumber),
			JobTitle:    untext(row.JobTitle),
			Location:    untext(row.Location),
			CNIC:        untext(row.CNIC),
			JoiningDate: untext(row.JoiningDate),
			BasicSalary: row.BasicSalary,
			Commission:  row.Commission,
			Overtime:    row.Overtime,
		})
	}
	return out, nil
}

func untext(s string) string {
	if s == Missing {
		return ""
	}
	return s
}

type MonthlyRow struct {
	Month             string `csv:"Month"`
	EmployeeID        string `csv:"Employee ID"`
	EmployeeName      string `csv:"Name"`
	Headcount         string `csv:"Headcount"`
	Strategy          string `csv:"Strategy"`
	BasicSalary       string `csv:"Basic Salary"`
	Commission        string `csv:"Commission"`
	Overtime          string `csv:"Overtime"`
	Gross             string `csv:"Gross"`
	AdvanceDeductions string `csv:"Advance Deductions"`
	LoanDeductions    string `csv:"Loan Deductions"`
	TotalDeductions   string `csv:"Total Deductions"`
	RemainingAdvance  string `csv:"Remaining Advance"`
	RemainingLoan     string `csv:"Remaining Loan"`
	Net               string `csv:"Net Salary"`
}

func NewMonthlyRow(r models.MonthlyPayrollRecord) MonthlyRow {
	return MonthlyRow{
		Month:             r.MonthKey,
		EmployeeID:        r.EmployeeID,
		EmployeeName:      r.EmployeeName,
		Headcount:         strconv.Itoa(r.Headcount),
		Strategy:          r.Strategy,
		BasicSalary:       money.Format(r.BasicSalary),
		Commission:        money.Format(r.Commission),
		Overtime:          money.Format(r.Overtime),
		Gross:             money.Format(r.Gross),
		AdvanceDeductions: money.Format(r.AdvanceDeductions),
		LoanDeductions:    money.Format(r.LoanDeductions),
		TotalDeductions:   money.Format(r.TotalDeductions),
		RemainingAdvance:  money.Format(r.RemainingAdvance),
		RemainingLoan:     money.Format(r.RemainingLoan),
		Net:               money.Format(r.Net),
	}
}

// WriteMonthly writes payroll records, per employee or aggregated.
func WriteMonthly(w io.Writer, records []models.MonthlyPayrollRecord) error {
	rows := make([]MonthlyRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewMonthlyRow(r))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write payroll csv: %w", err)
	}
	return nil
}

// FileName is the dated download name for an export, e.g.
// employees_2024-06-15.csv.
func FileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, now.Format(dates.DateLayout))
}
