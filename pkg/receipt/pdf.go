package receipt

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/money"
)

// Letterhead is printed at the top of every receipt.
type Letterhead struct {
	CompanyName string
	Currency    string
}

// WritePDF renders r as a one-page A4 receipt.
func WritePDF(w io.Writer, r models.Receipt, head Letterhead) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, head.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s Receipt", title(r.Type)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.Cell(0, 7, fmt.Sprintf("Receipt No: %s", r.Number))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Date: %s", r.IssuedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", r.EmployeeName, r.EmployeeID))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(110, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 8, fmt.Sprintf("Amount (%s)", head.Currency), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range r.Items {
		pdf.CellFormat(110, 8, it.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, dates.Format(it.Date), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 8, money.Format(it.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 8, money.Format(r.Total), "1", 1, "R", false, 0, "")

	if r.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Notes: "+r.Notes, "", "L", false)
	}

	return pdf.Output(w)
}

func title(t models.ReceiptType) string {
	switch t {
	case models.ReceiptTypeSalary:
		return "Salary"
	case models.ReceiptTypeAdvance:
		return "Advance"
	case models.ReceiptTypeLoan:
		return "Loan"
	default:
		return "Payment"
	}
}
