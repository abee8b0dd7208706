package salary

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WriteStatementPDF renders rows as a one-table salary statement.
func WriteStatementPDF(w io.Writer, title string, rows []Entry) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(10)

	widths := []float64{24, 50, 28, 18, 34, 26}
	headers := []string{"Month", "Period", "Bond", "Partial", "Amount", "Status"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		partial := ""
		if r.IsPartialMonth {
			partial = "yes"
		}
		status := "unpaid"
		if r.IsPaid {
			status = "paid"
		}
		cells := []string{
			r.Key().String(),
			fmt.Sprintf("%s to %s", r.StartDate, r.EndDate),
			string(r.BondType),
			partial,
			r.Amount.StringFixed(2),
			status,
		}
		for i, c := range cells {
			align := "L"
			if i == 4 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s  Paid: %s", Total(rows).StringFixed(2), PaidTotal(rows).StringFixed(2)))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render salary statement: %w", err)
	}
	return nil
}
