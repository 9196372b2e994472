// Package report renders downloadable reports. It is a pure view layer: it
// receives already-fetched data and never touches session state.
package report

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-billdesk/billing"
	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

// WriteStatement renders the user's payment history as a PDF statement.
func WriteStatement(w io.Writer, id *identity.Identity, payments []billing.Payment) error {
	if id == nil {
		return errors.New("[WriteStatement] identity is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("BillDesk Payment Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payment Statement")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	name := id.DisplayName
	if name == "" {
		name = id.Email
	}
	pdf.Cell(0, 7, name)
	pdf.Ln(6)
	pdf.Cell(0, 7, id.Email)
	pdf.Ln(12)

	headers := []string{"Date Paid", "Bill", "Status", "Amount"}
	widths := []float64{35, 80, 30, 35}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	var total float64
	for _, payment := range payments {
		pdf.CellFormat(widths[0], 7, payment.DatePaid, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, payment.BillID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, payment.Status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", payment.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		total += payment.Amount
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, fmt.Sprintf("%.2f", total), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "[WriteStatement] pdf.Output")
	}
	return nil
}
