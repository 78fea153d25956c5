package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"restobill/internal/common"
	"restobill/internal/models"
)

// ReceiptService renders printable bills
type ReceiptService interface {
	RenderReceipt(order *models.Order, organizationName string) ([]byte, error)
}

type receiptService struct{}

func NewReceiptService() ReceiptService {
	return &receiptService{}
}

func (s *receiptService) RenderReceipt(order *models.Order, organizationName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.AddPage()

	marginX := 10.0
	pdf.SetMargins(marginX, 10, marginX)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(organizationName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Bill Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.Cell(0, 5, fmt.Sprintf("Bill No: %s", order.ID))
	pdf.Ln(5)
	local := order.CreatedAt.In(common.BusinessZone)
	pdf.Cell(0, 5, fmt.Sprintf("Date: %s", local.Format("02-Jan-2006 03:04 PM")))
	pdf.Ln(5)
	if order.TableNumber != nil {
		pdf.Cell(0, 5, fmt.Sprintf("Table: %d", *order.TableNumber))
		pdf.Ln(5)
	}
	if order.CustomerName != nil {
		pdf.Cell(0, 5, tr(fmt.Sprintf("Customer: %s", *order.CustomerName)))
		pdf.Ln(5)
	}
	pdf.Ln(2)

	// Items
	colWidths := []float64{64, 14, 25, 25}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range []string{"Item", "Qty", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(colWidths[i], 7, header, "1", 0, align, true, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	for _, item := range order.Items {
		pdf.CellFormat(colWidths[0], 6, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 6, fmt.Sprintf("%.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 6, fmt.Sprintf("%.2f", item.LineTotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.Ln(3)

	// Totals
	labelWidth := colWidths[0] + colWidths[1] + colWidths[2]
	line := func(label string, amount float64) {
		pdf.CellFormat(labelWidth, 5, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 5, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
	}
	line("Subtotal:", order.Subtotal)
	if order.Discount > 0 {
		line("Discount:", -order.Discount)
	}
	line(fmt.Sprintf("Tax (%.2f%%):", order.TaxRate), order.Tax)

	pdf.SetFont("Arial", "B", 11)
	line("Total:", order.Total)

	pdf.SetFont("Arial", "", 9)
	line("Paid:", order.PaymentReceived)
	if order.BalanceAmount > 0 {
		line("Balance Due:", order.BalanceAmount)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Thank you for dining with us", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
