package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// GeneratePayslipPDF renders one payroll item as a PDF and returns the
// document bytes for the download handler to stream.
func GeneratePayslipPDF(data PayslipData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", data.Item.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s to %s)", data.PeriodName, data.StartDate.Format("2006-01-02"), data.EndDate.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Basic Pay: %.2f", data.Item.BasicPay))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Overtime Pay: %.2f", data.Item.OvertimePay))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Holiday Pay: %.2f", data.Item.HolidayPay))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total Earnings: %.2f", data.Item.TotalEarnings))
	pdf.Ln(10)
	for _, line := range data.Item.Deductions {
		pdf.Cell(0, 8, fmt.Sprintf("Less %s: %.2f", line.Name, line.Amount))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Total Deductions: %.2f", data.Item.TotalDeductions))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net Pay: %.2f", data.Item.NetPay))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
