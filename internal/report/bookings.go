package report

import (
	"fmt"
	"time"

	"ubertool-booking/internal/domain"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

var headers = []string{
	"Booking ID", "Tool", "Renter", "Owner", "Start", "End", "Status", "Payment",
	"Total", "Deposit", "Cancellation fee", "Refund", "Created",
}

// BookingsWorkbook renders rows as an xlsx workbook. Money columns are in currency units.
func BookingsWorkbook(rows []domain.BookingReportRow, from, to time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(SheetName, "A1", fmt.Sprintf("Bookings %s - %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	var total, fees, refunds int64
	for i, r := range rows {
		row := i + 3
		values := []any{
			r.BookingID.String(), r.ToolName, r.RenterName, r.OwnerName,
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
			string(r.Status), string(r.PaymentStatus),
			units(r.TotalPriceCents), units(r.DepositCents), units(r.CancellationFeeCents), units(r.RefundAmountCents),
			r.CreatedAt.Format(time.RFC3339),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", row, err)
		}
		total += int64(r.TotalPriceCents)
		fees += int64(r.CancellationFeeCents)
		refunds += int64(r.RefundAmountCents)
	}

	summary := len(rows) + 4
	_ = f.SetCellValue(SheetName, fmt.Sprintf("A%d", summary), fmt.Sprintf("%d bookings", len(rows)))
	_ = f.SetCellValue(SheetName, fmt.Sprintf("I%d", summary), float64(total)/100)
	_ = f.SetCellValue(SheetName, fmt.Sprintf("K%d", summary), float64(fees)/100)
	_ = f.SetCellValue(SheetName, fmt.Sprintf("L%d", summary), float64(refunds)/100)

	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "D", 22)
	_ = f.SetColWidth(SheetName, "E", "L", 14)
	_ = f.SetColWidth(SheetName, "M", "M", 24)
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func units(cents int32) float64 {
	return float64(cents) / 100
}
