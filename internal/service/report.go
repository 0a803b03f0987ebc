package service

import (
	"context"
	"fmt"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/report"
	"ubertool-booking/internal/repository"
)

const maxReportRange = 366 * 24 * time.Hour

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) BookingsReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "must be after from")
	}
	if to.Sub(from) > maxReportRange {
		return nil, domain.NewValidationError("to", "report range cannot exceed one year")
	}

	rows, err := s.reportRepo.BookingsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load report rows: %w", err)
	}
	data, err := report.BookingsWorkbook(rows, from, to)
	if err != nil {
		return nil, err
	}
	logger.Info("Bookings report generated", "from", from, "to", to, "rows", len(rows), "bytes", len(data))
	return data, nil
}
