package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportSvc service.ReportService
}

func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// BookingsReport streams the bookings workbook for the [from, to) date range.
func (h *ReportHandler) BookingsReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("from", "must be a yyyy-mm-dd date"))
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("to", "must be a yyyy-mm-dd date"))
		return
	}

	data, err := h.reportSvc.BookingsReport(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
