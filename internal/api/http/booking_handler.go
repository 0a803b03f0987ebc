package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/service"
	"ubertool-booking/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger.EnterMethod("BookingHandler.CreateBooking")
	var req createBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := utils.ParseRentalDate(req.StartDate)
	if err != nil {
		writeError(w, r, domain.NewValidationError("start_date", "%v", err))
		return
	}
	end, err := utils.ParseRentalDate(req.EndDate)
	if err != nil {
		writeError(w, r, domain.NewValidationError("end_date", "%v", err))
		return
	}

	renterID := UserIDFromContext(r.Context())
	b, err := h.bookingSvc.CreateBooking(r.Context(), req.ToolID, renterID, start, end)
	if err != nil {
		logger.ExitMethodWithError("BookingHandler.CreateBooking", err, "toolID", req.ToolID, "renterID", renterID)
		writeError(w, r, err)
		return
	}
	logger.ExitMethod("BookingHandler.CreateBooking", "bookingID", b.ID)
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.GetBookingDetailed(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PreviewCancellation returns the fee and refund the caller would get if they cancelled now,
// or at the optional as_of timestamp.
func (h *BookingHandler) PreviewCancellation(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.bookingSvc.PreviewCancellation(r.Context(), id, UserIDFromContext(r.Context()), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	logger.EnterMethod("BookingHandler.CancelBooking")
	id, err := bookingIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actorID := UserIDFromContext(r.Context())
	b, err := h.bookingSvc.CancelBooking(r.Context(), id, actorID, req.Reason, time.Time{})
	if err != nil {
		logger.ExitMethodWithError("BookingHandler.CancelBooking", err, "bookingID", id, "actorID", actorID)
		writeError(w, r, err)
		return
	}
	logger.ExitMethod("BookingHandler.CancelBooking", "bookingID", id)
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.ConfirmBooking(r.Context(), id, UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rejectBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.RejectBooking(r.Context(), id, UserIDFromContext(r.Context()), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.CompleteBooking(r.Context(), id, UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.bookingSvc.ListRentals)
}

func (h *BookingHandler) ListLendings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.bookingSvc.ListLendings)
}

type listFunc func(ctx context.Context, userID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	bookings, total, err := fn(r.Context(), UserIDFromContext(r.Context()), status, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Total: total, Page: page, PageSize: pageSize})
}

func (h *BookingHandler) ToolAvailability(w http.ResponseWriter, r *http.Request) {
	toolID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || toolID <= 0 {
		writeError(w, r, domain.NewValidationError("tool_id", "must be a positive integer"))
		return
	}
	q := r.URL.Query()
	start, err := utils.ParseRentalDate(q.Get("start"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("start", "%v", err))
		return
	}
	end, err := utils.ParseRentalDate(q.Get("end"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("end", "%v", err))
		return
	}

	conflicts, err := h.bookingSvc.CheckAvailability(r.Context(), int32(toolID), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if conflicts == nil {
		conflicts = []domain.BookingRef{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{ToolID: int32(toolID), Available: len(conflicts) == 0, Conflicts: conflicts})
}

func bookingIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a valid booking id")
	}
	return id, nil
}

func asOfParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError("as_of", "must be an RFC 3339 timestamp")
	}
	return t, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads page and page_size, applying the same defaults as the services.
func pageParams(r *http.Request) (int32, int32, error) {
	q := r.URL.Query()
	var out [2]int32
	for i, name := range []string{"page", "page_size"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v < 0 {
			return 0, 0, domain.NewValidationError(name, "must be a non-negative integer")
		}
		out[i] = int32(v)
	}
	page, pageSize := out[0], out[1]
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}
