package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/lock"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/metrics"
	"ubertool-booking/internal/payment"
	"ubertool-booking/internal/repository"
	"ubertool-booking/internal/utils"

	"github.com/google/uuid"
)

const expiredReason = "Booking expired before the owner responded."

// ErrRefundFailed means the cancellation was committed but the processor refused the refund.
var ErrRefundFailed = errors.New("booking cancelled but refund failed")

type BookingOptions struct {
	Currency      string
	MaxRentalDays int
	LockTTL       time.Duration
	// BatchSize bounds how many bookings one maintenance run touches.
	BatchSize int32
	Now       func() time.Time
}

func (o BookingOptions) withDefaults() BookingOptions {
	if o.Currency == "" {
		o.Currency = "usd"
	}
	if o.MaxRentalDays <= 0 {
		o.MaxRentalDays = 30
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 10 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 200
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	toolRepo     repository.ToolRepository
	userRepo     repository.UserRepository
	availability AvailabilityChecker
	payments     payment.Gateway
	notifier     Notifier
	locker       lock.Locker
	opts         BookingOptions
}

func NewBookingService(bookingRepo repository.BookingRepository, toolRepo repository.ToolRepository, userRepo repository.UserRepository,
	availability AvailabilityChecker, payments payment.Gateway, notifier Notifier, locker lock.Locker, opts BookingOptions) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		toolRepo:     toolRepo,
		userRepo:     userRepo,
		availability: availability,
		payments:     payments,
		notifier:     notifier,
		locker:       locker,
		opts:         opts.withDefaults(),
	}
}

func (s *bookingService) now() time.Time {
	return s.opts.Now()
}

func (s *bookingService) at(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.now()
	}
	return asOf
}

func (s *bookingService) CreateBooking(ctx context.Context, toolID, renterID int32, start, end time.Time) (*domain.Booking, error) {
	methodName := "bookingService.CreateBooking"
	logger.EnterMethod(methodName, "toolID", toolID, "renterID", renterID, "start", start, "end", end)

	fail := func(err error) (*domain.Booking, error) {
		logger.ExitMethodWithError(methodName, err, "toolID", toolID, "renterID", renterID)
		return nil, err
	}

	if err := s.validatePeriod(start, end, s.now()); err != nil {
		return fail(err)
	}

	tool, err := s.toolRepo.GetByID(ctx, toolID)
	if errors.Is(err, domain.ErrNotFound) {
		return fail(domain.NewValidationError("tool_id", "tool %d does not exist", toolID))
	} else if err != nil {
		return fail(fmt.Errorf("load tool %d: %w", toolID, err))
	}
	if !tool.Rentable() {
		return fail(domain.NewValidationError("tool_id", "tool %d is not available for rent", toolID))
	}
	if tool.OwnerID == renterID {
		return fail(domain.NewValidationError("renter_id", "owners cannot rent their own tool"))
	}
	if _, err := s.userRepo.GetByID(ctx, renterID); errors.Is(err, domain.ErrNotFound) {
		return fail(domain.NewValidationError("renter_id", "user %d does not exist", renterID))
	} else if err != nil {
		return fail(fmt.Errorf("load renter %d: %w", renterID, err))
	}

	price, err := utils.CalculateRentalPrice(start, end, tool)
	if err != nil {
		return fail(domain.NewValidationError("end_date", "%s", err.Error()))
	}

	release, err := s.locker.Acquire(ctx, fmt.Sprintf("booking:tool:%d", toolID), s.opts.LockTTL)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		metrics.IncConflict("lock")
		return fail(&domain.ConflictError{Message: "another booking for this tool is in progress, retry shortly"})
	case err != nil:
		logger.Warn("Booking lock unavailable, relying on storage constraint", "toolID", toolID, "error", err)
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release booking lock", "toolID", toolID, "error", err)
			}
		}()
	}

	conflicts, err := s.availability.Conflicts(ctx, toolID, start, end, nil)
	if err != nil {
		return fail(fmt.Errorf("check availability: %w", err))
	}
	if len(conflicts) > 0 {
		metrics.IncConflict("precheck")
		return fail(&domain.ConflictError{Message: "dates unavailable", Conflicts: conflicts})
	}

	b := &domain.Booking{
		ID:              uuid.New(),
		ToolID:          toolID,
		RenterID:        renterID,
		OwnerID:         tool.OwnerID,
		StartDate:       start,
		EndDate:         end,
		Status:          domain.BookingStatusPending,
		DailyRateCents:  price.DailyRateCents,
		TotalPriceCents: price.TotalPriceCents,
		DepositCents:    price.DepositCents,
		PaymentStatus:   domain.PaymentStatusPending,
	}

	intent, err := s.payments.CreatePaymentIntent(ctx, b.ID, price.ChargeCents(), s.opts.Currency)
	if err != nil {
		return fail(fmt.Errorf("create payment intent: %w", err))
	}
	b.PaymentIntentID = intent.ID

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		s.cancelIntent(ctx, intent.ID)
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			metrics.IncConflict("constraint")
			if refs, cerr := s.availability.Conflicts(ctx, toolID, start, end, nil); cerr == nil {
				conflict.Conflicts = refs
			}
			return fail(conflict)
		}
		return fail(fmt.Errorf("save booking: %w", err))
	}
	b.PaymentClientSecret = intent.ClientSecret

	metrics.IncTransition("new", string(b.Status))
	s.emit(ctx, domain.EventBookingCreated, b, b.OwnerID, domain.UserActor(renterID), "")

	logger.ExitMethod(methodName, "bookingID", b.ID, "totalPriceCents", b.TotalPriceCents)
	return b, nil
}

func (s *bookingService) validatePeriod(start, end, now time.Time) error {
	if start.IsZero() {
		return domain.NewValidationError("start_date", "is required")
	}
	if end.IsZero() {
		return domain.NewValidationError("end_date", "is required")
	}
	if !end.After(start) {
		return domain.NewValidationError("end_date", "must be after start date")
	}
	if start.Before(now) {
		return domain.NewValidationError("start_date", "must not be in the past")
	}
	if days := utils.RentalDays(start, end); days > s.opts.MaxRentalDays {
		return domain.NewValidationError("end_date", "rental period cannot exceed %d days", s.opts.MaxRentalDays)
	}
	return nil
}

func (s *bookingService) load(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", id, err)
	}
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actorID int32, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) {
		return nil, &domain.AuthorizationError{Action: "view", ActorID: actorID, Message: "only the renter or the owner can view a booking"}
	}
	return b, nil
}

func (s *bookingService) GetBookingDetailed(ctx context.Context, actorID int32, id uuid.UUID) (*domain.BookingDetailed, error) {
	d, err := s.bookingRepo.GetDetailed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", id, err)
	}
	if !d.IsParticipant(actorID) {
		return nil, &domain.AuthorizationError{Action: "view", ActorID: actorID, Message: "only the renter or the owner can view a booking"}
	}
	return d, nil
}

func (s *bookingService) PreviewCancellation(ctx context.Context, id uuid.UUID, actorID int32, asOf time.Time) (*domain.CancellationEligibility, error) {
	b, err := s.GetBooking(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	e := domain.CancellationPreview(b, s.at(asOf))
	return &e, nil
}

// CancelBooking re-evaluates the fee at action time and writes it with a version-conditional
// update, so a preview that went stale never becomes the applied fee.
func (s *bookingService) CancelBooking(ctx context.Context, id uuid.UUID, actorID int32, reason string, asOf time.Time) (*domain.Booking, error) {
	methodName := "bookingService.CancelBooking"
	logger.EnterMethod(methodName, "bookingID", id, "actorID", actorID)

	at := s.at(asOf)
	b, err := s.load(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}

	actor := domain.UserActor(actorID)
	e, err := domain.CheckCancellation(b, actor, at)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id, "status", b.Status)
		return nil, err
	}

	wasPaid := b.PaymentStatus == domain.PaymentStatusPaid
	from := b.Status
	domain.ApplyCancellation(b, e, actor, reason, at)
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, s.wrapWriteErr(b, err)
	}
	metrics.IncTransition(string(from), string(b.Status))
	metrics.AddCancellationFee(e.FeeCents)

	refundErr := s.settleCancelledPayment(ctx, b, wasPaid)
	s.emit(ctx, domain.EventBookingCancelled, b, b.CounterParty(actorID), actor, reason)

	if refundErr != nil {
		logger.ExitMethodWithError(methodName, refundErr, "bookingID", id)
		return nil, fmt.Errorf("%w: %w", ErrRefundFailed, refundErr)
	}
	logger.ExitMethod(methodName, "bookingID", id, "feeCents", e.FeeCents, "refundCents", *b.RefundAmountCents)
	return b, nil
}

// settleCancelledPayment returns money for a captured payment, or voids the intent when
// nothing was captured. The deposit is always returned in full.
func (s *bookingService) settleCancelledPayment(ctx context.Context, b *domain.Booking, wasPaid bool) error {
	if b.PaymentIntentID == "" {
		return nil
	}
	if !wasPaid {
		s.cancelIntent(ctx, b.PaymentIntentID)
		return nil
	}
	if b.PaymentStatus != domain.PaymentStatusRefundPending {
		return nil
	}
	return s.issueRefund(ctx, b)
}

func refundKey(id uuid.UUID) string {
	return "booking-refund-" + id.String()
}

// issueRefund sends the refund owed on a booking already stored as refund_pending, then records
// it as settled. On any failure the stored row stays refund_pending.
func (s *bookingService) issueRefund(ctx context.Context, b *domain.Booking) error {
	amount := domain.RefundDueCents(b)
	if _, err := s.payments.Refund(ctx, b.PaymentIntentID, amount, refundKey(b.ID)); err != nil {
		metrics.IncRefund("failed")
		logger.Error("Refund failed, left pending", "bookingID", b.ID, "intentID", b.PaymentIntentID, "amountCents", amount, "error", err)
		return err
	}

	b.PaymentStatus = domain.SettledPaymentStatus(b)
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		metrics.IncRefund("unrecorded")
		logger.Error("Refund sent but not recorded", "bookingID", b.ID, "amountCents", amount, "error", err)
		return fmt.Errorf("record refund for booking %s: %w", b.ID, err)
	}
	metrics.IncRefund("succeeded")
	return nil
}

func (s *bookingService) cancelIntent(ctx context.Context, intentID string) {
	if err := s.payments.CancelPaymentIntent(ctx, intentID); err != nil {
		logger.Warn("Failed to cancel payment intent", "intentID", intentID, "error", err)
	}
}

func (s *bookingService) wrapWriteErr(b *domain.Booking, err error) error {
	if domain.IsConflict(err) {
		return err
	}
	return fmt.Errorf("update booking %s: %w", b.ID, err)
}

func (s *bookingService) ConfirmBooking(ctx context.Context, id uuid.UUID, ownerID int32) (*domain.Booking, error) {
	methodName := "bookingService.ConfirmBooking"
	logger.EnterMethod(methodName, "bookingID", id, "ownerID", ownerID)

	b, err := s.load(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}
	actor := domain.UserActor(ownerID)
	to, err := domain.CheckTransition(b, domain.ActionApprove, actor)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}

	conflicts, err := s.availability.Conflicts(ctx, b.ToolID, b.StartDate, b.EndDate, &b.ID)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if len(conflicts) > 0 {
		metrics.IncConflict("confirm")
		err := &domain.ConflictError{Message: "booking overlaps other reservations", Conflicts: conflicts}
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}

	from := b.Status
	b.Status = to
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, s.wrapWriteErr(b, err)
	}
	metrics.IncTransition(string(from), string(to))
	s.emit(ctx, domain.EventBookingApproved, b, b.RenterID, actor, "")

	logger.ExitMethod(methodName, "bookingID", id)
	return b, nil
}

func (s *bookingService) RejectBooking(ctx context.Context, id uuid.UUID, ownerID int32, reason string) (*domain.Booking, error) {
	methodName := "bookingService.RejectBooking"
	logger.EnterMethod(methodName, "bookingID", id, "ownerID", ownerID)

	b, err := s.load(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}
	actor := domain.UserActor(ownerID)
	to, err := domain.CheckTransition(b, domain.ActionReject, actor)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, err
	}

	from := b.Status
	b.Status = to
	b.RejectionReason = reason
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", id)
		return nil, s.wrapWriteErr(b, err)
	}
	metrics.IncTransition(string(from), string(to))
	if b.PaymentIntentID != "" && b.PaymentStatus != domain.PaymentStatusPaid {
		s.cancelIntent(ctx, b.PaymentIntentID)
	}
	s.emit(ctx, domain.EventBookingRejected, b, b.RenterID, actor, reason)

	logger.ExitMethod(methodName, "bookingID", id)
	return b, nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, id uuid.UUID, actorID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.complete(ctx, b, domain.UserActor(actorID)); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) complete(ctx context.Context, b *domain.Booking, actor domain.Actor) error {
	to, err := domain.CheckTransition(b, domain.ActionComplete, actor)
	if err != nil {
		return err
	}
	from := b.Status
	b.Status = to
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return s.wrapWriteErr(b, err)
	}
	metrics.IncTransition(string(from), string(to))
	s.emit(ctx, domain.EventBookingCompleted, b, b.RenterID, actor, "")
	return nil
}

// HandlePaymentSucceeded is driven by the processor's webhook and may be replayed. A replay
// that finds a refund still pending retries it.
func (s *bookingService) HandlePaymentSucceeded(ctx context.Context, intentID string) (*domain.Booking, error) {
	methodName := "bookingService.HandlePaymentSucceeded"
	logger.EnterMethod(methodName, "intentID", intentID)

	b, err := s.bookingRepo.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "intentID", intentID)
		return nil, fmt.Errorf("booking for intent %s: %w", intentID, err)
	}
	if b.PaymentStatus == domain.PaymentStatusRefundPending {
		logger.Info("Refund still pending, retrying", "bookingID", b.ID)
		if err := s.issueRefund(ctx, b); err != nil {
			logger.ExitMethodWithError(methodName, err, "bookingID", b.ID)
			return nil, fmt.Errorf("refund late payment for booking %s: %w", b.ID, err)
		}
		logger.ExitMethod(methodName, "bookingID", b.ID, "paymentStatus", b.PaymentStatus)
		return b, nil
	}
	if b.PaymentStatus != domain.PaymentStatusPending && b.PaymentStatus != domain.PaymentStatusFailed {
		logger.Info("Payment already settled, ignoring replay", "bookingID", b.ID, "paymentStatus", b.PaymentStatus)
		return b, nil
	}

	from := b.Status
	switch b.Status {
	case domain.BookingStatusPending, domain.BookingStatusApproved:
		to, err := domain.CheckTransition(b, domain.ActionActivate, domain.SystemActor)
		if err != nil {
			return nil, err
		}
		b.Status = to
		b.PaymentStatus = domain.PaymentStatusPaid
	default:
		// Paid after the booking stopped running: keep any recorded fee, return the rest.
		b.PaymentStatus = domain.PaymentStatusPaid
		if domain.RefundDueCents(b) > 0 {
			b.PaymentStatus = domain.PaymentStatusRefundPending
		}
	}

	if err := s.bookingRepo.Update(ctx, b); err != nil {
		logger.ExitMethodWithError(methodName, err, "bookingID", b.ID)
		return nil, s.wrapWriteErr(b, err)
	}

	if b.Status != from {
		metrics.IncTransition(string(from), string(b.Status))
		s.emit(ctx, domain.EventBookingActivated, b, b.OwnerID, domain.SystemActor, "")
	}
	if b.PaymentStatus == domain.PaymentStatusRefundPending {
		if err := s.issueRefund(ctx, b); err != nil {
			logger.ExitMethodWithError(methodName, err, "bookingID", b.ID)
			return nil, fmt.Errorf("refund late payment for booking %s: %w", b.ID, err)
		}
	}

	logger.ExitMethod(methodName, "bookingID", b.ID, "status", b.Status, "paymentStatus", b.PaymentStatus)
	return b, nil
}

// HandlePaymentFailed records the failure without touching the booking status.
func (s *bookingService) HandlePaymentFailed(ctx context.Context, intentID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("booking for intent %s: %w", intentID, err)
	}
	if b.PaymentStatus != domain.PaymentStatusPending {
		return b, nil
	}

	b.PaymentStatus = domain.PaymentStatusFailed
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, s.wrapWriteErr(b, err)
	}
	logger.Warn("Payment failed for booking", "bookingID", b.ID, "intentID", intentID)
	s.emit(ctx, domain.EventPaymentFailed, b, b.RenterID, domain.SystemActor, "")
	return b, nil
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func validStatusFilter(status domain.BookingStatus) error {
	if status != "" && !status.Valid() {
		return domain.NewValidationError("status", "unknown booking status %q", status)
	}
	return nil
}

func (s *bookingService) ListRentals(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if err := validStatusFilter(status); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.bookingRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *bookingService) ListLendings(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if err := validStatusFilter(status); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.bookingRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}

func (s *bookingService) CheckAvailability(ctx context.Context, toolID int32, start, end time.Time) ([]domain.BookingRef, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, domain.NewValidationError("end", "end must be after start")
	}
	if _, err := s.toolRepo.GetByID(ctx, toolID); err != nil {
		return nil, fmt.Errorf("tool %d: %w", toolID, err)
	}
	return s.availability.Conflicts(ctx, toolID, start, end, nil)
}

func (s *bookingService) CompleteEndedBookings(ctx context.Context, now time.Time) (int, error) {
	bookings, err := s.bookingRepo.ListEndedActive(ctx, now, s.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list ended bookings: %w", err)
	}

	var errs []error
	done := 0
	for i := range bookings {
		b := &bookings[i]
		if err := s.complete(ctx, b, domain.SystemActor); err != nil {
			logger.Error("Failed to complete booking", "bookingID", b.ID, "error", err)
			errs = append(errs, fmt.Errorf("booking %s: %w", b.ID, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// ExpireStalePending cancels pending bookings whose start passed without an owner decision.
// No fee applies since the renter never got the tool.
func (s *bookingService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	bookings, err := s.bookingRepo.ListStalePending(ctx, now, s.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list stale bookings: %w", err)
	}

	var errs []error
	done := 0
	for i := range bookings {
		b := &bookings[i]
		if _, err := domain.CheckTransition(b, domain.ActionCancel, domain.SystemActor); err != nil {
			errs = append(errs, fmt.Errorf("booking %s: %w", b.ID, err))
			continue
		}
		wasPaid := b.PaymentStatus == domain.PaymentStatusPaid
		from := b.Status
		e := domain.CancellationEligibility{CanCancel: true, Reason: expiredReason, RefundCents: b.TotalPriceCents}
		domain.ApplyCancellation(b, e, domain.SystemActor, expiredReason, now)
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			logger.Error("Failed to expire booking", "bookingID", b.ID, "error", err)
			errs = append(errs, fmt.Errorf("booking %s: %w", b.ID, err))
			continue
		}
		metrics.IncTransition(string(from), string(b.Status))
		if err := s.settleCancelledPayment(ctx, b, wasPaid); err != nil {
			errs = append(errs, fmt.Errorf("booking %s refund: %w", b.ID, err))
		}
		s.emit(ctx, domain.EventBookingCancelled, b, b.RenterID, domain.SystemActor, expiredReason)
		done++
	}
	return done, errors.Join(errs...)
}

// RetryPendingRefunds re-sends refunds that were recorded as owed but never confirmed.
func (s *bookingService) RetryPendingRefunds(ctx context.Context) (int, error) {
	bookings, err := s.bookingRepo.ListRefundPending(ctx, s.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending refunds: %w", err)
	}

	var errs []error
	done := 0
	for i := range bookings {
		b := &bookings[i]
		if err := s.issueRefund(ctx, b); err != nil {
			errs = append(errs, fmt.Errorf("booking %s: %w", b.ID, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

func (s *bookingService) emit(ctx context.Context, t domain.EventType, b *domain.Booking, recipientID int32, actor domain.Actor, reason string) {
	ev := domain.NewBookingEvent(t, b, recipientID, s.now())
	if !actor.System {
		ev.ActorID = actor.UserID
	}
	ev.Reason = reason
	if b.CancellationFeeCents != nil && b.RefundAmountCents != nil {
		ev.FeeCents = *b.CancellationFeeCents
		ev.RefundCents = *b.RefundAmountCents
	}
	s.notifier.Notify(ctx, ev)
}
