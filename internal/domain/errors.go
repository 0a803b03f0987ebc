package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConcurrentUpdate is returned when a booking changed between read and write.
	ErrConcurrentUpdate = errors.New("booking was modified concurrently, reload and retry")
)

// ValidationError reports malformed input or an illegal state transition.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError lists the bookings holding overlapping dates.
type ConflictError struct {
	Message   string       `json:"message"`
	Conflicts []BookingRef `json:"conflicts,omitempty"`
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return e.Message
	}
	ids := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		ids[i] = fmt.Sprintf("%s [%s, %s] %s", c.ID, c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"), c.Status)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(ids, "; "))
}

type AuthorizationError struct {
	Action  string `json:"action"`
	ActorID int32  `json:"actor_id"`
	Message string `json:"message"`
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %d may not %s: %s", e.ActorID, e.Action, e.Message)
}

// IneligibleError carries the eligibility snapshot computed when a cancellation was refused.
type IneligibleError struct {
	Status      BookingStatus           `json:"status"`
	Eligibility CancellationEligibility `json:"eligibility"`
}

func (e *IneligibleError) Error() string {
	return "booking cannot be cancelled: " + e.Eligibility.Reason
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c) || errors.Is(err, ErrConcurrentUpdate)
}
