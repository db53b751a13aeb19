package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain conditions raised by the allocation and recommendation core. All of
// them are recoverable by the caller: the attempt is rejected before anything
// is persisted.
var (
	// ErrInvalidInterval means start/end is missing or end is not after start.
	ErrInvalidInterval = errors.New("start and end are required and end must be after start")

	// ErrSpotInactive means the resolved parking spot exists but is disabled.
	ErrSpotInactive = errors.New("parking spot is not active")
)

// NotFoundError identifies which referenced entity was missing, so callers
// can tell a bad car id from a bad spot or reservation type id.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id int) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// SlotConflictError carries the id of the reservation already occupying the
// requested window. Raised by the pre-commit conflict check and by the
// storage layer when a concurrent commit trips the exclusion constraint, so
// callers see one shape regardless of which layer detected the overlap.
type SlotConflictError struct {
	ConflictingID int
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("the parking spot is already reserved for the selected dates, conflicts with reservation %d", e.ConflictingID)
}

// UnknownReservationTypeError indicates a reservation type name the pricing
// engine has no formula for. A data-integrity problem, not user error: type
// names are seeded, never free input.
type UnknownReservationTypeError struct {
	Name string
}

func (e *UnknownReservationTypeError) Error() string {
	return fmt.Sprintf("unknown reservation type: %s", e.Name)
}

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// FromDomain maps a domain condition onto the HTTP status all handlers use.
func FromDomain(err error) *HTTPError {
	var nf *NotFoundError
	var sc *SlotConflictError
	var ut *UnknownReservationTypeError
	switch {
	case errors.Is(err, ErrInvalidInterval):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &nf):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSpotInactive):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &sc):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &ut):
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)
