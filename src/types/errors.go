package types

import (
	"errors"
	"net/http"
)

var (
	ErrSlotConflict        = errors.New("slot is no longer available")
	ErrStateConflict       = errors.New("operation not allowed in current state")
	ErrInsufficientBalance = errors.New("insufficient pending balance")
	ErrNotFound            = errors.New("record not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrGateway             = errors.New("payment gateway error")
)

// ErrorStatus maps a domain error to the HTTP status the handlers respond
// with. Unknown errors fall through to 500.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
