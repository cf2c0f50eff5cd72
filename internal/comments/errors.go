package comments

import (
	"errors"
	"net/http"
)

// Domain errors for comment operations.
var (
	ErrNotFound         = errors.New("comment not found")
	ErrDuplicate        = errors.New("comment already exists")
	ErrEmptyContent     = errors.New("comment content must not be empty")
	ErrContentTooLong   = errors.New("comment content exceeds maximum length")
	ErrCapacityExceeded = errors.New("submission comment capacity exceeded")
)

// MapHTTPStatus maps comment domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyContent) || errors.Is(err, ErrContentTooLong) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrCapacityExceeded) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
