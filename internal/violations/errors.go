package violations

import (
	"errors"
	"net/http"
)

// Domain errors for violation operations.
var (
	ErrNotFound  = errors.New("violation not found")
	ErrDuplicate = errors.New("violation already exists")
)

// MapHTTPStatus maps violation domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
