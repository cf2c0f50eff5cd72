package submissions

import (
	"errors"
	"net/http"
)

// Domain errors for submission operations.
var (
	ErrNotFound      = errors.New("submission not found")
	ErrDuplicate     = errors.New("submission already exists")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("invalid file")
	ErrInvalidStatus = errors.New("invalid processing status")
	ErrEmptyReason   = errors.New("deletion reason must not be empty")
)

// MapHTTPStatus maps submission domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrEmptyReason) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
