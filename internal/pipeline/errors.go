package pipeline

import (
	"errors"
	"net/http"

	"github.com/ryanmio/actblue-jail/internal/comments"
	"github.com/ryanmio/actblue-jail/internal/submissions"
)

// Pipeline errors.
var (
	ErrNoClassifier        = errors.New("no classification capability configured")
	ErrNoText              = errors.New("submission has no classifiable text")
	ErrEmptyClassification = errors.New("classifier returned no violations payload")
)

// MapHTTPStatus maps pipeline and underlying domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoClassifier) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrNoText) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyClassification) {
		return http.StatusBadGateway
	}

	if status := submissions.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return comments.MapHTTPStatus(err)
}
