// Package audit keeps an append-only log of pipeline and moderation
// activity. Recording is best-effort at every call site: a failed audit
// write is logged and never fails the operation that triggered it.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Well-known action names.
const (
	ActionSubmitted         = "submitted"
	ActionOCRComplete       = "ocr_complete"
	ActionClassified        = "classified"
	ActionClassifyFailed    = "classify_failed"
	ActionCommentAdded      = "comment_added"
	ActionDeletionRequested = "deletion_requested"
	ActionRedacted          = "redacted"
)

// Entry is one immutable audit record.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	Payload      any       `json:"payload,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// System defines the public contract for the audit log.
type System interface {
	// Record appends an entry. Payload is serialized as JSON; a nil payload
	// is stored as null.
	Record(ctx context.Context, actor, action string, submissionID uuid.UUID, payload any) error

	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]Entry, error)
}
