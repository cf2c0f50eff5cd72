// Package submissions implements the submission domain: one row per piece of
// user-submitted evidence of a political fundraising message, with its
// processing lifecycle, visibility flag, and deletion requests.
package submissions

import (
	"time"

	"github.com/google/uuid"
)

// Status is the submission's lifecycle marker.
//
// The transient "processing" value signals that a classification call is in
// flight; "classified" means the last classification succeeded. "done" is a
// moderation-closure value that the pipeline reads but never writes.
type Status string

// Lifecycle states.
const (
	StatusUnknown    Status = "unknown"
	StatusOCR        Status = "ocr"
	StatusProcessing Status = "processing"
	StatusClassified Status = "classified"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Valid reports whether s is a known lifecycle value.
func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusOCR, StatusProcessing, StatusClassified, StatusDone, StatusError:
		return true
	}
	return false
}

// Submission represents one unit of submitted evidence.
type Submission struct {
	ID               uuid.UUID  `json:"id"`
	RawText          *string    `json:"raw_text"`
	EmailSubject     *string    `json:"email_subject"`
	EmailBody        *string    `json:"email_body"`
	ImageKey         string     `json:"image_key"`
	ProcessingStatus Status     `json:"processing_status"`
	Public           bool       `json:"public"`
	SenderID         *string    `json:"sender_id"`
	SenderName       *string    `json:"sender_name"`
	AIConfidence     *float64   `json:"ai_confidence"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateCommand carries the data needed to register new evidence.
// Data holds the raw screenshot bytes; email fields are present when the
// evidence is a forwarded message rather than an image.
type CreateCommand struct {
	Data         []byte
	Filename     string
	ContentType  string
	EmailSubject *string
	EmailBody    *string
	SenderID     *string
	SenderName   *string
}

// DeletionRequest records a submitter's request to take a submission down.
// Filing one soft-hides the submission immediately; moderation review of the
// request happens elsewhere.
type DeletionRequest struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// TextFields names the redactable text columns. Keys must match the column
// names accepted by UpdateTextFields.
const (
	FieldRawText      = "raw_text"
	FieldEmailBody    = "email_body"
	FieldEmailSubject = "email_subject"
)
