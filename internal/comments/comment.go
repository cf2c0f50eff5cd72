// Package comments implements submission commentary. User comments are
// capped per submission; system comments record pipeline activity and are
// exempt from the cap.
package comments

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes submitter commentary from pipeline-generated notes.
type Kind string

const (
	KindUser   Kind = "user"
	KindSystem Kind = "system"
)

// Capacity limits for user comments. System comments are not counted.
const (
	MaxUserComments  = 10
	MaxCommentLength = 240
)

// Comment is one note attached to a submission.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Kind         Kind      `json:"kind"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}
