package comments

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for comment operations.
type System interface {
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]Comment, error)

	// Insert validates and persists a comment. User comments are rejected
	// with ErrCapacityExceeded once the submission holds MaxUserComments of
	// them; the count check and insert share one transaction.
	Insert(ctx context.Context, submissionID uuid.UUID, kind Kind, content string) (*Comment, error)
}
