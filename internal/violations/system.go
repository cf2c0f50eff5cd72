package violations

import (
	"context"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/ai"
)

// System defines the public contract for violation persistence.
type System interface {
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]Violation, error)

	// ReplaceSet atomically swaps the submission's violation set with the
	// given classifier output. An empty slice clears the set.
	ReplaceSet(ctx context.Context, submissionID uuid.UUID, set []ai.Violation) ([]Violation, error)
}
