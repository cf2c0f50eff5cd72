package submissions

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/pkg/pagination"
)

// System defines the public contract for submission domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Submission], error)

	Find(ctx context.Context, id uuid.UUID) (*Submission, error)
	Create(ctx context.Context, cmd CreateCommand) (*Submission, error)

	// DownloadImage streams the stored evidence screenshot.
	DownloadImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)

	// SetOCRText persists extracted text and moves the submission to StatusOCR.
	SetOCRText(ctx context.Context, id uuid.UUID, text string) error

	// UpdateStatus moves the submission to the given lifecycle state.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// SetClassified moves the submission to StatusClassified and records the
	// classifier's headline confidence in the same write.
	SetClassified(ctx context.Context, id uuid.UUID, confidence *float64) error

	// UpdateTextFields overwrites the named text columns (FieldRawText,
	// FieldEmailBody, FieldEmailSubject) in a single transaction.
	UpdateTextFields(ctx context.Context, id uuid.UUID, fields map[string]string) error

	// CreateDeletionRequest persists the request and flips public=false in a
	// single transaction. It never touches the processing status.
	CreateDeletionRequest(ctx context.Context, id uuid.UUID, reason string) (*DeletionRequest, error)
}
