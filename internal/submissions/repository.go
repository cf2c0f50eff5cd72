package submissions

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/audit"
	"github.com/ryanmio/actblue-jail/pkg/pagination"
	"github.com/ryanmio/actblue-jail/pkg/repository"
	"github.com/ryanmio/actblue-jail/pkg/storage"
)

// Recorder appends audit entries for submission lifecycle events.
// A nil Recorder disables auditing.
type Recorder interface {
	Record(ctx context.Context, actor, action string, submissionID uuid.UUID, payload any) error
}

type repo struct {
	db         *sql.DB
	storage    storage.System
	recorder   Recorder
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a submission repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	recorder Recorder,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		recorder:   recorder,
		logger:     logger.With("system", "submissions"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	// listings only surface public submissions unless the caller
	// explicitly filters otherwise
	if filters.Public == nil {
		public := true
		filters.Public = &public
	}

	clauses, args := filters.conditions(1)
	if page.Search != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		clauses = append(clauses,
			"(raw_text ILIKE '%' || "+placeholder+" || '%' OR email_subject ILIKE '%' || "+placeholder+" || '%')")
		args = append(args, *page.Search)
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	countQ := "SELECT COUNT(*) FROM submissions" + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	pageQ := fmt.Sprintf(
		"SELECT %s FROM submissions%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		submissionColumns, where, page.PageSize, page.Offset(),
	)
	subs, err := repository.QueryMany(ctx, r.db, scanSubmission, pageQ, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	result := pagination.NewPageResult(subs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q := fmt.Sprintf("SELECT %s FROM submissions WHERE id = $1", submissionColumns)

	sub, err := repository.QueryOne(ctx, r.db, scanSubmission, q, id)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &sub, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	if len(cmd.Data) == 0 && cmd.EmailBody == nil {
		return nil, ErrInvalidFile
	}

	id := uuid.New()

	var key string
	if len(cmd.Data) > 0 {
		key = buildImageKey(id, sanitizeFilename(cmd.Filename))
		if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
			return nil, fmt.Errorf("upload evidence image: %w", err)
		}
	}

	q := fmt.Sprintf(`
		INSERT INTO submissions(id, email_subject, email_body, image_key, processing_status, sender_id, sender_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, submissionColumns)

	insertArgs := []any{
		id,
		cmd.EmailSubject,
		cmd.EmailBody,
		key,
		StatusUnknown,
		cmd.SenderID,
		cmd.SenderName,
	}

	sub, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		return repository.QueryOne(ctx, tx, scanSubmission, q, insertArgs...)
	})

	if err != nil {
		if key != "" {
			if delErr := r.storage.Delete(ctx, key); delErr != nil {
				r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
			}
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, "public", audit.ActionSubmitted, sub.ID, map[string]any{
			"has_image": sub.ImageKey != "",
		}); err != nil {
			r.logger.Warn("audit write failed", "id", sub.ID, "error", err)
		}
	}

	r.logger.Info("submission created", "id", sub.ID, "image_key", sub.ImageKey)
	return &sub, nil
}

func (r *repo) DownloadImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	sub, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.ImageKey == "" {
		return nil, ErrNotFound
	}

	reader, err := r.storage.Download(ctx, sub.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("download evidence image: %w", err)
	}
	return reader, nil
}

func (r *repo) SetOCRText(ctx context.Context, id uuid.UUID, text string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE submissions SET raw_text = $1, processing_status = $2, updated_at = NOW() WHERE id = $3",
		text, StatusOCR, id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("ocr text stored", "id", id, "chars", len(text))
	return nil
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE submissions SET processing_status = $1, updated_at = NOW() WHERE id = $2",
		status, id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("status updated", "id", id, "status", status)
	return nil
}

func (r *repo) SetClassified(ctx context.Context, id uuid.UUID, confidence *float64) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE submissions SET processing_status = $1, ai_confidence = $2, updated_at = NOW() WHERE id = $3",
		StatusClassified, confidence, id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("classification recorded", "id", id)
	return nil
}

func (r *repo) UpdateTextFields(ctx context.Context, id uuid.UUID, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)

	for _, column := range []string{FieldRawText, FieldEmailBody, FieldEmailSubject} {
		value, ok := fields[column]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if len(sets) != len(fields) {
		return fmt.Errorf("unknown text field in update: %v", fields)
	}

	args = append(args, id)
	q := fmt.Sprintf(
		"UPDATE submissions SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, args...)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("text fields updated", "id", id, "fields", len(fields))
	return nil
}

func (r *repo) CreateDeletionRequest(ctx context.Context, id uuid.UUID, reason string) (*DeletionRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}

	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO deletion_requests(id, submission_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, submission_id, reason, created_at`

	dr, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (DeletionRequest, error) {
		req, err := repository.QueryOne(ctx, tx, scanDeletionRequest, q, uuid.New(), id, reason)
		if err != nil {
			return DeletionRequest{}, fmt.Errorf("insert deletion request: %w", err)
		}

		// soft-hide precedes any moderation review
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE submissions SET public = FALSE, updated_at = NOW() WHERE id = $1",
			id,
		); err != nil {
			return DeletionRequest{}, fmt.Errorf("hide submission: %w", err)
		}

		return req, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("deletion requested", "id", id)
	return &dr, nil
}

func buildImageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("evidence/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "evidence"
	}
	return url.PathEscape(name)
}
