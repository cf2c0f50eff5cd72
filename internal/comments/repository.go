package comments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/pkg/repository"
)

const commentColumns = "id, submission_id, kind, content, created_at"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a comment repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "comments"),
	}
}

func (r *repo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]Comment, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM comments WHERE submission_id = $1 ORDER BY created_at ASC",
		commentColumns,
	)

	list, err := repository.QueryMany(ctx, r.db, scanComment, q, submissionID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	return list, nil
}

func (r *repo) Insert(
	ctx context.Context,
	submissionID uuid.UUID,
	kind Kind,
	content string,
) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, ErrContentTooLong
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO comments(id, submission_id, kind, content)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, commentColumns)

	comment, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Comment, error) {
		if kind == KindUser {
			var count int
			err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM comments WHERE submission_id = $1 AND kind = $2",
				submissionID, KindUser,
			).Scan(&count)
			if err != nil {
				return Comment{}, fmt.Errorf("count user comments: %w", err)
			}
			if count >= MaxUserComments {
				return Comment{}, ErrCapacityExceeded
			}
		}

		return repository.QueryOne(ctx, tx, scanComment, insertQ,
			uuid.New(), submissionID, kind, content,
		)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("comment stored", "submission_id", submissionID, "kind", kind)
	return &comment, nil
}

func scanComment(s repository.Scanner) (Comment, error) {
	var c Comment
	err := s.Scan(&c.ID, &c.SubmissionID, &c.Kind, &c.Content, &c.CreatedAt)
	return c, err
}
