package violations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/ai"
	"github.com/ryanmio/actblue-jail/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a violation repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "violations"),
	}
}

func (r *repo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]Violation, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM violations WHERE submission_id = $1 ORDER BY severity DESC, confidence DESC",
		violationColumns,
	)

	set, err := repository.QueryMany(ctx, r.db, scanViolation, q, submissionID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	return set, nil
}

func (r *repo) ReplaceSet(
	ctx context.Context,
	submissionID uuid.UUID,
	set []ai.Violation,
) ([]Violation, error) {
	insertQ := fmt.Sprintf(`
		INSERT INTO violations(id, submission_id, code, title, description, evidence_spans, severity, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, violationColumns)

	stored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Violation, error) {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM violations WHERE submission_id = $1", submissionID,
		); err != nil {
			return nil, fmt.Errorf("clear violation set: %w", err)
		}

		stored := make([]Violation, 0, len(set))
		for _, v := range set {
			spans, err := json.Marshal(v.EvidenceSpans)
			if err != nil {
				return nil, fmt.Errorf("encode evidence spans: %w", err)
			}

			row, err := repository.QueryOne(ctx, tx, scanViolation, insertQ,
				uuid.New(), submissionID, v.Code, v.Title, v.Description,
				spans, v.Severity, v.Confidence,
			)
			if err != nil {
				return nil, fmt.Errorf("insert violation %s: %w", v.Code, err)
			}
			stored = append(stored, row)
		}

		return stored, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("violation set replaced", "submission_id", submissionID, "count", len(stored))
	return stored, nil
}
