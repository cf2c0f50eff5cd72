package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/pkg/repository"
)

const entryColumns = "id, submission_id, actor, action, payload, created_at"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an audit repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "audit"),
	}
}

func (r *repo) Record(
	ctx context.Context,
	actor, action string,
	submissionID uuid.UUID,
	payload any,
) error {
	var encoded []byte
	if payload != nil {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("encode audit payload: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log(id, submission_id, actor, action, payload) VALUES ($1, $2, $3, $4, $5)",
		uuid.New(), submissionID, actor, action, encoded,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

func (r *repo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]Entry, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM audit_log WHERE submission_id = $1 ORDER BY created_at ASC",
		entryColumns,
	)

	entries, err := repository.QueryMany(ctx, r.db, scanEntry, q, submissionID)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	return entries, nil
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e       Entry
		payload []byte
	)

	err := s.Scan(&e.ID, &e.SubmissionID, &e.Actor, &e.Action, &payload, &e.CreatedAt)
	if err != nil {
		return e, err
	}

	if len(payload) > 0 {
		var decoded any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return e, fmt.Errorf("decode audit payload: %w", err)
		}
		e.Payload = decoded
	}

	return e, nil
}
