package violations

import (
	"encoding/json"
	"fmt"

	"github.com/ryanmio/actblue-jail/pkg/repository"
)

const violationColumns = `id, submission_id, code, title, description,
	evidence_spans, severity, confidence, created_at`

func scanViolation(s repository.Scanner) (Violation, error) {
	var (
		v     Violation
		spans []byte
	)

	err := s.Scan(
		&v.ID,
		&v.SubmissionID,
		&v.Code,
		&v.Title,
		&v.Description,
		&spans,
		&v.Severity,
		&v.Confidence,
		&v.CreatedAt,
	)
	if err != nil {
		return v, err
	}

	if len(spans) > 0 {
		if err := json.Unmarshal(spans, &v.EvidenceSpans); err != nil {
			return v, fmt.Errorf("decode evidence spans: %w", err)
		}
	}

	return v, nil
}
