// Package violations stores the policy-rule matches a classification run
// produced for a submission. Each run replaces the previous set wholesale;
// rows from different runs never mix.
package violations

import (
	"time"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/ai"
)

// Violation is one persisted policy-rule match.
type Violation struct {
	ID            uuid.UUID         `json:"id"`
	SubmissionID  uuid.UUID         `json:"submission_id"`
	Code          string            `json:"code"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	EvidenceSpans []ai.EvidenceSpan `json:"evidence_spans"`
	Severity      int               `json:"severity"`
	Confidence    float64           `json:"confidence"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Summary is the single headline violation shown in list views.
type Summary struct {
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	Severity   int     `json:"severity"`
	Confidence float64 `json:"confidence"`
	Count      int     `json:"count"`
}

// DisplaySummary picks the headline violation from a set: highest severity
// wins, with confidence breaking ties. Returns nil for an empty set.
func DisplaySummary(set []Violation) *Summary {
	if len(set) == 0 {
		return nil
	}

	top := set[0]
	for _, v := range set[1:] {
		if v.Severity > top.Severity ||
			(v.Severity == top.Severity && v.Confidence > top.Confidence) {
			top = v
		}
	}

	return &Summary{
		Code:       top.Code,
		Title:      top.Title,
		Severity:   top.Severity,
		Confidence: top.Confidence,
		Count:      len(set),
	}
}
