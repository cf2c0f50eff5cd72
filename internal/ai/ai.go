// Package ai defines the external AI collaborator capabilities the pipeline
// depends on. Both capabilities are injected interfaces so deterministic
// stand-ins can be substituted in tests, decoupling the pipeline's
// state-machine and text-processing logic from any specific model backend.
package ai

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/redact"
)

// EvidenceSpan locates a quoted excerpt supporting a violation.
type EvidenceSpan struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Violation is one detected policy-rule match returned by the classifier.
type Violation struct {
	Code          string         `json:"code"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	EvidenceSpans []EvidenceSpan `json:"evidence_spans"`
	Severity      int            `json:"severity"`
	Confidence    float64        `json:"confidence"`
}

// ClassifyRequest carries the cleaned submission text to the classifier,
// optionally with user commentary folded in.
type ClassifyRequest struct {
	SubmissionID uuid.UUID
	Text         string
	Comments     []string
}

// ClassifyResult is a successful classification outcome.
type ClassifyResult struct {
	Violations []Violation
	Elapsed    time.Duration
}

// Classifier is the policy-violation classification capability.
// Any returned error, and any result with no violations payload, is treated
// by the pipeline as a collaborator failure.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResult, error)
}

// Detector is the PII detection capability. Implementations report literal
// strings to redact along with an overall confidence. Callers must collapse
// a missing or failing detector to an empty zero-confidence detection
// rather than propagating the error.
type Detector interface {
	Detect(ctx context.Context, text, senderEmail string) (redact.Detection, error)
}

// NopDetector is the safe default when no detection capability is
// configured: it detects nothing, so no redaction is performed.
type NopDetector struct{}

func (NopDetector) Detect(context.Context, string, string) (redact.Detection, error) {
	return redact.Detection{}, nil
}
