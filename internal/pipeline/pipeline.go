// Package pipeline orchestrates the submission lifecycle: OCR completion,
// classification, commentary, deletion requests, and PII redaction. It owns
// the status transitions; the domain packages own persistence.
//
// There is no cross-request locking. Status is advanced optimistically
// before a collaborator call, concurrent triggers are last-write-wins, and
// side effects never alter the triggering request's outcome.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ryanmio/actblue-jail/internal/ai"
	"github.com/ryanmio/actblue-jail/internal/audit"
	"github.com/ryanmio/actblue-jail/internal/comments"
	"github.com/ryanmio/actblue-jail/internal/observability/metrics"
	"github.com/ryanmio/actblue-jail/internal/redact"
	"github.com/ryanmio/actblue-jail/internal/sanitize"
	"github.com/ryanmio/actblue-jail/internal/submissions"
	"github.com/ryanmio/actblue-jail/internal/textclean"
	"github.com/ryanmio/actblue-jail/internal/violations"
	"github.com/ryanmio/actblue-jail/pkg/dispatch"
)

const systemActor = "pipeline"

// Capturer archives landing pages behind allowlisted links.
type Capturer interface {
	Capture(ctx context.Context, submissionID uuid.UUID, urls []string) error
}

// ClassifyOptions tunes a classification run.
type ClassifyOptions struct {
	// IncludeExistingComments folds stored user comments into the
	// classifier's input.
	IncludeExistingComments bool `json:"include_existing_comments"`

	// ReplaceExisting forces a fresh collaborator call even when the
	// submission already holds a violation set. When false, a submission
	// with stored violations returns its current outcome untouched.
	ReplaceExisting bool `json:"replace_existing"`
}

// ClassifyOutcome is a successful classification run.
type ClassifyOutcome struct {
	Submission *submissions.Submission `json:"submission"`
	Violations []violations.Violation  `json:"violations"`
	Summary    *violations.Summary     `json:"summary"`
	Elapsed    time.Duration           `json:"-"`
}

// View is the public read model for one submission.
type View struct {
	Submission *submissions.Submission `json:"submission"`
	Violations []violations.Violation  `json:"violations"`
	Summary    *violations.Summary     `json:"summary"`
	Comments   []comments.Comment      `json:"comments"`
}

// System defines the pipeline's operations.
type System interface {
	// MarkOCRComplete stores extracted text and advances the submission to
	// the ocr state. Classification is not triggered here; a comment or an
	// explicit classify request does that.
	MarkOCRComplete(ctx context.Context, id uuid.UUID, text string) (*submissions.Submission, error)

	// Classify runs the classification collaborator over the cleaned
	// submission text. Any failure forces the submission to the error state.
	Classify(ctx context.Context, id uuid.UUID, opts ClassifyOptions) (*ClassifyOutcome, error)

	// SubmitComment stores a user comment and re-classifies with the
	// commentary folded in. A failed re-classification is surfaced to the
	// caller but never rolls the comment back.
	SubmitComment(ctx context.Context, id uuid.UUID, content string) (*comments.Comment, error)

	// RequestDeletion files a takedown request and soft-hides the submission.
	RequestDeletion(ctx context.Context, id uuid.UUID, reason string) (*submissions.DeletionRequest, error)

	// Redact runs the PII detection and substitution pass over the stored
	// text fields. Detector failures collapse to a skipped pass.
	Redact(ctx context.Context, id uuid.UUID) (*redact.Result, error)

	// View assembles the public read model with a sanitized email body.
	View(ctx context.Context, id uuid.UUID) (*View, error)

	Handler() *Handler
}

// Pipeline wires the domain systems and collaborators together.
type Pipeline struct {
	submissions submissions.System
	violations  violations.System
	comments    comments.System
	audit       audit.System

	classifier ai.Classifier
	detector   ai.Detector
	cleaner    *textclean.Cleaner
	sanitizer  *sanitize.Sanitizer
	capturer   Capturer

	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Options carries the pipeline's dependencies. Classifier may be nil when no
// model backend is configured; Detector and Capturer fall back to no-ops.
type Options struct {
	Submissions submissions.System
	Violations  violations.System
	Comments    comments.System
	Audit       audit.System

	Classifier ai.Classifier
	Detector   ai.Detector
	Cleaner    *textclean.Cleaner
	Sanitizer  *sanitize.Sanitizer
	Capturer   Capturer

	Dispatcher *dispatch.Dispatcher
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// New creates a Pipeline from the given options.
func New(opts Options) *Pipeline {
	if opts.Detector == nil {
		opts.Detector = ai.NopDetector{}
	}
	if opts.Cleaner == nil {
		opts.Cleaner = textclean.New(textclean.DefaultAllowlistDomain)
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = sanitize.New(textclean.DefaultAllowlistDomain)
	}

	return &Pipeline{
		submissions: opts.Submissions,
		violations:  opts.Violations,
		comments:    opts.Comments,
		audit:       opts.Audit,
		classifier:  opts.Classifier,
		detector:    opts.Detector,
		cleaner:     opts.Cleaner,
		sanitizer:   opts.Sanitizer,
		capturer:    opts.Capturer,
		dispatcher:  opts.Dispatcher,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With("system", "pipeline"),
	}
}

func (p *Pipeline) Handler() *Handler {
	return NewHandler(p, p.logger)
}

func (p *Pipeline) MarkOCRComplete(
	ctx context.Context,
	id uuid.UUID,
	text string,
) (*submissions.Submission, error) {
	if err := p.submissions.SetOCRText(ctx, id, text); err != nil {
		return nil, err
	}

	p.record(ctx, id, audit.ActionOCRComplete, map[string]any{"chars": len(text)})
	return p.submissions.Find(ctx, id)
}

func (p *Pipeline) Classify(
	ctx context.Context,
	id uuid.UUID,
	opts ClassifyOptions,
) (*ClassifyOutcome, error) {
	sub, err := p.submissions.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !opts.ReplaceExisting {
		existing, err := p.violations.ListBySubmission(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return &ClassifyOutcome{
				Submission: sub,
				Violations: existing,
				Summary:    violations.DisplaySummary(existing),
			}, nil
		}
	}

	// preflight rejections leave the submission untouched; only failures
	// past this point force the error state
	text := p.classifiableText(sub)
	if text == "" {
		return nil, ErrNoText
	}
	if p.classifier == nil {
		return nil, ErrNoClassifier
	}

	req := ai.ClassifyRequest{SubmissionID: id, Text: text}
	if opts.IncludeExistingComments {
		req.Comments = p.userComments(ctx, id)
	}

	if err := p.submissions.UpdateStatus(ctx, id, submissions.StatusProcessing); err != nil {
		return nil, err
	}

	result, err := p.classifier.Classify(ctx, req)
	if err != nil {
		return nil, p.failClassification(ctx, id, err)
	}
	if result == nil || result.Violations == nil {
		return nil, p.failClassification(ctx, id, ErrEmptyClassification)
	}

	stored, err := p.violations.ReplaceSet(ctx, id, result.Violations)
	if err != nil {
		return nil, p.failClassification(ctx, id, err)
	}

	summary := violations.DisplaySummary(stored)

	var confidence *float64
	if summary != nil {
		confidence = &summary.Confidence
	}
	if err := p.submissions.SetClassified(ctx, id, confidence); err != nil {
		return nil, p.failClassification(ctx, id, err)
	}

	p.metrics.ObserveClassification(metrics.OutcomeOK, result.Elapsed)
	p.record(ctx, id, audit.ActionClassified, map[string]any{
		"violations": len(stored),
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})
	p.logger.Info("classification complete",
		"id", id, "violations", len(stored), "elapsed", result.Elapsed)

	if urls := p.cleaner.ExtractAllowlistedURLs(text); len(urls) > 0 && p.capturer != nil {
		p.dispatcher.Go("capture", func(ctx context.Context) error {
			return p.capturer.Capture(ctx, id, urls)
		})
	}

	sub, err = p.submissions.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ClassifyOutcome{
		Submission: sub,
		Violations: stored,
		Summary:    summary,
		Elapsed:    result.Elapsed,
	}, nil
}

// failClassification unconditionally forces the error state, no matter what
// broke or what state the submission was in.
func (p *Pipeline) failClassification(ctx context.Context, id uuid.UUID, cause error) error {
	if err := p.submissions.UpdateStatus(ctx, id, submissions.StatusError); err != nil {
		p.logger.Error("error-state write failed", "id", id, "error", err)
	}

	p.metrics.ObserveClassification(metrics.OutcomeError, 0)
	p.record(ctx, id, audit.ActionClassifyFailed, map[string]any{"error": cause.Error()})
	p.logger.Warn("classification failed", "id", id, "error", cause)
	return cause
}

func (p *Pipeline) SubmitComment(
	ctx context.Context,
	id uuid.UUID,
	content string,
) (*comments.Comment, error) {
	if _, err := p.submissions.Find(ctx, id); err != nil {
		return nil, err
	}

	comment, err := p.comments.Insert(ctx, id, comments.KindUser, content)
	if err != nil {
		return nil, err
	}

	p.record(ctx, id, audit.ActionCommentAdded, map[string]any{"comment_id": comment.ID})

	// the comment is committed; the re-run's failure cannot undo it
	if _, err := p.Classify(ctx, id, ClassifyOptions{
		IncludeExistingComments: true,
		ReplaceExisting:         true,
	}); err != nil {
		return comment, err
	}

	return comment, nil
}

func (p *Pipeline) RequestDeletion(
	ctx context.Context,
	id uuid.UUID,
	reason string,
) (*submissions.DeletionRequest, error) {
	req, err := p.submissions.CreateDeletionRequest(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	p.record(ctx, id, audit.ActionDeletionRequested, map[string]any{"reason": reason})
	return req, nil
}

func (p *Pipeline) Redact(ctx context.Context, id uuid.UUID) (*redact.Result, error) {
	sub, err := p.submissions.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	det, err := p.detector.Detect(ctx, p.classifiableText(sub), deref(sub.SenderID))
	if err != nil {
		// a broken detector must not block the pipeline
		p.logger.Warn("pii detection failed, skipping redaction", "id", id, "error", err)
		det = redact.Detection{}
	}

	result := redact.Apply(redact.Fields{
		RawText:      sub.RawText,
		EmailBody:    sub.EmailBody,
		EmailSubject: sub.EmailSubject,
	}, det)

	if result.Skipped || len(result.Updated) == 0 {
		p.metrics.ObserveRedaction(metrics.OutcomeSkipped)
		return &result, nil
	}

	if err := p.submissions.UpdateTextFields(ctx, id, result.Updated); err != nil {
		p.metrics.ObserveRedaction(metrics.OutcomeError)
		return nil, err
	}

	p.metrics.ObserveRedaction(metrics.OutcomeOK)
	p.record(ctx, id, audit.ActionRedacted, map[string]any{"fields": len(result.Updated)})
	p.logger.Info("redaction applied", "id", id, "fields", len(result.Updated))
	return &result, nil
}

func (p *Pipeline) View(ctx context.Context, id uuid.UUID) (*View, error) {
	sub, err := p.submissions.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.Public {
		// soft-hidden submissions are indistinguishable from absent ones
		return nil, submissions.ErrNotFound
	}

	if sub.EmailBody != nil {
		sanitized := p.sanitizer.EmailHTML(*sub.EmailBody)
		sub.EmailBody = &sanitized
	}

	set, err := p.violations.ListBySubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	notes, err := p.comments.ListBySubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	return &View{
		Submission: sub,
		Violations: set,
		Summary:    violations.DisplaySummary(set),
		Comments:   notes,
	}, nil
}

// classifiableText prefers OCR text, falling back to subject plus body for
// email-only submissions, cleaned either way.
func (p *Pipeline) classifiableText(sub *submissions.Submission) string {
	raw := deref(sub.RawText)
	if raw == "" {
		raw = strings.TrimSpace(deref(sub.EmailSubject) + "\n\n" + deref(sub.EmailBody))
	}
	return p.cleaner.CleanForClassification(raw)
}

func (p *Pipeline) userComments(ctx context.Context, id uuid.UUID) []string {
	notes, err := p.comments.ListBySubmission(ctx, id)
	if err != nil {
		p.logger.Warn("comment lookup failed, classifying without commentary", "id", id, "error", err)
		return nil
	}

	var texts []string
	for _, c := range notes {
		if c.Kind == comments.KindUser {
			texts = append(texts, c.Content)
		}
	}
	return texts
}

// record appends an audit entry best-effort.
func (p *Pipeline) record(ctx context.Context, id uuid.UUID, action string, payload any) {
	if err := p.audit.Record(ctx, systemActor, action, id, payload); err != nil {
		p.logger.Warn("audit write failed", "id", id, "action", action, "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
