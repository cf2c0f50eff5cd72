package api

import (
	"github.com/ryanmio/actblue-jail/internal/ai"
	"github.com/ryanmio/actblue-jail/internal/audit"
	"github.com/ryanmio/actblue-jail/internal/comments"
	"github.com/ryanmio/actblue-jail/internal/pipeline"
	"github.com/ryanmio/actblue-jail/internal/sanitize"
	"github.com/ryanmio/actblue-jail/internal/screenshot"
	"github.com/ryanmio/actblue-jail/internal/submissions"
	"github.com/ryanmio/actblue-jail/internal/textclean"
	"github.com/ryanmio/actblue-jail/internal/violations"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Submissions submissions.System
	Violations  violations.System
	Comments    comments.System
	Audit       audit.System
	Pipeline    pipeline.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	auditSystem := audit.New(db, runtime.Logger)
	submissionSystem := submissions.New(
		db,
		runtime.Storage,
		auditSystem,
		runtime.Logger,
		runtime.Pagination,
	)
	violationSystem := violations.New(db, runtime.Logger)
	commentSystem := comments.New(db, runtime.Logger)

	var classifier ai.Classifier
	var detector ai.Detector
	if runtime.AI.Configured() {
		anthropic := ai.NewAnthropic(&runtime.AI, runtime.Logger)
		classifier = ai.WithClassifierResilience(anthropic, runtime.Resilience, runtime.Logger)
		detector = ai.WithDetectorResilience(anthropic, runtime.Resilience, runtime.Logger)
	}

	pipelineSystem := pipeline.New(pipeline.Options{
		Submissions: submissionSystem,
		Violations:  violationSystem,
		Comments:    commentSystem,
		Audit:       auditSystem,
		Classifier:  classifier,
		Detector:    detector,
		Cleaner:     textclean.New(runtime.AllowlistDomain),
		Sanitizer:   sanitize.New(runtime.AllowlistDomain),
		Capturer:    screenshot.New(nil, runtime.Storage, runtime.Logger),
		Dispatcher:  runtime.Dispatcher,
		Metrics:     runtime.Metrics,
		Logger:      runtime.Logger,
	})

	return &Domain{
		Submissions: submissionSystem,
		Violations:  violationSystem,
		Comments:    commentSystem,
		Audit:       auditSystem,
		Pipeline:    pipelineSystem,
	}
}
