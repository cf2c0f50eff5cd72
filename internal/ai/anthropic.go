package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ryanmio/actblue-jail/internal/redact"
	"github.com/ryanmio/actblue-jail/pkg/formatting"
)

const classifySystemPrompt = `You review political fundraising messages for policy violations.
Given the message text (and optional reader comments), return ONLY a JSON object:
{"violations": [{"code": string, "title": string, "description": string,
"evidence_spans": [{"text": string, "start": int, "end": int}],
"severity": int, "confidence": number}]}
Severity is 1 (minor) to 5 (egregious); confidence is 0 to 1.
Return {"violations": []} when nothing matches a policy rule.`

const detectSystemPrompt = `You find personally identifying strings in forwarded fundraising emails:
recipient names, personal email addresses, street addresses, phone numbers.
Do NOT flag the sender organization or its disclosures.
Return ONLY a JSON object: {"strings_to_redact": [string], "confidence": number}
where each string is an exact literal substring of the input.`

// Anthropic implements both collaborator capabilities against the Anthropic
// Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

// NewAnthropic creates an Anthropic collaborator from the given configuration.
func NewAnthropic(cfg *Config, logger *slog.Logger) *Anthropic {
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		logger:    logger.With("system", "ai"),
	}
}

type classifyResponse struct {
	Violations []Violation `json:"violations"`
}

// Classify sends the submission text to the model and parses the violation set.
func (a *Anthropic) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResult, error) {
	var prompt strings.Builder
	prompt.WriteString("Message text:\n")
	prompt.WriteString(req.Text)

	if len(req.Comments) > 0 {
		prompt.WriteString("\n\nReader comments:\n")
		for _, c := range req.Comments {
			prompt.WriteString("- ")
			prompt.WriteString(c)
			prompt.WriteString("\n")
		}
	}

	start := time.Now()
	content, err := a.complete(ctx, classifySystemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("classify submission %s: %w", req.SubmissionID, err)
	}

	parsed, err := formatting.Parse[classifyResponse](content)
	if err != nil {
		return nil, fmt.Errorf("classify submission %s: %w", req.SubmissionID, err)
	}

	elapsed := time.Since(start)
	a.logger.Info("classification complete",
		"submission_id", req.SubmissionID,
		"violations", len(parsed.Violations),
		"duration", elapsed,
	)

	return &ClassifyResult{Violations: parsed.Violations, Elapsed: elapsed}, nil
}

// Detect asks the model for literal PII strings in text. The sender email,
// when known, is passed so the model can distinguish sender from recipient.
func (a *Anthropic) Detect(ctx context.Context, text, senderEmail string) (redact.Detection, error) {
	var prompt strings.Builder
	if senderEmail != "" {
		prompt.WriteString("Sender email (do not flag): ")
		prompt.WriteString(senderEmail)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(text)

	content, err := a.complete(ctx, detectSystemPrompt, prompt.String())
	if err != nil {
		return redact.Detection{}, fmt.Errorf("detect pii: %w", err)
	}

	parsed, err := formatting.Parse[redact.Detection](content)
	if err != nil {
		return redact.Detection{}, fmt.Errorf("detect pii: %w", err)
	}

	return parsed, nil
}

func (a *Anthropic) complete(ctx context.Context, system, user string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic call: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("anthropic call: no text content in response")
}
