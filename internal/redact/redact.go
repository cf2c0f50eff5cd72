// Package redact deterministically removes detected PII strings from stored
// submission text. Detection is delegated to an injected capability; this
// package owns only the substitution pass, which must be safe to re-run and
// must never leave a partially masked span behind.
package redact

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaskRune is the character used to overwrite redacted spans. Each candidate
// occurrence is replaced by a run of MaskRune of identical rune length so
// the surrounding layout is preserved.
const MaskRune = '*'

// MinConfidence is the fail-safe gate: detection results below this
// confidence are ignored entirely rather than risking a bad redaction.
const MinConfidence = 0.5

// trailingPunct are characters stripped to generate candidate variants, so a
// detected "Ryan," also catches a bare later "Ryan".
const trailingPunct = ".,;:!?"

// Detection is the output of the PII detection capability.
type Detection struct {
	StringsToRedact []string `json:"strings_to_redact"`
	Confidence      float64  `json:"confidence"`
}

// Fields carries the redactable text fields of a submission. Nil pointers
// mark fields that are absent and must not be touched.
type Fields struct {
	RawText      *string
	EmailBody    *string
	EmailSubject *string
}

// Result reports the outcome of a redaction pass. Updated holds new values
// only for fields that actually changed.
type Result struct {
	Skipped bool
	Updated map[string]string
}

// Apply runs the deterministic substitution pass. If the detection carries no
// candidate strings or its confidence is below MinConfidence, no field is
// mutated and the result reports Skipped.
func Apply(fields Fields, det Detection) Result {
	if len(det.StringsToRedact) == 0 || det.Confidence < MinConfidence {
		return Result{Skipped: true}
	}

	candidates := expandCandidates(det.StringsToRedact)
	updated := make(map[string]string)

	apply := func(name string, field *string) {
		if field == nil || *field == "" {
			return
		}
		if masked := maskAll(*field, candidates); masked != *field {
			updated[name] = masked
		}
	}

	apply("raw_text", fields.RawText)
	apply("email_body", fields.EmailBody)
	apply("email_subject", fields.EmailSubject)

	return Result{Updated: updated}
}

// expandCandidates adds trailing-punctuation-stripped variants, then orders
// the set by descending length. Longest-first ordering is mandatory: masking
// a short substring first would corrupt a longer overlapping candidate into
// a mixed mask/partial-text result.
func expandCandidates(detected []string) []string {
	seen := make(map[string]bool, len(detected)*2)
	candidates := make([]string, 0, len(detected)*2)

	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}

	for _, s := range detected {
		add(s)
		if variant := strings.TrimRight(s, trailingPunct); variant != s {
			add(variant)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	return candidates
}

// maskAll replaces every exact occurrence of each candidate with an
// equal-length mask run. A span already fully masked no longer matches any
// literal candidate, so re-running on redacted text is a no-op.
func maskAll(text string, candidates []string) string {
	for _, c := range candidates {
		if !strings.Contains(text, c) {
			continue
		}
		text = strings.ReplaceAll(text, c, maskFor(c))
	}
	return text
}

func maskFor(s string) string {
	return strings.Repeat(string(MaskRune), utf8.RuneCountInString(s))
}
