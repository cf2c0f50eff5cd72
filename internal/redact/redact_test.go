package redact_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ryanmio/actblue-jail/internal/redact"
)

func str(s string) *string { return &s }

func TestApplyConfidenceGate(t *testing.T) {
	fields := redact.Fields{RawText: str("Hello Ryan")}

	tests := []struct {
		name        string
		det         redact.Detection
		wantSkipped bool
	}{
		{
			name:        "below gate",
			det:         redact.Detection{StringsToRedact: []string{"Ryan"}, Confidence: 0.49},
			wantSkipped: true,
		},
		{
			name:        "at gate",
			det:         redact.Detection{StringsToRedact: []string{"Ryan"}, Confidence: 0.5},
			wantSkipped: false,
		},
		{
			name:        "no candidates",
			det:         redact.Detection{Confidence: 0.99},
			wantSkipped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := redact.Apply(fields, tt.det)
			if result.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %v, want %v", result.Skipped, tt.wantSkipped)
			}
			if tt.wantSkipped && len(result.Updated) != 0 {
				t.Errorf("skipped pass mutated fields: %v", result.Updated)
			}
		})
	}
}

func TestApplyOverlappingCandidates(t *testing.T) {
	// the longer candidate must win before the shorter one can corrupt it
	fields := redact.Fields{RawText: str("Thanks, Ryan Mioduski. See you soon, Ryan.")}
	det := redact.Detection{
		StringsToRedact: []string{"Ryan", "Ryan Mioduski"},
		Confidence:      0.9,
	}

	result := redact.Apply(fields, det)

	got, ok := result.Updated["raw_text"]
	if !ok {
		t.Fatal("raw_text not updated")
	}

	want := "Thanks, *************. See you soon, ****."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyLengthPreserved(t *testing.T) {
	in := "Contact Zoë Martínez today"
	fields := redact.Fields{RawText: str(in)}
	det := redact.Detection{StringsToRedact: []string{"Zoë Martínez"}, Confidence: 0.8}

	result := redact.Apply(fields, det)

	got := result.Updated["raw_text"]
	if utf8.RuneCountInString(got) != utf8.RuneCountInString(in) {
		t.Errorf("rune length changed: %d != %d", utf8.RuneCountInString(got), utf8.RuneCountInString(in))
	}
	if strings.Contains(got, "Zoë") {
		t.Errorf("name survived redaction: %q", got)
	}
}

func TestApplyPunctuationVariants(t *testing.T) {
	// a detected "Ryan," also catches a bare "Ryan" later in the text
	fields := redact.Fields{RawText: str("Hi Ryan, this one is for Ryan")}
	det := redact.Detection{StringsToRedact: []string{"Ryan,"}, Confidence: 0.7}

	result := redact.Apply(fields, det)

	got := result.Updated["raw_text"]
	if strings.Contains(got, "Ryan") {
		t.Errorf("bare occurrence survived: %q", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	fields := redact.Fields{
		RawText:      str("Ryan donated. Thanks Ryan!"),
		EmailSubject: str("For Ryan"),
	}
	det := redact.Detection{StringsToRedact: []string{"Ryan"}, Confidence: 0.9}

	first := redact.Apply(fields, det)

	masked := first.Updated["raw_text"]
	maskedSubject := first.Updated["email_subject"]
	second := redact.Apply(redact.Fields{
		RawText:      &masked,
		EmailSubject: &maskedSubject,
	}, det)

	if len(second.Updated) != 0 {
		t.Errorf("second pass changed fields: %v", second.Updated)
	}
}

func TestApplyNilAndUntouchedFields(t *testing.T) {
	fields := redact.Fields{
		RawText:   str("nothing to find here"),
		EmailBody: nil,
	}
	det := redact.Detection{StringsToRedact: []string{"Ryan"}, Confidence: 0.9}

	result := redact.Apply(fields, det)

	if result.Skipped {
		t.Error("pass should run, not skip")
	}
	if len(result.Updated) != 0 {
		t.Errorf("unchanged fields reported as updated: %v", result.Updated)
	}
}

func TestApplyFieldKeys(t *testing.T) {
	fields := redact.Fields{
		RawText:      str("call Ryan"),
		EmailBody:    str("from Ryan"),
		EmailSubject: str("Ryan's receipt"),
	}
	det := redact.Detection{StringsToRedact: []string{"Ryan"}, Confidence: 0.9}

	result := redact.Apply(fields, det)

	for _, key := range []string{"raw_text", "email_body", "email_subject"} {
		if _, ok := result.Updated[key]; !ok {
			t.Errorf("missing updated field %q", key)
		}
	}
}
