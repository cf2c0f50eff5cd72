package formatting_test

import (
	"errors"
	"testing"

	"github.com/ryanmio/actblue-jail/pkg/formatting"
)

type detection struct {
	Strings    []string `json:"strings_to_redact"`
	Confidence float64  `json:"confidence"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "direct json",
			content: `{"strings_to_redact":["Ryan"],"confidence":0.9}`,
		},
		{
			name:    "json fence",
			content: "```json\n{\"strings_to_redact\":[\"Ryan\"],\"confidence\":0.9}\n```",
		},
		{
			name:    "bare fence",
			content: "```\n{\"strings_to_redact\":[\"Ryan\"],\"confidence\":0.9}\n```",
		},
		{
			name:    "fence with surrounding prose",
			content: "Here is the result:\n```json\n{\"strings_to_redact\":[\"Ryan\"],\"confidence\":0.9}\n```\nLet me know.",
		},
		{
			name:    "not json at all",
			content: "I could not find any PII.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[detection](tt.content)

			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("got %v, want ErrParseFailed", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if got.Confidence != 0.9 || len(got.Strings) != 1 {
				t.Errorf("unexpected result: %+v", got)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 1, "0 B"},
		{512, 0, "512 B"},
		{1024, 0, "1 KB"},
		{1536, 1, "1.5 KB"},
		{10 * 1024 * 1024, 0, "10 MB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"10MB", 10 * 1024 * 1024, false},
		{"1.5 KB", 1536, false},
		{"512", 512, false},
		{"", 0, true},
		{"10XB", 0, true},
	}

	for _, tt := range tests {
		got, err := formatting.ParseBytes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBytes(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
