package violations_test

import (
	"testing"

	"github.com/ryanmio/actblue-jail/internal/violations"
)

func TestDisplaySummary(t *testing.T) {
	tests := []struct {
		name     string
		set      []violations.Violation
		wantCode string
	}{
		{
			name:     "empty set",
			set:      nil,
			wantCode: "",
		},
		{
			name: "highest severity wins",
			set: []violations.Violation{
				{Code: "minor", Severity: 1, Confidence: 0.99},
				{Code: "major", Severity: 3, Confidence: 0.40},
			},
			wantCode: "major",
		},
		{
			name: "confidence breaks severity ties",
			set: []violations.Violation{
				{Code: "first", Severity: 2, Confidence: 0.60},
				{Code: "second", Severity: 2, Confidence: 0.85},
				{Code: "third", Severity: 2, Confidence: 0.70},
			},
			wantCode: "second",
		},
		{
			name: "equal severity and confidence keeps first",
			set: []violations.Violation{
				{Code: "first", Severity: 2, Confidence: 0.70},
				{Code: "second", Severity: 2, Confidence: 0.70},
			},
			wantCode: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := violations.DisplaySummary(tt.set)

			if tt.wantCode == "" {
				if got != nil {
					t.Fatalf("want nil summary, got %+v", got)
				}
				return
			}

			if got == nil {
				t.Fatal("want summary, got nil")
			}
			if got.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s", got.Code, tt.wantCode)
			}
			if got.Count != len(tt.set) {
				t.Errorf("count: got %d, want %d", got.Count, len(tt.set))
			}
		})
	}
}
