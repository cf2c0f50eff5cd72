package textclean_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/ryanmio/actblue-jail/internal/textclean"
)

func TestCleanForClassification(t *testing.T) {
	cleaner := textclean.New("actblue.com")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "crlf normalized",
			in:   "line one\r\nline two",
			want: "line one\nline two",
		},
		{
			name: "zero width characters stripped",
			in:   "Don\u200bate \u200cnow\uFEFF",
			want: "Donate now",
		},
		{
			name: "forwarded header block removed",
			in:   "---------- Forwarded message ----------\nFrom: Team <team@example.org>\nDate: Mon, Jan 6\nSubject: Act now\nTo: you@example.com\n\nDonate today",
			want: "Donate today",
		},
		{
			name: "allowlisted link kept without query",
			in:   "Give at https://secure.actblue.com/donate/page?refcode=em123&amount=25 today",
			want: "Give at https://secure.actblue.com/donate/page today",
		},
		{
			name: "non-allowlisted link replaced",
			in:   "Click https://tracking.example.com/c/abc123 now",
			want: "Click [link removed] now",
		},
		{
			name: "trailing punctuation survives link rewrite",
			in:   "See https://example.com/x.",
			want: "See [link removed].",
		},
		{
			name: "unsubscribe line removed",
			in:   "Donate now\nClick here to unsubscribe from these emails\nThanks",
			want: "Donate now\n\nThanks",
		},
		{
			name: "po box mailing block removed",
			in:   "Chip in $5\n\nOur Campaign\nP.O. Box 441146\nSomerville, MA 02144",
			want: "Chip in $5\n\nOur Campaign",
		},
		{
			name: "paid for by line preserved",
			in:   "Chip in $5\n\nPaid for by Friends of the Campaign\nP.O. Box 441146\nSomerville, MA 02144",
			want: "Chip in $5\n\nPaid for by Friends of the Campaign",
		},
		{
			name: "image alt markers removed",
			in:   "[image: Campaign logo]Donate now",
			want: "Donate now",
		},
		{
			name: "horizontal rules removed",
			in:   "Before\n----------\nAfter",
			want: "Before\n\nAfter",
		},
		{
			name: "whitespace collapsed",
			in:   "Too   many    spaces\n\n\n\n\nand newlines",
			want: "Too many spaces\n\nand newlines",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleaner.CleanForClassification(tt.in)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanForClassificationIdempotent(t *testing.T) {
	cleaner := textclean.New("actblue.com")

	inputs := []string{
		"Give at https://secure.actblue.com/donate/page?refcode=em123 today",
		"Click https://tracking.example.com/c/abc now.\n\nUnsubscribe\n\nP.O. Box 1\nBoston, MA 02101",
		"---------- Forwarded message ----------\nFrom: a@b.com\n\nDonate   now\u200b",
	}

	for _, in := range inputs {
		once := cleaner.CleanForClassification(in)
		twice := cleaner.CleanForClassification(once)
		if once != twice {
			t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}

func TestAllowlisted(t *testing.T) {
	cleaner := textclean.New("actblue.com")

	tests := []struct {
		host string
		want bool
	}{
		{"actblue.com", true},
		{"secure.actblue.com", true},
		{"ACTBLUE.COM", true},
		{"notactblue.com", false},
		{"actblue.com.evil.org", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		if got := cleaner.Allowlisted(tt.host); got != tt.want {
			t.Errorf("Allowlisted(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestExtractAllowlistedURLs(t *testing.T) {
	cleaner := textclean.New("actblue.com")

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "direct link",
			in:   "Give at https://secure.actblue.com/donate/page now",
			want: []string{"https://secure.actblue.com/donate/page"},
		},
		{
			name: "nested inside tracking redirect",
			in:   "https://click.example.com/r?url=https%3A%2F%2Fsecure.actblue.com%2Fdonate%2Fpage",
			want: []string{"https://secure.actblue.com/donate/page"},
		},
		{
			name: "duplicates collapsed",
			in:   "https://secure.actblue.com/donate/a and again https://secure.actblue.com/donate/a",
			want: []string{"https://secure.actblue.com/donate/a"},
		},
		{
			name: "no allowlisted links",
			in:   "Click https://tracking.example.com/c/abc now",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleaner.ExtractAllowlistedURLs(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCleanPreservesMessageBody(t *testing.T) {
	cleaner := textclean.New("actblue.com")

	in := "URGENT: We're 47 donations short of our midnight goal.\n\nChip in $5 before it's too late."
	got := cleaner.CleanForClassification(in)

	if !strings.Contains(got, "47 donations short") {
		t.Errorf("substantive content lost: %q", got)
	}
}
