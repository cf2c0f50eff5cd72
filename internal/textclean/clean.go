// Package textclean normalizes raw extracted text before it is sent to the
// policy classifier. Cleaning reduces token volume and strips the
// per-recipient fingerprinting surface (invisible characters, tracking URLs,
// unsubscribe boilerplate) while preserving sender-attribution evidence.
package textclean

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultAllowlistDomain is the advocacy platform's own domain. Links on this
// domain (or its subdomains) survive cleaning; everything else is treated as
// a tracking or redirect link.
const DefaultAllowlistDomain = "actblue.com"

// LinkPlaceholder replaces non-allowlisted URLs in cleaned text.
const LinkPlaceholder = "[link removed]"

var (
	// Zero-width and formatting characters used for per-recipient fingerprinting.
	invisibleRe = regexp.MustCompile("[\u200b\u200c\u200d\uFEFF\u180E]")

	forwardedBlockRe = regexp.MustCompile(
		`(?im)^[-=_*\x{2014} \t]*forwarded message[-=_*\x{2014} \t]*\r?\n(?:(?:from|date|subject|to|cc):[^\n]*\n?)*`)

	urlRe = regexp.MustCompile(`https?://[^\s<>()"']+`)

	unsubscribeLineRe  = regexp.MustCompile(`(?im)^.*click here to unsubscribe.*$`)
	unsubscribeAloneRe = regexp.MustCompile(`(?im)^[ \t]*unsubscribe[ \t.]*$`)

	horizontalRuleRe = regexp.MustCompile(`(?m)^[ \t]*-{5,}[ \t]*$`)

	poBoxRe   = regexp.MustCompile(`(?i)^\s*P\.?\s?O\.?\s*Box\s+\d+`)
	zipLineRe = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\s*$`)
	paidForRe = regexp.MustCompile(`(?i)paid for by`)

	imageAltRe = regexp.MustCompile(`\[image:[^\]]*\]`)

	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
	blankLineRe  = regexp.MustCompile(`(?m)^[ \t]+$`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)

	trailingPunct = ".,;:!?)"
)

// Cleaner applies deterministic normalization rules keyed to an allowlisted
// platform domain.
type Cleaner struct {
	domain   string
	nestedRe *regexp.Regexp
}

// New creates a Cleaner. An empty domain falls back to DefaultAllowlistDomain.
func New(domain string) *Cleaner {
	if domain == "" {
		domain = DefaultAllowlistDomain
	}
	domain = strings.ToLower(domain)
	return &Cleaner{
		domain:   domain,
		nestedRe: nestedURLPattern(domain),
	}
}

// CleanForClassification normalizes text for the classification capability.
// The function is idempotent: cleaning already-cleaned text is a no-op.
func (c *Cleaner) CleanForClassification(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = invisibleRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, " ", " ")

	text = forwardedBlockRe.ReplaceAllString(text, "")
	text = c.rewriteURLs(text)
	text = unsubscribeLineRe.ReplaceAllString(text, "")
	text = unsubscribeAloneRe.ReplaceAllString(text, "")
	text = horizontalRuleRe.ReplaceAllString(text, "")
	text = c.stripMailingBoilerplate(text)
	text = imageAltRe.ReplaceAllString(text, "")

	text = blankLineRe.ReplaceAllString(text, "")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// rewriteURLs keeps allowlisted links with their query parameters stripped
// and replaces everything else with LinkPlaceholder.
func (c *Cleaner) rewriteURLs(text string) string {
	return urlRe.ReplaceAllStringFunc(text, func(match string) string {
		core, tail := splitTrailingPunct(match)

		u, err := url.Parse(core)
		if err != nil || !c.Allowlisted(u.Hostname()) {
			return LinkPlaceholder + tail
		}

		u.RawQuery = ""
		u.Fragment = ""
		return u.String() + tail
	})
}

// stripMailingBoilerplate removes the postal footer block: a "P.O. Box"
// line through the trailing 5-digit postal code. "Paid for by" disclosure
// lines inside the block are preserved as attribution evidence.
func (c *Cleaner) stripMailingBoilerplate(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		if !poBoxRe.MatchString(lines[i]) {
			out = append(out, lines[i])
			continue
		}

		end := i
		for j := i; j < len(lines); j++ {
			if zipLineRe.MatchString(lines[j]) {
				end = j
				break
			}
			end = j
		}

		for j := i; j <= end; j++ {
			if paidForRe.MatchString(lines[j]) {
				out = append(out, lines[j])
			}
		}
		i = end
	}

	return strings.Join(out, "\n")
}

// Allowlisted reports whether host is the platform domain or a subdomain of it.
func (c *Cleaner) Allowlisted(host string) bool {
	host = strings.ToLower(host)
	return host == c.domain || strings.HasSuffix(host, "."+c.domain)
}

func splitTrailingPunct(s string) (core, tail string) {
	core = strings.TrimRight(s, trailingPunct)
	return core, s[len(core):]
}
