package textclean

import (
	"net/url"
	"regexp"
	"slices"
)

// nestedURLPattern matches a URL whose host is the allowlisted domain or a
// subdomain of it, cut at characters that belong to an outer tracking wrapper.
func nestedURLPattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(
		`https?://(?:[A-Za-z0-9-]+\.)*` + regexp.QuoteMeta(domain) + `[^\s&"'<>]*`)
}

// ExtractAllowlistedURLs scans text for URLs on the allowlisted domain.
// Tracking redirects that embed an allowlisted destination as a query value
// are resolved by percent-decoding the outer URL and searching the decoded
// form; in that case the nested destination (not the tracking wrapper) is
// returned. Results are deduplicated with first-occurrence order preserved.
func (c *Cleaner) ExtractAllowlistedURLs(text string) []string {
	found := make([]string, 0)

	add := func(raw string) {
		if !slices.Contains(found, raw) {
			found = append(found, raw)
		}
	}

	for _, match := range urlRe.FindAllString(text, -1) {
		core, _ := splitTrailingPunct(match)

		u, err := url.Parse(core)
		if err != nil {
			continue
		}

		if c.Allowlisted(u.Hostname()) {
			add(core)
			continue
		}

		decoded, err := url.QueryUnescape(core)
		if err != nil {
			continue
		}

		for _, nested := range c.nestedRe.FindAllString(decoded, -1) {
			nestedCore, _ := splitTrailingPunct(nested)
			add(nestedCore)
		}
	}

	return found
}
