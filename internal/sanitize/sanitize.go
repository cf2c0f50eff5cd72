// Package sanitize defuses forwarded HTML email bodies for public display.
// It prevents exposing the original recipient's address and any
// tracking/unsubscribe/honeypot links while keeping the message's
// evidentiary link to the advocacy platform intact. Sanitization runs
// lazily whenever a stored email body is rendered publicly.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// emailMaskPrefix is the fixed visual mask for local part and domain label.
// Unlike PII redaction, this is not length-preserving: only the TLD suffix
// of the masked address survives.
const emailMaskPrefix = "*******@*******."

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	fromAddressRe = regexp.MustCompile(
		`(?i)From:[^\n<]*?<?([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})>?`)

	unsubscribeTextRe = regexp.MustCompile(`(?i)click here to unsubscribe\.?`)
)

// Sanitizer rewrites forwarded email HTML against an allowlisted platform domain.
type Sanitizer struct {
	domain string
}

// New creates a Sanitizer for the given allowlisted domain.
func New(domain string) *Sanitizer {
	return &Sanitizer{domain: strings.ToLower(domain)}
}

// EmailHTML sanitizes a forwarded email body for public rendering.
// The From: address found in the body is preserved verbatim; every other
// email address is collapsed to the fixed mask. Event handlers, tracking
// pixels, unsubscribe links, and non-allowlisted hrefs are removed.
func (s *Sanitizer) EmailHTML(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}

	from := findFromAddress(in)

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(in), body)
	if err != nil {
		// unparsable input still gets the text-level passes
		return maskEmails(unsubscribeTextRe.ReplaceAllString(in, ""), from)
	}

	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	s.walk(root, from)

	var b strings.Builder
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&b, n); err != nil {
			return ""
		}
	}
	return b.String()
}

func (s *Sanitizer) walk(parent *html.Node, from string) {
	for child := parent.FirstChild; child != nil; {
		next := child.NextSibling

		switch {
		case child.Type == html.TextNode:
			child.Data = maskEmails(unsubscribeTextRe.ReplaceAllString(child.Data, ""), from)

		case child.Type == html.ElementNode && isTrackingPixel(child):
			parent.RemoveChild(child)

		case child.Type == html.ElementNode && isUnsubscribeAnchor(child):
			parent.RemoveChild(child)

		case child.Type == html.ElementNode && child.DataAtom == atom.A:
			stripEventHandlers(child)
			if s.rewriteAnchor(child) {
				s.walk(child, from)
			} else {
				// non-allowlisted target: keep only the inner text,
				// then resume from the first unwrapped node
				next = unwrap(parent, child)
			}

		case child.Type == html.ElementNode:
			stripEventHandlers(child)
			s.walk(child, from)
		}

		child = next
	}
}

// rewriteAnchor rewrites an allowlisted href in place (query stripped,
// forced into a new isolated browsing context) and reports true. It reports
// false when the href points anywhere else or cannot be parsed.
func (s *Sanitizer) rewriteAnchor(a *html.Node) bool {
	href, ok := attr(a, "href")
	if !ok {
		return true
	}

	u, err := url.Parse(href)
	if err != nil || !s.allowlisted(u.Hostname()) {
		return false
	}

	u.RawQuery = ""
	u.Fragment = ""

	setAttr(a, "href", u.String())
	setAttr(a, "target", "_blank")
	setAttr(a, "rel", "noopener noreferrer")
	return true
}

func (s *Sanitizer) allowlisted(host string) bool {
	host = strings.ToLower(host)
	return host == s.domain || strings.HasSuffix(host, "."+s.domain)
}

// findFromAddress returns the sender address declared by a "From:" line in
// the body text, or empty when none is present.
func findFromAddress(in string) string {
	if m := fromAddressRe.FindStringSubmatch(in); m != nil {
		return m[1]
	}
	return ""
}

// maskEmails collapses every address except the From: address to the fixed
// mask, keeping only the top-level domain suffix.
func maskEmails(text, from string) string {
	return emailRe.ReplaceAllStringFunc(text, func(match string) string {
		if from != "" && strings.EqualFold(match, from) {
			return match
		}
		return emailMaskPrefix + tldOf(match)
	})
}

func tldOf(address string) string {
	i := strings.LastIndex(address, ".")
	return address[i+1:]
}

func isTrackingPixel(n *html.Node) bool {
	if n.DataAtom != atom.Img {
		return false
	}
	w, _ := attr(n, "width")
	h, _ := attr(n, "height")
	return w == "1" || h == "1"
}

func isUnsubscribeAnchor(n *html.Node) bool {
	if n.DataAtom != atom.A {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(innerText(n)), "unsubscribe")
}

func innerText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// unwrap replaces n with its children and returns the node to resume
// walking from.
func unwrap(parent, n *html.Node) *html.Node {
	first := n.FirstChild
	after := n.NextSibling

	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	for _, c := range children {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)

	if first != nil {
		return first
	}
	return after
}

func stripEventHandlers(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if strings.HasPrefix(strings.ToLower(a.Key), "on") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
