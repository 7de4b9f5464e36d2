package parser

import (
	"net/url"
	"regexp"
	"strings"
)

const helpLinkPrefix = "ms-xhelp:///?id="

var tickRegex = regexp.MustCompile("`+[0-9]+")

// LinkTarget decodes a help link such as "ms-xhelp:///?Id=T%3aWindows.Foo.IBar%601"
// into the canonical identifier "Windows.Foo.IBar".
func LinkTarget(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(strings.ToLower(href), helpLinkPrefix) {
		return "", false
	}
	raw := href[len(helpLinkPrefix):]
	if i := strings.IndexAny(raw, "&#"); i >= 0 {
		raw = raw[:i]
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", false
	}
	id := CanonicalID(decoded)
	return id, id != ""
}

// CanonicalID strips a member-kind prefix ("T:", "M:", ...), call
// parentheses and generic arity ticks from a documentation identifier.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.IndexByte(id, ':'); i > 0 && i <= 2 {
		id = id[i+1:]
	}
	if i := strings.IndexByte(id, '('); i >= 0 {
		id = id[:i]
	}
	return tickRegex.ReplaceAllString(id, "")
}

// LastSegment returns the part of a dotted identifier after the last dot.
func LastSegment(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
