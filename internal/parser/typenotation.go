package parser

import (
	"regexp"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/seitarof/gen-uwp-dts/internal/dombox"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
)

const (
	typeMarker  = "Type:"
	arrayPrefix = "array of"
)

var bracketRegex = regexp.MustCompile(`\[[^\[]*\]`)

// ParseTypeNotation reads a type notation container such as
// `<p>Type: <a href="...">Uri</a> [JavaScript]</p>`. Unless omitMarker is
// set, the first node must be a text node starting with "Type:".
//
// The remainder of that text is read as `typeName [lang]` or
// `typeName [lang1/lang2]`; without a bracket group it is the universal type
// name. Following siblings propose a type name (a link target or emphasized
// text) and a later bracketed text node commits the proposal for its
// languages. A bare "array of" fragment prefixes the next resolved name.
// Parsing stops at a paragraph or when the siblings run out.
func ParseTypeNotation(container *html.Node, omitMarker bool) (notation.TypeReference, error) {
	var ref notation.TypeReference
	if container == nil {
		return ref, errors.Errorf("%w: missing type notation", ErrStructure)
	}

	node := container.FirstChild
	prefix := ""

	if !omitMarker {
		if node == nil || node.Type != html.TextNode || !strings.HasPrefix(strings.TrimLeft(node.Data, " \t\r\n"), typeMarker) {
			return ref, errors.Errorf("%w: type notation does not start with %q", ErrStructure, typeMarker)
		}
		rest := strings.TrimLeft(node.Data, " \t\r\n")
		sliced := dombox.Inline(rest[len(typeMarker):])
		switch {
		case sliced == arrayPrefix:
			prefix = sliced
		case sliced != "":
			name, languages := splitLanguageTag(sliced)
			if name == "" {
				return ref, errors.Errorf("%w: empty type name in %q", ErrStructure, sliced)
			}
			if len(languages) == 0 {
				return notation.Universal(name), nil
			}
			for _, lang := range languages {
				ref.Set(lang, name)
			}
		}
		node = node.NextSibling
	}

	proposed := ""
	applyPrefix := func() {
		if prefix != "" && proposed != "" {
			proposed = prefix + " " + proposed
			prefix = ""
		}
	}

loop:
	for ; node != nil; node = node.NextSibling {
		switch node.Type {
		case html.ElementNode:
			switch node.DataAtom {
			case atom.A:
				href, _ := dombox.Attr(node, "href")
				if id, ok := LinkTarget(href); ok {
					proposed = id
				} else {
					proposed = strings.TrimSpace(dombox.TextContent(node))
				}
			case atom.Strong, atom.Span, atom.B, atom.Em, atom.I, atom.Code:
				proposed = dombox.Inline(dombox.TextContent(node))
			case atom.Br:
			case atom.P:
				break loop
			default:
				return ref, errors.Errorf("%w: unexpected <%s> in type notation", ErrStructure, node.Data)
			}
		case html.TextNode:
			text := dombox.Inline(node.Data)
			if text == "" {
				continue
			}
			if text == arrayPrefix {
				prefix = text
				continue
			}
			name, languages := splitLanguageTag(text)
			if hasWordRune(name) {
				proposed = name
			}
			applyPrefix()
			for _, lang := range languages {
				ref.Set(lang, proposed)
			}
		}
	}

	if ref.Tagged() {
		return ref, nil
	}
	applyPrefix()
	if proposed == "" {
		return ref, errors.Errorf("%w: no type name in notation", ErrStructure)
	}
	return notation.Universal(proposed), nil
}

// splitLanguageTag turns "Int32 [JavaScript/C#]" into "Int32" and the tags.
func splitLanguageTag(text string) (string, []string) {
	loc := bracketRegex.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), nil
	}
	inner := text[loc[0]+1 : loc[1]-1]
	var languages []string
	for _, lang := range strings.Split(inner, "/") {
		if lang = strings.TrimSpace(lang); lang != "" {
			languages = append(languages, lang)
		}
	}
	return strings.TrimSpace(text[:loc[0]]), languages
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
