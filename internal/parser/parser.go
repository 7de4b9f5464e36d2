// Package parser turns one documentation page into typed notations.
package parser

import (
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/seitarof/gen-uwp-dts/internal/dombox"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
)

var (
	// ErrStructure marks a page of a recognized kind whose structure does not
	// match the documentation template. It aborts the corpus build.
	ErrStructure = errors.New("unexpected document structure")
	// ErrUnrecognizedTitle marks a page title matching no classification rule.
	ErrUnrecognizedTitle = errors.New("unrecognized document title")
)

// SkipReason explains why a page produced no notation.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipNoHelpID     SkipReason = "no help id"
	SkipForeignID    SkipReason = "help id outside namespace root"
	SkipNoLanguage   SkipReason = "no language category"
	SkipExcluded     SkipReason = "excluded namespace"
	SkipIncompatible SkipReason = "no type for preferred language"
	SkipMeta         SkipReason = "meta page"
	SkipUnrecognized SkipReason = "unrecognized title"
)

// Entry is one notation keyed by its canonical identifier.
type Entry struct {
	ID       string
	Notation notation.Notation
}

// Result is the outcome of parsing one page.
type Result struct {
	Title   string
	Kind    DocumentKind
	Skip    SkipReason
	Entries []Entry
}

// Skipped reports whether the page was skipped.
func (r *Result) Skipped() bool {
	return r.Skip != SkipNone
}

// Parser extracts notations from documentation pages.
type Parser interface {
	Parse(r io.Reader) (*Result, error)
}

// Options tune the template assumptions of the parser.
type Options struct {
	// Language is the preferred language tag; pages without a type for it are
	// skipped.
	Language string
	// LanguageCategory is the required Microsoft.Help.Category meta value.
	LanguageCategory string
	// NamespaceRoot is the first segment every help id must start with.
	NamespaceRoot string
	// Excluded lists lower-cased namespace prefixes that are never parsed.
	Excluded []string
	// InheritanceLanguages are the snippet languages read for base clauses,
	// in preference order.
	InheritanceLanguages []string
	// Rules classify pages by title; DefaultTitleRules when empty.
	Rules []TitleRule
}

// DefaultOptions returns the options matching the platform documentation.
func DefaultOptions() Options {
	return Options{
		Language:             "JavaScript",
		LanguageCategory:     "DevLang:javascript",
		NamespaceRoot:        "windows",
		Excluded:             []string{"windows.ui.xaml"},
		InheritanceLanguages: []string{"C#", "C++"},
		Rules:                DefaultTitleRules(),
	}
}

type parserImpl struct {
	opts Options
}

// New returns a parser using opts.
func New(opts Options) Parser {
	if len(opts.Rules) == 0 {
		opts.Rules = DefaultTitleRules()
	}
	return &parserImpl{opts: opts}
}

func (p *parserImpl) Parse(r io.Reader) (*Result, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Errorf("parse html: %w", err)
	}

	doc := &document{root: root, lang: p.opts.Language}
	result := &Result{Title: doc.displayTitle()}

	camelID, reason := p.helpID(doc)
	if reason != SkipNone {
		result.Skip = reason
		return result, nil
	}

	title := doc.title()
	kind, name, err := Classify(p.opts.Rules, title)
	result.Title = title
	result.Kind = kind
	if err != nil {
		result.Skip = SkipUnrecognized
		return result, err
	}
	if kind == DocMeta {
		result.Skip = SkipMeta
		return result, nil
	}

	doc.main = dombox.Find(root, dombox.ByID("mainSection"))
	if doc.main == nil {
		return nil, errors.Errorf("%w: no mainSection in %s page", ErrStructure, kind)
	}

	x := &extraction{doc: doc, opts: p.opts, camelID: camelID, name: name}
	if err := x.run(kind); err != nil {
		return nil, errors.Errorf("%s %s: %w", kind, camelID, err)
	}
	result.Entries = x.entries
	result.Skip = x.skip
	return result, nil
}

// helpID returns the case-preserved identifier from the help id meta tag.
func (p *parserImpl) helpID(doc *document) (string, SkipReason) {
	meta := doc.meta("Microsoft.Help.Id")
	if len(meta) == 0 {
		return "", SkipNoHelpID
	}
	content := meta[0]
	start := strings.Index(strings.ToLower(content), ":"+p.opts.NamespaceRoot)
	if start < 0 {
		return "", SkipForeignID
	}
	camelID := CanonicalID(content[start+1:])

	hasCategory := false
	for _, category := range doc.meta("Microsoft.Help.Category") {
		if category == p.opts.LanguageCategory {
			hasCategory = true
			break
		}
	}
	if !hasCategory {
		return "", SkipNoLanguage
	}

	lower := strings.ToLower(camelID)
	for _, excluded := range p.opts.Excluded {
		if lower == excluded || strings.HasPrefix(lower, excluded+".") {
			return "", SkipExcluded
		}
	}
	return camelID, SkipNone
}

type document struct {
	root *html.Node
	main *html.Node
	lang string
}

func (d *document) meta(name string) []string {
	var out []string
	for _, m := range dombox.FindAll(d.root, dombox.ByAtom(atom.Meta)) {
		if n, _ := dombox.Attr(m, "name"); n == name {
			content, _ := dombox.Attr(m, "content")
			out = append(out, content)
		}
	}
	return out
}

func (d *document) displayTitle() string {
	if t := dombox.Find(d.root, dombox.ByAtom(atom.Title)); t != nil {
		return strings.TrimSpace(dombox.TextContent(t))
	}
	return ""
}

func (d *document) title() string {
	if t := dombox.Find(d.root, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && dombox.HasClass(n, "title")
	}); t != nil {
		return strings.TrimSpace(dombox.TextContent(t))
	}
	return d.displayTitle()
}

// description returns the first paragraph of the main section before the
// first h2.
func (d *document) description() string {
	for n := dombox.FirstElementChild(d.main); n != nil && n.DataAtom != atom.H2; n = dombox.NextElementSibling(n) {
		if n.DataAtom == atom.P {
			return dombox.Inline(dombox.TextContent(n))
		}
	}
	return ""
}

func (d *document) heading(prefix string) *html.Node {
	return dombox.HeadingWithPrefix(d.main, atom.H2, prefix)
}

// snippets returns the language-tagged code samples following "Syntax".
func (d *document) snippets() ([]notation.CodeSnippet, error) {
	h := d.heading("Syntax")
	if h == nil {
		return nil, nil
	}
	var out []notation.CodeSnippet
	for n := dombox.NextElementSibling(h); n != nil && n.Data == "codesnippet"; n = dombox.NextElementSibling(n) {
		language, ok := dombox.Attr(n, "language")
		if !ok || language == "" {
			return nil, errors.Errorf("%w: CODESNIPPET without language attribute", ErrStructure)
		}
		out = append(out, notation.CodeSnippet{Language: language, Code: dombox.TextContent(n)})
	}
	return out, nil
}

