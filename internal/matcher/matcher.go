package matcher

import (
	"regexp"
	"strings"

	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/parser"
)

// ambiguous marks a short name shared by several canonical identifiers.
const ambiguous = "\x00ambiguous"

var identRegex = regexp.MustCompile(`[A-Za-z_$][\w$.]*`)

// NameMatcher maps bare short type names to canonical identifiers.
type NameMatcher interface {
	// Match returns the canonical identifier for short. Ambiguous and
	// unknown names do not match.
	Match(short string) (string, bool)
	// Qualify rewrites every matching short name inside a type expression
	// such as "IVectorView<Package>".
	Qualify(expr string) string
}

type nameMatcherImpl struct {
	index map[string]string
}

// indexedKinds are the notation kinds that name a type.
var indexedKinds = map[notation.Kind]bool{
	notation.KindClass:       true,
	notation.KindAttribute:   true,
	notation.KindDelegate:    true,
	notation.KindEnumeration: true,
	notation.KindStructure:   true,
	notation.KindInterface:   true,
}

// NewNameMatcher indexes every type entry of c by its last dotted segment.
// Overrides replace indexed entries, ambiguous ones included.
func NewNameMatcher(c *notation.Corpus, overrides map[string]string) NameMatcher {
	index := map[string]string{}
	c.Each(func(_ string, n notation.Notation) {
		if !indexedKinds[n.Kind()] {
			return
		}
		full := n.Base().CamelID
		short := parser.LastSegment(full)
		if short == "" {
			return
		}
		if existing, ok := index[short]; ok && existing != full {
			index[short] = ambiguous
			return
		}
		index[short] = full
	})
	for short, full := range toOverrideSet(overrides) {
		index[short] = full
	}
	return &nameMatcherImpl{index: index}
}

func (m *nameMatcherImpl) Match(short string) (string, bool) {
	full, ok := m.index[short]
	if !ok || full == ambiguous {
		return "", false
	}
	return full, true
}

func (m *nameMatcherImpl) Qualify(expr string) string {
	return identRegex.ReplaceAllStringFunc(expr, func(token string) string {
		if strings.Contains(token, ".") {
			return token
		}
		if full, ok := m.Match(token); ok {
			return full
		}
		return token
	})
}

func toOverrideSet(overrides map[string]string) map[string]string {
	set := make(map[string]string, len(overrides))
	for short, full := range overrides {
		short = strings.TrimSpace(short)
		full = strings.TrimSpace(full)
		if short == "" || full == "" {
			continue
		}
		set[short] = full
	}
	return set
}
