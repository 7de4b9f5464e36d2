package corpus

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/parser"
)

// LinkExtensions records, on every base interface, the numbered siblings
// (IFoo2, IFoo3, ...) whose members fold into it. Numbering starts at 2 and
// stops at the first missing suffix. An interface whose name already ends in
// a digit is never treated as a base. A sibling sharing a member name with
// the base or an earlier sibling is left out. It returns the number of
// interfaces that gained extensions.
func LinkExtensions(c *notation.Corpus) int {
	linked := 0
	c.Each(func(key string, n notation.Notation) {
		base, ok := n.(*notation.Interface)
		if !ok {
			return
		}
		base.Extensions = nil
		if endsWithDigit(key) {
			return
		}

		seen := memberNames(base)
		for suffix := 2; ; suffix++ {
			sibling, ok := c.Get(key + strconv.Itoa(suffix))
			if !ok {
				break
			}
			ext, ok := sibling.(*notation.Interface)
			if !ok {
				break
			}
			names := memberNames(ext)
			if collides(seen, names) {
				continue
			}
			for name := range names {
				seen[name] = true
			}
			base.Extensions = append(base.Extensions, ext.CamelID)
		}
		if len(base.Extensions) > 0 {
			linked++
		}
	})
	return linked
}

func endsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsDigit(rune(s[len(s)-1]))
}

func memberNames(it *notation.Interface) map[string]bool {
	names := map[string]bool{}
	for _, ids := range [][]string{it.Members.Methods, it.Members.Properties} {
		for _, id := range ids {
			names[strings.ToLower(parser.LastSegment(id))] = true
		}
	}
	return names
}

func collides(seen, names map[string]bool) bool {
	for name := range names {
		if seen[name] {
			return true
		}
	}
	return false
}
