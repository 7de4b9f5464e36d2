package parser

import (
	"strings"
)

// Base types that appear in inheritance clauses but are not interfaces.
var ignoredBases = map[string]bool{
	"Object":                      true,
	"System.Object":               true,
	"Platform.Object":             true,
	"Attribute":                   true,
	"System.Attribute":            true,
	"Platform.Metadata.Attribute": true,
	"MulticastDelegate":           true,
	"System.MulticastDelegate":    true,
	"ValueType":                   true,
}

// SplitInterfaceList splits an inheritance clause such as
// ": IFoo, IBar<IBaz, IQux>, IZap" on top-level commas only; commas between
// angle brackets belong to generic arguments.
func SplitInterfaceList(clause string) []string {
	clause = strings.TrimSpace(clause)
	clause = strings.TrimPrefix(clause, ":")

	var out []string
	depth := 0
	start := 0
	flush := func(end int) {
		if item := strings.TrimSpace(clause[start:end]); item != "" {
			out = append(out, item)
		}
	}
	for i := 0; i < len(clause); i++ {
		switch clause[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(clause))
	return out
}

// InheritanceClause finds the declaration line of a class or interface in a
// code sample and returns the text after its inheritance colon. C++ scope
// separators are rewritten to dots first.
func InheritanceClause(code string) (string, bool) {
	code = strings.ReplaceAll(code, "::", ".")
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if !isTypeDeclarationLine(line) {
			continue
		}
		colon := topLevelColon(line)
		if colon < 0 {
			return "", false
		}
		clause := line[colon+1:]
		if i := strings.Index(clause, " where "); i >= 0 {
			clause = clause[:i]
		}
		clause = strings.TrimRight(strings.TrimSpace(clause), "{;")
		return strings.TrimSpace(clause), true
	}
	return "", false
}

// InterfacesFromSnippet extracts the implemented or extended interfaces named
// by a code sample, without access modifiers and non-interface bases.
func InterfacesFromSnippet(code string) []string {
	clause, ok := InheritanceClause(code)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range SplitInterfaceList(clause) {
		item = strings.TrimPrefix(item, "public ")
		item = strings.TrimSpace(strings.TrimSuffix(item, "^"))
		if item == "" || ignoredBases[item] {
			continue
		}
		out = append(out, item)
	}
	return out
}

func isTypeDeclarationLine(line string) bool {
	for _, kw := range []string{"class ", "interface ", "struct "} {
		if strings.HasPrefix(line, kw) || strings.Contains(line, " "+kw) {
			return true
		}
	}
	return false
}

func topLevelColon(line string) int {
	depth := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
