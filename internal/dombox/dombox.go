// Package dombox segments documentation DOM trees into sections, table
// matrices and definition lists.
package dombox

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrUnexpectedElement is returned when a definition list holds something
// other than term/definition elements.
var ErrUnexpectedElement = errors.New("unexpected element")

// Section is one heading-delimited part of a document.
type Section struct {
	// ChildNodes holds every non-heading node, text included.
	ChildNodes []*html.Node
	// Children holds only the element nodes of ChildNodes.
	Children []*html.Node
	// Subsections maps trimmed heading text to the nested section.
	Subsections map[string]*Section
}

// Subsection returns the first subsection whose heading starts with prefix.
// Exact matches win over prefix matches.
func (s *Section) Subsection(prefix string) *Section {
	if s == nil {
		return nil
	}
	if sub, ok := s.Subsections[prefix]; ok {
		return sub
	}
	var best string
	for name := range s.Subsections {
		if strings.HasPrefix(name, prefix) && (best == "" || name < best) {
			best = name
		}
	}
	if best == "" {
		return nil
	}
	return s.Subsections[best]
}

// FirstChild returns the first element child with the given tag.
func (s *Section) FirstChild(a atom.Atom) *html.Node {
	if s == nil {
		return nil
	}
	for _, c := range s.Children {
		if c.DataAtom == a {
			return c
		}
	}
	return nil
}

type partitioner struct {
	current *html.Node
}

// PartitionByHeading walks the children of parent and nests everything that
// follows a heading deeper than baseLevel under that heading's text. A heading
// at or above the level being collected ends the collection. Duplicate heading
// text overwrites the earlier section.
func PartitionByHeading(parent *html.Node, baseLevel int) *Section {
	p := &partitioner{}
	return p.pack(parent.FirstChild, baseLevel)
}

func (p *partitioner) pack(start *html.Node, level int) *Section {
	result := &Section{Subsections: map[string]*Section{}}
	p.current = start

	for p.current != nil {
		node := p.current
		if node.Type == html.ElementNode {
			if headingLevel, ok := HeadingLevel(node); ok {
				if headingLevel <= level {
					break
				}
				name := TextContent(node)
				result.Subsections[strings.TrimSpace(name)] = p.pack(node.NextSibling, headingLevel)
				continue
			}
			result.Children = append(result.Children, node)
		}
		result.ChildNodes = append(result.ChildNodes, node)
		p.current = node.NextSibling
	}
	return result
}

// HeadingLevel reports the level of an h1..h6 element.
func HeadingLevel(n *html.Node) (int, bool) {
	if n == nil || n.Type != html.ElementNode {
		return 0, false
	}
	if len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0, false
	}
	level, err := strconv.Atoi(n.Data[1:])
	if err != nil || level < 1 || level > 6 {
		return 0, false
	}
	return level, true
}

// TableToMatrix returns the cells of every row in table order. Rows inside
// thead/tbody/tfoot are included; header rows are not distinguished.
func TableToMatrix(table *html.Node) [][]*html.Node {
	if table == nil {
		return nil
	}
	var rows [][]*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, ElementChildren(c))
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

// DefinitionMap is a definition list keyed by trimmed term text.
type DefinitionMap struct {
	// Terms lists each distinct term in first-seen order.
	Terms       []string
	Definitions map[string][]*html.Node
}

// DefinitionListToMap groups the dd elements of a dl under the dt that
// precedes them.
func DefinitionListToMap(dl *html.Node) (*DefinitionMap, error) {
	result := &DefinitionMap{Definitions: map[string][]*html.Node{}}

	term := ""
	hasTerm := false
	for _, child := range ElementChildren(dl) {
		switch child.DataAtom {
		case atom.Dt:
			term = strings.TrimSpace(TextContent(child))
			hasTerm = true
			if _, seen := result.Definitions[term]; !seen {
				result.Terms = append(result.Terms, term)
			}
			result.Definitions[term] = nil
		case atom.Dd:
			if !hasTerm {
				return nil, errors.Errorf("%w: dd before any dt", ErrUnexpectedElement)
			}
			result.Definitions[term] = append(result.Definitions[term], child)
		default:
			return nil, errors.Errorf("%w: <%s> in definition list", ErrUnexpectedElement, child.Data)
		}
	}
	return result, nil
}
