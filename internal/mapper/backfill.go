package mapper

import (
	"context"
	"regexp"
	"strings"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
	"github.com/seitarof/gen-uwp-dts/internal/logging"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/parser"
)

var qualifiedRegex = regexp.MustCompile(`[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)+`)

// memory is the ordered set of qualified type names seen in signatures.
type memory struct {
	seen  map[string]bool
	names []string
}

func newMemory() *memory {
	return &memory{seen: map[string]bool{}}
}

// addAll remembers every dotted identifier inside a type expression.
func (m *memory) addAll(expr string) {
	for _, name := range qualifiedRegex.FindAllString(expr, -1) {
		key := notation.Key(name)
		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		m.names = append(m.names, name)
	}
}

func (m *memory) len() int {
	return len(m.names)
}

// backfill attaches every remembered structure, delegate and interface to
// its owning namespace. Expanding one type may remember more, so the list
// is walked until it stops growing.
func (r *merge) backfill(ctx context.Context) int {
	logger := logging.FromContext(ctx)
	added := 0
	for i := 0; i < len(r.memory.names); i++ {
		name := r.memory.names[i]
		owner, ok := r.owners[notation.Key(name)]
		if !ok {
			continue
		}
		doc, ok := r.corpus.Get(name)
		if !ok {
			continue
		}

		var d decl.Decl
		switch doc := doc.(type) {
		case *notation.Structure:
			d = r.interfaceLiteral(doc)
		case *notation.Delegate:
			d = r.delegate(doc)
		case *notation.Interface:
			d = r.iface(doc)
		default:
			continue
		}
		if _, exists := owner.Members.Lookup(d.DeclName()); exists {
			continue
		}
		owner.Members = append(owner.Members, d)
		added++
		logger.DebugContext(ctx, "backfilled type", "type", doc.Base().CamelID, "kind", string(d.Kind()), "namespace", owner.FullName)
	}
	return added
}

func (r *merge) interfaceLiteral(doc *notation.Structure) *decl.InterfaceLiteral {
	return &decl.InterfaceLiteral{
		Name:        parser.LastSegment(doc.CamelID),
		FullName:    doc.CamelID,
		Description: doc.Description,
		Members:     r.members(doc.Members),
	}
}

func (r *merge) delegate(doc *notation.Delegate) *decl.Delegate {
	return &decl.Delegate{
		Name:           parser.LastSegment(doc.CamelID),
		FullName:       doc.CamelID,
		Description:    doc.Description,
		TypeParameters: doc.TypeParameters,
		Signature:      r.signature(doc.Signature),
	}
}

// iface expands member references into full declarations and folds in the
// members of linked extension interfaces.
func (r *merge) iface(doc *notation.Interface) *decl.Interface {
	out := &decl.Interface{
		Name:           parser.LastSegment(doc.CamelID),
		FullName:       doc.CamelID,
		Description:    doc.Description,
		TypeParameters: doc.TypeParameters,
		Methods:        []*decl.Function{},
		Properties:     []*decl.Property{},
	}

	family := []*notation.Interface{doc}
	for _, id := range doc.Extensions {
		if ext, ok := r.corpus.Get(id); ok {
			if ext, ok := ext.(*notation.Interface); ok {
				family = append(family, ext)
			}
		}
	}

	seen := map[string]bool{}
	for _, it := range family {
		for _, base := range it.Interfaces {
			base = r.typeName(base)
			if seen[base] || strings.EqualFold(base, doc.CamelID) {
				continue
			}
			seen[base] = true
			out.Extends = append(out.Extends, base)
		}
		for _, id := range it.Members.Methods {
			if fn, ok := r.member(id).(*notation.Function); ok {
				out.Methods = append(out.Methods, r.function(memberName(id), fn))
			}
		}
		for _, id := range it.Members.Properties {
			if p, ok := r.member(id).(*notation.Property); ok {
				if typ, ok := r.typeOf(p.Type); ok {
					out.Properties = append(out.Properties, &decl.Property{Name: memberName(id), Type: typ, Description: p.Description})
				}
			}
		}
	}
	return out
}

func (r *merge) member(id string) notation.Notation {
	n, _ := r.corpus.Get(id)
	return n
}
