// Package mapper merges the reflection snapshot with the Reference Corpus.
package mapper

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
	"github.com/seitarof/gen-uwp-dts/internal/iteration"
	"github.com/seitarof/gen-uwp-dts/internal/logging"
	"github.com/seitarof/gen-uwp-dts/internal/matcher"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/parser"
)

const (
	constructorMember   = "constructor"
	addEventListener    = "addEventListener"
	removeEventListener = "removeEventListener"
	// baseObject is the reflected base of classes that extend nothing.
	baseObject = "Object"
)

// Mapper turns an iteration tree into a declaration tree.
type Mapper interface {
	Map(ctx context.Context, root *iteration.Node) (*decl.Namespace, error)
}

// Options tune a Mapper.
type Options struct {
	// Language picks the spelling of language-tagged types.
	Language string
}

type mapperImpl struct {
	corpus *notation.Corpus
	names  matcher.NameMatcher
	opts   Options
}

// New returns a Mapper over c.
func New(c *notation.Corpus, names matcher.NameMatcher, opts Options) Mapper {
	return &mapperImpl{corpus: c, names: names, opts: opts}
}

// Map runs the member pass over root, then backfills the structural types
// referenced by any signature into the namespaces that own them. root is
// never modified.
func (m *mapperImpl) Map(ctx context.Context, root *iteration.Node) (*decl.Namespace, error) {
	if root == nil {
		return nil, errors.New("iteration tree is empty")
	}
	if root.Kind != iteration.KindStructure {
		return nil, errors.Errorf("iteration tree root %q is a %s, not a namespace", root.FullName, root.Kind)
	}

	run := &merge{
		mapperImpl: m,
		memory:     newMemory(),
		owners:     map[string]*decl.Namespace{},
	}
	d := run.structure(root)
	ns, ok := d.(*decl.Namespace)
	if !ok {
		return nil, errors.Errorf("iteration tree root %q is documented as a %s", root.FullName, d.Kind())
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	added := run.backfill(ctx)
	logging.FromContext(ctx).InfoContext(ctx, "merged iteration tree",
		"referenced", run.memory.len(),
		"backfilled", added,
		"unresolved", run.unresolved,
	)
	return ns, nil
}

// merge is the state of one Map call.
type merge struct {
	*mapperImpl
	memory *memory
	// owners maps corpus keys of structural types to their namespace.
	owners     map[string]*decl.Namespace
	unresolved int
}

func (r *merge) node(n *iteration.Node) decl.Decl {
	switch n.Kind {
	case iteration.KindClass:
		return r.class(n)
	case iteration.KindStructure:
		return r.structure(n)
	default:
		return r.leaf(n)
	}
}

func (r *merge) structure(n *iteration.Node) decl.Decl {
	doc, _ := r.corpus.Get(n.FullName)
	if enum, ok := doc.(*notation.Enumeration); ok {
		return r.enum(n, enum)
	}

	ns := &decl.Namespace{Name: n.Name, FullName: n.FullName, Members: decl.List{}}
	if doc != nil {
		ns.Description = doc.Base().Description
	}
	if nsDoc, ok := doc.(*notation.Namespace); ok {
		for _, ids := range [][]string{nsDoc.Members.Structures, nsDoc.Members.Delegates, nsDoc.Members.Interfaces} {
			for _, id := range ids {
				r.owners[notation.Key(id)] = ns
			}
		}
	}
	for _, c := range n.Children {
		ns.Members = append(ns.Members, r.node(c))
	}
	return ns
}

func (r *merge) enum(n *iteration.Node, doc *notation.Enumeration) *decl.Enum {
	e := &decl.Enum{Name: n.Name, FullName: n.FullName, Description: doc.Description}
	for _, c := range n.Children {
		member := decl.EnumMember{Name: c.Name}
		if p, ok := r.corpus.Get(c.FullName); ok {
			member.Description = p.Base().Description
		}
		e.Members = append(e.Members, member)
	}
	return e
}

func (r *merge) class(n *iteration.Node) *decl.Class {
	c := &decl.Class{Name: n.Name, FullName: n.FullName, Static: decl.List{}, Prototype: decl.List{}}
	if doc, ok := r.corpus.Get(n.FullName); ok {
		c.Description = doc.Base().Description
		if cls, ok := doc.(*notation.Class); ok {
			c.Attribute = cls.Attribute
			for _, iface := range cls.Interfaces {
				c.Interfaces = append(c.Interfaces, r.typeName(iface))
			}
		}
	}

	switch n.Extends {
	case "", baseObject:
	case decl.BaseArray:
		c.Extends = decl.BaseArray
	default:
		c.Extends = r.typeName(n.Extends)
	}

	if doc, ok := r.corpus.Get(n.FullName + "." + constructorMember); ok {
		if fn, ok := doc.(*notation.Function); ok {
			c.Constructor = r.function(constructorMember, fn)
		}
	}

	for _, child := range n.Children {
		d := r.node(child)
		if d.Kind() == decl.KindEvent {
			c.StaticEventTarget = true
		}
		c.Static = append(c.Static, d)
	}
	if n.Prototype != nil {
		for _, child := range n.Prototype.Children {
			d := r.leaf(child)
			if d.Kind() == decl.KindEvent {
				c.EventTarget = true
			}
			c.Prototype = append(c.Prototype, d)
		}
	}
	if c.StaticEventTarget {
		c.Static = withoutListeners(c.Static)
	}
	if c.EventTarget {
		c.Prototype = withoutListeners(c.Prototype)
	}
	return c
}

// withoutListeners drops the untyped listener methods reflection reports
// on event targets; the emitter declares typed ones instead.
func withoutListeners(l decl.List) decl.List {
	out := make(decl.List, 0, len(l))
	for _, d := range l {
		if name := d.DeclName(); name == addEventListener || name == removeEventListener {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (r *merge) leaf(n *iteration.Node) decl.Decl {
	if n.Kind != iteration.KindLeaf {
		return r.node(n)
	}
	doc, ok := r.corpus.Get(n.FullName)
	if !ok {
		r.unresolved++
		return &decl.Value{Name: n.Name, Placeholder: n.Placeholder}
	}

	switch doc := doc.(type) {
	case *notation.Function:
		return r.function(n.Name, doc)
	case *notation.Event:
		if delegate, ok := r.typeOf(doc.Delegate); ok {
			return &decl.Event{
				Name:        n.Name,
				EventName:   eventName(n.Name, doc.EventName),
				Description: doc.Description,
				Delegate:    delegate,
			}
		}
	case *notation.Property:
		if typ, ok := r.typeOf(doc.Type); ok {
			return &decl.Property{Name: n.Name, Type: typ, Description: doc.Description}
		}
	}
	r.unresolved++
	return &decl.Value{Name: n.Name, Placeholder: n.Placeholder}
}

// eventName prefers the name captured from the listener snippet.
func eventName(member, captured string) string {
	if captured != "" {
		return captured
	}
	return strings.TrimPrefix(member, "on")
}

func (r *merge) function(name string, doc *notation.Function) *decl.Function {
	fn := &decl.Function{Name: name}
	for _, sig := range doc.Signatures {
		fn.Signatures = append(fn.Signatures, r.signature(sig))
	}
	return fn
}

func (r *merge) signature(sig notation.Signature) decl.Signature {
	out := decl.Signature{
		Description:    sig.Description,
		TypeParameters: sig.TypeParameters,
		Parameters:     r.fields(sig.Parameters),
	}
	switch sig.Return.Kind {
	case notation.ReturnInstance:
		out.Return = &decl.Return{Instance: true}
	case notation.ReturnType:
		typ, ok := r.typeOf(sig.Return.Type)
		if !ok {
			typ = notation.UnknownType
		}
		out.Return = &decl.Return{Type: typ, Description: sig.Return.Description}
	case notation.ReturnLiteral:
		out.Return = &decl.Return{Description: sig.Return.Description, Members: r.members(sig.Return.Members)}
	}
	return out
}

func (r *merge) fields(in []notation.DescribedKeyType) []decl.Field {
	out := make([]decl.Field, 0, len(in))
	for _, f := range in {
		typ, ok := r.typeOf(f.Type)
		if !ok {
			typ = notation.UnknownType
		}
		out = append(out, decl.Field{Name: f.Key, Type: typ, Description: f.Description})
	}
	return out
}

// members keeps only the structural members typed for the preferred
// language.
func (r *merge) members(in []notation.DescribedKeyType) []decl.Field {
	out := make([]decl.Field, 0, len(in))
	for _, f := range in {
		if typ, ok := r.typeOf(f.Type); ok {
			out = append(out, decl.Field{Name: f.Key, Type: typ, Description: f.Description})
		}
	}
	return out
}

// typeOf picks the preferred spelling of ref, qualifies it and remembers
// every type it names.
func (r *merge) typeOf(ref notation.TypeReference) (string, bool) {
	name, ok := ref.For(r.opts.Language)
	if !ok {
		return "", false
	}
	return r.typeName(name), true
}

func (r *merge) typeName(name string) string {
	qualified := r.names.Qualify(name)
	r.memory.addAll(qualified)
	return qualified
}

// camelCase lowers the leading letter of a documentation member name.
func camelCase(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(first)) + name[size:]
}

func memberName(id string) string {
	return camelCase(parser.LastSegment(id))
}
