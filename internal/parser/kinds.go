package parser

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/seitarof/gen-uwp-dts/internal/dombox"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
)

var (
	eventListenerRegex = regexp.MustCompile(`\w+\.addEventListener\("(\w+)", \w+\)`)
	onEventRegex       = regexp.MustCompile(`\w+\.on(\w+) =`)
)

const (
	ctorMarker        = ".#ctor"
	constructorMember = "constructor"
)

// extraction holds the state of one per-kind rule run.
type extraction struct {
	doc     *document
	opts    Options
	camelID string
	// name is the title with its kind suffix removed.
	name string

	entries []Entry
	skip    SkipReason
}

func (x *extraction) run(kind DocumentKind) error {
	switch kind {
	case DocClass, DocAttribute:
		return x.class(kind == DocAttribute)
	case DocEnumeration:
		return x.enumeration()
	case DocNamespace:
		return x.namespace()
	case DocProperty:
		return x.property()
	case DocDelegate:
		return x.delegate()
	case DocConstructor:
		return x.constructor()
	case DocMethod:
		return x.method()
	case DocEvent:
		return x.event()
	case DocStructure:
		return x.structure()
	case DocInterface:
		return x.iface()
	default:
		return errors.Errorf("%w: no extraction rule for %s", ErrUnrecognizedTitle, kind)
	}
}

func (x *extraction) emit(id string, n notation.Notation) {
	x.entries = append(x.entries, Entry{ID: id, Notation: n})
}

func (x *extraction) info() notation.Info {
	return notation.Info{Description: x.doc.description(), CamelID: x.camelID}
}

// compatible reports whether ref has a spelling for the preferred language.
func (x *extraction) compatible(ref notation.TypeReference) bool {
	_, ok := ref.For(x.opts.Language)
	return ok
}

func (x *extraction) class(attribute bool) error {
	snippets, err := x.doc.snippets()
	if err != nil {
		return err
	}
	x.emit(x.camelID, &notation.Class{
		Info:       x.info(),
		Attribute:  attribute,
		Interfaces: x.inheritance(snippets),
	})
	return nil
}

// inheritance returns the base interfaces named by the first inheritance
// language snippet that declares any.
func (x *extraction) inheritance(snippets []notation.CodeSnippet) []string {
	for _, language := range x.opts.InheritanceLanguages {
		code, ok := notation.SnippetFor(snippets, language)
		if !ok {
			continue
		}
		if interfaces := InterfacesFromSnippet(code); len(interfaces) > 0 {
			return interfaces
		}
	}
	return nil
}

func (x *extraction) enumeration() error {
	table, err := x.tableAfter("Members")
	if err != nil {
		return err
	}

	enum := &notation.Enumeration{Info: x.info()}
	rows := dombox.TableToMatrix(table)
	if len(rows) > 0 {
		rows = rows[1:]
	}
	for _, row := range rows {
		if len(row) < 3 {
			return errors.Errorf("%w: enumeration member row has %d cells", ErrStructure, len(row))
		}
		parts := dombox.ElementChildren(row[0])
		if len(parts) < 2 {
			// Members documented for other languages only.
			continue
		}
		member := strings.TrimSpace(dombox.TextContent(parts[1]))
		if member == "" {
			continue
		}
		enum.Members = append(enum.Members, member)
		x.emit(x.camelID+"."+strings.ToLower(member), &notation.Property{
			Info: notation.Info{
				Description: cellParagraph(row[2]),
				CamelID:     x.camelID + "." + member,
			},
			Type: notation.Universal("Number"),
		})
	}
	// The enumeration goes first so that member keys sort below it.
	x.entries = append([]Entry{{ID: x.camelID, Notation: enum}}, x.entries...)
	return nil
}

// tableAfter finds the table two elements after the h2 starting with prefix;
// the element in between is an introductory paragraph.
func (x *extraction) tableAfter(prefix string) (*html.Node, error) {
	h := x.doc.heading(prefix)
	if h == nil {
		return nil, errors.Errorf("%w: no %q heading", ErrStructure, prefix)
	}
	table := dombox.NextElementSibling(dombox.NextElementSibling(h))
	if table == nil || table.DataAtom != atom.Table {
		return nil, errors.Errorf("%w: no table after %q heading", ErrStructure, prefix)
	}
	return table, nil
}

// cellParagraph returns the text of the first paragraph of a cell, or the
// whole cell when it has none.
func cellParagraph(cell *html.Node) string {
	if p := dombox.Find(cell, dombox.ByAtom(atom.P)); p != nil {
		return dombox.Inline(dombox.TextContent(p))
	}
	return dombox.Inline(dombox.TextContent(cell))
}

func (x *extraction) namespace() error {
	ns := &notation.Namespace{Info: x.info()}
	sections := dombox.PartitionByHeading(x.doc.main, 1)

	if members := sections.Subsection("Members"); members != nil {
		ns.Members.Structures = linkTargets(members.Subsection("Structures").FirstChild(atom.Table))
		ns.Members.Delegates = linkTargets(members.Subsection("Delegates").FirstChild(atom.Table))
		ns.Members.Interfaces = linkTargets(members.Subsection("Interfaces").FirstChild(atom.Table))
	}
	if combined := sections.Subsection("In this section"); combined != nil {
		for _, row := range dombox.TableToMatrix(combined.FirstChild(atom.Table)) {
			id, ok := rowLink(row)
			if !ok {
				continue
			}
			switch label := strings.TrimSpace(dombox.TextContent(row[0])); {
			case strings.HasSuffix(label, " structure"):
				ns.Members.Structures = append(ns.Members.Structures, id)
			case strings.HasSuffix(label, " delegate"):
				ns.Members.Delegates = append(ns.Members.Delegates, id)
			case strings.HasSuffix(label, " interface"):
				ns.Members.Interfaces = append(ns.Members.Interfaces, id)
			}
		}
	}
	x.emit(x.camelID, ns)
	return nil
}

// linkTargets returns the canonical identifier linked from each table row.
// Rows without a help link, such as the header, are skipped.
func linkTargets(table *html.Node) []string {
	var out []string
	for _, row := range dombox.TableToMatrix(table) {
		if id, ok := rowLink(row); ok {
			out = append(out, id)
		}
	}
	return out
}

func rowLink(row []*html.Node) (string, bool) {
	for _, cell := range row {
		for _, a := range dombox.FindAll(cell, dombox.ByAtom(atom.A)) {
			href, _ := dombox.Attr(a, "href")
			if id, ok := LinkTarget(href); ok {
				return id, true
			}
		}
	}
	return "", false
}

func (x *extraction) property() error {
	h := x.doc.heading("Property value")
	if h == nil {
		return errors.Errorf("%w: no \"Property value\" heading", ErrStructure)
	}
	ref, err := ParseTypeNotation(dombox.NextElementSibling(h), false)
	if err != nil {
		return err
	}
	if !x.compatible(ref) {
		x.skip = SkipIncompatible
		return nil
	}
	x.emit(x.camelID, &notation.Property{Info: x.info(), Type: ref})
	return nil
}

// parameters reads the "Parameters" definition list. It returns false when a
// parameter has no type for the preferred language.
func (x *extraction) parameters(required bool) ([]notation.DescribedKeyType, bool, error) {
	h := x.doc.heading("Parameters")
	if h == nil {
		if required {
			return nil, false, errors.Errorf("%w: no \"Parameters\" heading", ErrStructure)
		}
		return nil, true, nil
	}
	list := dombox.NextElementSibling(h)
	if list == nil || list.DataAtom != atom.Dl {
		if !required && list != nil && dombox.FirstElementChild(list) == nil {
			// "This method has no parameters."
			return nil, true, nil
		}
		return nil, false, errors.Errorf("%w: no parameter list after \"Parameters\" heading", ErrStructure)
	}
	defs, err := dombox.DefinitionListToMap(list)
	if err != nil {
		return nil, false, errors.Errorf("%w: %w", ErrStructure, err)
	}

	parameters := []notation.DescribedKeyType{}
	for _, term := range defs.Terms {
		for _, dd := range defs.Definitions[term] {
			parts := dombox.ElementChildren(dd)
			if len(parts) == 0 {
				return nil, false, errors.Errorf("%w: parameter %q has no type", ErrStructure, term)
			}
			ref, err := ParseTypeNotation(parts[0], false)
			if err != nil {
				return nil, false, errors.Errorf("parameter %q: %w", term, err)
			}
			if !x.compatible(ref) {
				return nil, false, nil
			}
			param := notation.DescribedKeyType{Key: term, Type: ref}
			if len(parts) > 1 {
				param.Description = dombox.Inline(dombox.TextContent(parts[1]))
			}
			parameters = append(parameters, param)
		}
	}
	return parameters, true, nil
}

func (x *extraction) delegate() error {
	params, ok, err := x.parameters(true)
	if err != nil {
		return err
	}
	if !ok {
		x.skip = SkipIncompatible
		return nil
	}
	_, typeParams := GenericParameters(x.name)
	x.emit(x.camelID, &notation.Delegate{
		Info:           x.info(),
		TypeParameters: typeParams,
		Signature:      notation.Signature{Parameters: params},
	})
	return nil
}

func (x *extraction) constructor() error {
	i := strings.Index(strings.ToLower(x.camelID), ctorMarker)
	if i < 0 {
		return errors.Errorf("%w: constructor id %q has no %s marker", ErrStructure, x.camelID, ctorMarker)
	}
	id := x.camelID[:i] + "." + constructorMember

	params, ok, err := x.parameters(false)
	if err != nil {
		return err
	}
	if !ok {
		x.skip = SkipIncompatible
		return nil
	}
	snippets, err := x.doc.snippets()
	if err != nil {
		return err
	}
	x.emit(id, &notation.Function{
		Info: notation.Info{CamelID: id},
		Signatures: []notation.Signature{{
			Description:  x.doc.description(),
			Parameters:   params,
			Return:       notation.Return{Kind: notation.ReturnInstance},
			CodeSnippets: snippets,
		}},
	})
	return nil
}

func (x *extraction) method() error {
	snippets, err := x.doc.snippets()
	if err != nil {
		return err
	}
	if _, ok := notation.SnippetFor(snippets, x.opts.Language); !ok {
		x.skip = SkipIncompatible
		return nil
	}

	params, ok, err := x.parameters(false)
	if err != nil {
		return err
	}
	if !ok {
		x.skip = SkipIncompatible
		return nil
	}

	ret, ok, err := x.returnValue()
	if err != nil {
		return err
	}
	if !ok {
		x.skip = SkipIncompatible
		return nil
	}

	_, typeParams := GenericParameters(x.name)
	x.emit(x.camelID, &notation.Function{
		Info: notation.Info{CamelID: x.camelID},
		Signatures: []notation.Signature{{
			Description:    x.doc.description(),
			TypeParameters: typeParams,
			Parameters:     params,
			Return:         ret,
			CodeSnippets:   snippets,
		}},
	})
	return nil
}

// returnValue reads the optional "Return value" section. A heading without a
// type notation yields the unknown sentinel.
func (x *extraction) returnValue() (notation.Return, bool, error) {
	h := x.doc.heading("Return value")
	if h == nil {
		return notation.Return{}, true, nil
	}
	p := dombox.NextElementSibling(h)
	if p == nil {
		return notation.Return{}, false, errors.Errorf("%w: nothing after \"Return value\" heading", ErrStructure)
	}

	ret := notation.Return{Kind: notation.ReturnType, Type: notation.Universal(notation.UnknownType)}
	if dombox.FirstElementChild(p) != nil {
		ref, err := ParseTypeNotation(p, false)
		if err != nil {
			return ret, false, errors.Errorf("return value: %w", err)
		}
		if !x.compatible(ref) {
			return ret, false, nil
		}
		ret.Type = ref
	}
	if desc := dombox.NextElementSibling(p); desc != nil && desc.DataAtom != atom.H2 {
		ret.Description = dombox.Inline(dombox.TextContent(desc))
	}
	return ret, true, nil
}

func (x *extraction) event() error {
	snippets, err := x.doc.snippets()
	if err != nil {
		return err
	}
	code, _ := notation.SnippetFor(snippets, x.opts.Language)
	listener := eventListenerRegex.FindStringSubmatch(code)
	if listener == nil || !onEventRegex.MatchString(code) {
		return errors.Errorf("%w: event syntax needs both addEventListener and on-assignment forms", ErrStructure)
	}

	h := x.doc.heading("Event information")
	if h == nil {
		return errors.Errorf("%w: no \"Event information\" heading", ErrStructure)
	}
	table := dombox.NextElementSibling(h)
	if table == nil || table.DataAtom != atom.Table {
		return errors.Errorf("%w: no table after \"Event information\" heading", ErrStructure)
	}
	rows := dombox.TableToMatrix(table)
	if len(rows) != 1 || len(rows[0]) < 2 {
		return errors.Errorf("%w: event information table must have one row of two cells", ErrStructure)
	}
	delegate, err := ParseTypeNotation(rows[0][1], true)
	if err != nil {
		return err
	}
	if !x.compatible(delegate) {
		return errors.Errorf("%w: event delegate has no %s type", ErrStructure, x.opts.Language)
	}

	dot := strings.LastIndexByte(x.camelID, '.')
	if dot < 0 {
		return errors.Errorf("%w: event id %q has no owner", ErrStructure, x.camelID)
	}
	id := x.camelID[:dot] + ".on" + x.camelID[dot+1:]

	x.emit(id, &notation.Event{
		Info:      notation.Info{Description: x.doc.description(), CamelID: id},
		Delegate:  delegate,
		EventName: listener[1],
	})
	return nil
}

func (x *extraction) structure() error {
	h := x.doc.heading("Members")
	if h == nil {
		return errors.Errorf("%w: no \"Members\" heading", ErrStructure)
	}

	st := &notation.Structure{Info: x.info(), Members: []notation.DescribedKeyType{}}

	var table *html.Node
	switch next := dombox.NextElementSibling(dombox.NextElementSibling(h)); {
	case next == nil, next.DataAtom == atom.H2:
		// Empty structure.
	case next.DataAtom == atom.Table:
		table = next
	case next.DataAtom == atom.Ul:
		fields := dombox.HeadingWithPrefix(x.doc.main, atom.H3, "Fields")
		if fields == nil {
			return errors.Errorf("%w: rich structure without \"Fields\" heading", ErrStructure)
		}
		table = dombox.NextElementSibling(dombox.NextElementSibling(fields))
		if table == nil || table.DataAtom != atom.Table {
			return errors.Errorf("%w: no table after \"Fields\" heading", ErrStructure)
		}
	default:
		return errors.Errorf("%w: unexpected <%s> after \"Members\" heading", ErrStructure, next.Data)
	}

	if table != nil {
		rows := dombox.TableToMatrix(table)
		if len(rows) > 0 {
			rows = rows[1:]
		}
		for _, row := range rows {
			member, err := structureMember(row)
			if err != nil {
				return err
			}
			st.Members = append(st.Members, member)
		}
	}
	x.emit(x.camelID, st)
	return nil
}

// structureMember reads a row whose first cell names the field twice: the
// projected name and the name the script runtime exposes.
func structureMember(row []*html.Node) (notation.DescribedKeyType, error) {
	var member notation.DescribedKeyType
	if len(row) < 3 {
		return member, errors.Errorf("%w: structure member row has %d cells", ErrStructure, len(row))
	}
	names := dombox.FindAll(row[0], dombox.ByAtom(atom.Strong))
	if len(names) != 2 {
		return member, errors.Errorf("%w: structure member row has %d names", ErrStructure, len(names))
	}
	container := dombox.FirstElementChild(row[1])
	if container == nil {
		container = row[1]
	}
	ref, err := ParseTypeNotation(container, true)
	if err != nil {
		return member, err
	}
	member.Key = strings.TrimSpace(dombox.TextContent(names[1]))
	member.Type = ref
	member.Description = dombox.Inline(dombox.TextContent(row[2]))
	return member, nil
}

func (x *extraction) iface() error {
	snippets, err := x.doc.snippets()
	if err != nil {
		return err
	}
	_, typeParams := GenericParameters(x.name)
	it := &notation.Interface{
		Info:           x.info(),
		Interfaces:     x.inheritance(snippets),
		TypeParameters: typeParams,
	}

	sections := dombox.PartitionByHeading(x.doc.main, 1)
	if members := sections.Subsection("Members"); members != nil {
		it.Members.Methods = linkTargets(members.Subsection("Methods").FirstChild(atom.Table))
		it.Members.Properties = linkTargets(members.Subsection("Properties").FirstChild(atom.Table))
	}
	x.emit(x.camelID, it)
	return nil
}
