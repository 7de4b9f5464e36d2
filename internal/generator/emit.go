package generator

import (
	"strconv"
	"strings"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
	"github.com/seitarof/gen-uwp-dts/internal/resolver"
)

const (
	indentUnit          = "    "
	addEventListener    = "addEventListener"
	removeEventListener = "removeEventListener"
	indexOf             = "indexOf"
)

// vectorInterfaces give the element type of classes projected as arrays.
var vectorInterfaces = map[string]bool{
	"IVectorView": true,
	"IVector":     true,
}

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true,
}

// emitter writes declarations with "\n" line endings.
type emitter struct {
	b     strings.Builder
	r     resolver.Resolver
	depth int
}

func newEmitter(r resolver.Resolver, depth int) *emitter {
	return &emitter{r: r, depth: depth}
}

func (e *emitter) String() string {
	return e.b.String()
}

func (e *emitter) line(parts ...string) {
	e.b.WriteString(strings.Repeat(indentUnit, e.depth))
	for _, p := range parts {
		e.b.WriteString(p)
	}
	e.b.WriteByte('\n')
}

func (e *emitter) comment(description string) {
	if description == "" {
		return
	}
	e.line(docComment(description))
}

func (e *emitter) open(parts ...string) {
	e.line(append(parts, " {")...)
	e.depth++
}

func (e *emitter) close() {
	e.depth--
	e.line("}")
}

// docComment renders a one-line documentation comment.
func docComment(description string) string {
	return "/** " + strings.ReplaceAll(description, "*/", "*\\/") + " */"
}

func (e *emitter) namespaceMember(d decl.Decl) {
	switch d := d.(type) {
	case *decl.Namespace:
		e.comment(d.Description)
		e.open("namespace ", d.Name)
		for _, m := range d.Members {
			e.namespaceMember(m)
		}
		e.close()
	case *decl.Enum:
		e.enum(d)
	case *decl.Class:
		e.class(d)
	case *decl.InterfaceLiteral:
		e.interfaceLiteral(d)
	case *decl.Delegate:
		e.delegate(d)
	case *decl.Interface:
		e.iface(d)
	case *decl.Function:
		e.function("function ", d)
	case *decl.Property:
		e.comment(d.Description)
		e.line("var ", d.Name, ": ", e.r.Type(d.Type), ";")
	case *decl.Event:
		e.comment(d.Description)
		e.line("var ", d.Name, ": ", e.r.Type(d.Delegate), ";")
	case *decl.Value:
		e.line("var ", d.Name, ": ", e.r.Placeholder(d.Placeholder), ";")
	}
}

func (e *emitter) enum(d *decl.Enum) {
	e.comment(d.Description)
	e.open("enum ", d.Name)
	for _, m := range d.Members {
		e.comment(m.Description)
		e.line(m.Name, ",")
	}
	e.close()
}

func (e *emitter) class(d *decl.Class) {
	e.comment(d.Description)

	heading := []string{"class ", d.Name}
	elem := ""
	switch d.Extends {
	case "":
	case decl.BaseArray:
		elem = e.vectorElement(d.Interfaces)
		heading = append(heading, " extends Array<", elem, ">")
	default:
		heading = append(heading, " extends ", e.r.Type(d.Extends))
	}
	var implements []string
	for _, iface := range d.Interfaces {
		if elem != "" && isVector(iface) {
			continue
		}
		implements = append(implements, e.r.Type(iface))
	}
	if len(implements) > 0 {
		heading = append(heading, " implements ", strings.Join(implements, ", "))
	}
	e.open(heading...)

	if d.Constructible() {
		e.function("", &decl.Function{Name: "constructor", Signatures: d.Constructor.Signatures})
	} else if len(d.Static) > 0 || len(d.Prototype) > 0 {
		e.line("private constructor();")
	}

	for _, m := range d.Static {
		e.classMember("static ", m)
	}
	if d.StaticEventTarget {
		e.listeners("static ", d.Static)
	}
	for _, m := range d.Prototype {
		if elem != "" && m.DeclName() == indexOf {
			continue
		}
		e.classMember("", m)
	}
	if d.EventTarget {
		e.listeners("", d.Prototype)
	}
	if elem != "" {
		e.line("indexOf(value: ", elem, ", ...extra: any[]): { index: number; returnValue: boolean; }; /* overload */")
		e.line("indexOf(searchElement: ", elem, ", fromIndex?: number): number; /* overload */")
	}
	e.close()
}

// vectorElement renders the element type of the first vector interface, or
// any.
func (e *emitter) vectorElement(interfaces []string) string {
	for _, iface := range interfaces {
		if !isVector(iface) {
			continue
		}
		if _, args, ok := resolver.SplitGeneric(iface); ok && len(args) == 1 {
			return e.r.Type(args[0])
		}
	}
	return "any"
}

func isVector(iface string) bool {
	base, _, _ := resolver.SplitGeneric(iface)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	return vectorInterfaces[base]
}

func (e *emitter) classMember(prefix string, d decl.Decl) {
	switch d := d.(type) {
	case *decl.Function:
		e.function(prefix, d)
	case *decl.Property:
		e.comment(d.Description)
		e.line(prefix, memberKey(d.Name), ": ", e.r.Type(d.Type), ";")
	case *decl.Event:
		e.comment(d.Description)
		e.line(prefix, memberKey(d.Name), ": ", e.r.Type(d.Delegate), ";")
	case *decl.Value:
		e.line(prefix, memberKey(d.Name), ": ", e.r.Placeholder(d.Placeholder), ";")
	default:
		// Nested namespaces and classes cannot live in a class body.
		e.line(prefix, memberKey(d.DeclName()), ": any;")
	}
}

// listeners declares typed listener methods for every event in members.
func (e *emitter) listeners(prefix string, members decl.List) {
	for _, name := range []string{addEventListener, removeEventListener} {
		for _, m := range members {
			ev, ok := m.(*decl.Event)
			if !ok {
				continue
			}
			e.line(prefix, name, "(type: ", strconv.Quote(ev.EventName), ", listener: ", e.r.Type(ev.Delegate), "): void;")
		}
		e.line(prefix, name, "(type: string, listener: (ev: any) => void): void;")
	}
}

// function writes one declaration per overload, each after its own
// description.
func (e *emitter) function(prefix string, d *decl.Function) {
	for _, sig := range d.Signatures {
		s := e.r.Signature(d.Name, sig)
		e.comment(s.Description)
		name := d.Name
		if !s.Constructor {
			name = memberKey(name)
		}
		head := prefix + name + typeParameters(s.TypeParameters) + "(" + parameters(s.Parameters) + ")"
		if s.Constructor {
			e.line(head, ";")
			continue
		}
		e.line(head, ": ", s.Return, ";")
	}
}

func (e *emitter) interfaceLiteral(d *decl.InterfaceLiteral) {
	e.comment(d.Description)
	if len(d.Members) == 0 {
		e.line("type ", d.Name, " = any;")
		return
	}
	e.open("interface ", d.Name)
	for _, m := range d.Members {
		e.comment(m.Description)
		e.line(memberKey(m.Name), ": ", e.r.Type(m.Type), ";")
	}
	e.close()
}

func (e *emitter) delegate(d *decl.Delegate) {
	e.comment(d.Description)
	s := e.r.Signature(d.Name, d.Signature)
	e.line("type ", d.Name, typeParameters(d.TypeParameters), " = (", parameters(s.Parameters), ") => ", s.Return, ";")
}

func (e *emitter) iface(d *decl.Interface) {
	e.comment(d.Description)
	heading := []string{"interface ", d.Name, typeParameters(d.TypeParameters)}
	if len(d.Extends) > 0 {
		extends := make([]string, len(d.Extends))
		for i, base := range d.Extends {
			extends[i] = e.r.Type(base)
		}
		heading = append(heading, " extends ", strings.Join(extends, ", "))
	}
	e.open(heading...)
	for _, m := range d.Methods {
		e.function("", m)
	}
	for _, p := range d.Properties {
		e.comment(p.Description)
		e.line(memberKey(p.Name), ": ", e.r.Type(p.Type), ";")
	}
	e.close()
}

func typeParameters(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

func parameters(params []resolver.Parameter) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = parameterName(p.Name) + ": " + p.Type
	}
	return strings.Join(out, ", ")
}

// parameterName keeps identifier characters and renames reserved words.
func parameterName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '_' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, name)
	if name == "" {
		return "arg"
	}
	if reservedWords[name] || name[0] >= '0' && name[0] <= '9' {
		return name + "_"
	}
	return name
}

// memberKey quotes member names that are not plain identifiers.
func memberKey(name string) string {
	for i, r := range name {
		if r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return strconv.Quote(name)
	}
	if name == "" {
		return `""`
	}
	return name
}
