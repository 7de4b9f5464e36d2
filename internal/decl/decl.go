// Package decl defines the merged declaration tree: reflection structure
// annotated with documentation, ready for emission.
package decl

import (
	"bytes"
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"
)

// Kind discriminates Decl variants.
type Kind string

const (
	KindNamespace        Kind = "namespace"
	KindEnum             Kind = "enum"
	KindClass            Kind = "class"
	KindFunction         Kind = "function"
	KindEvent            Kind = "event"
	KindProperty         Kind = "property"
	KindValue            Kind = "value"
	KindInterfaceLiteral Kind = "interfaceLiteral"
	KindDelegate         Kind = "delegate"
	KindInterface        Kind = "interface"
)

// Decl is one named node of the merged tree. The types in this package are
// the only implementations.
type Decl interface {
	Kind() Kind
	DeclName() string
}

// List is an ordered member list. It encodes each member with its kind.
type List []Decl

// Lookup returns the member called name.
func (l List) Lookup(name string) (Decl, bool) {
	for _, d := range l {
		if d.DeclName() == name {
			return d, true
		}
	}
	return nil, false
}

func (l List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := marshal(d)
		if err != nil {
			return nil, errors.Errorf("%s %s: %w", d.Kind(), d.DeclName(), err)
		}
		kind, err := marshal(d.Kind())
		if err != nil {
			return nil, err
		}
		buf.WriteString(`{"kind":`)
		buf.Write(kind)
		if len(body) > 2 {
			buf.WriteByte(',')
			buf.Write(body[1:])
		} else {
			buf.WriteByte('}')
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Namespace is a reflected namespace object, with the structural types it
// owns appended after its reflected members.
type Namespace struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Description string `json:"description,omitempty"`
	Members     List   `json:"members"`
}

func (*Namespace) Kind() Kind         { return KindNamespace }
func (n *Namespace) DeclName() string { return n.Name }

// Enum is a namespace object the documentation calls an enumeration.
type Enum struct {
	Name        string       `json:"name"`
	FullName    string       `json:"fullName"`
	Description string       `json:"description,omitempty"`
	Members     []EnumMember `json:"members"`
}

// EnumMember is one runtime enum value.
type EnumMember struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (*Enum) Kind() Kind         { return KindEnum }
func (e *Enum) DeclName() string { return e.Name }

// BaseArray is the base of classes projected as arrays.
const BaseArray = "Array"

// Class is a reflected constructor.
type Class struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Description string `json:"description,omitempty"`
	Attribute   bool   `json:"attribute,omitempty"`
	// Extends is the qualified base class, "Array" for vector classes, or
	// empty.
	Extends    string   `json:"extends,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	// Constructor is nil for classes that cannot be constructed.
	Constructor       *Function `json:"constructor,omitempty"`
	Static            List      `json:"static"`
	Prototype         List      `json:"prototype"`
	EventTarget       bool      `json:"eventTarget,omitempty"`
	StaticEventTarget bool      `json:"staticEventTarget,omitempty"`
}

func (*Class) Kind() Kind         { return KindClass }
func (c *Class) DeclName() string { return c.Name }

// Constructible reports whether a constructor was documented.
func (c *Class) Constructible() bool {
	return c.Constructor != nil && len(c.Constructor.Signatures) > 0
}

// Function holds every documented overload of a method.
type Function struct {
	Name       string      `json:"name"`
	Signatures []Signature `json:"signatures"`
}

func (*Function) Kind() Kind         { return KindFunction }
func (f *Function) DeclName() string { return f.Name }

// Signature is one overload. Types are qualified documentation spellings.
type Signature struct {
	Description    string   `json:"description,omitempty"`
	TypeParameters []string `json:"typeParameters,omitempty"`
	Parameters     []Field  `json:"parameters"`
	Return         *Return  `json:"return,omitempty"`
}

// Return is a signature result. A nil *Return means the call returns
// nothing.
type Return struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	// Instance marks constructors.
	Instance bool `json:"instance,omitempty"`
	// Members is set for anonymous structural results.
	Members []Field `json:"members,omitempty"`
}

// Field is a named, typed and described slot.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Event is an on-property that dispatches to a delegate.
type Event struct {
	Name        string `json:"name"`
	EventName   string `json:"eventName"`
	Description string `json:"description,omitempty"`
	Delegate    string `json:"delegate"`
}

func (*Event) Kind() Kind         { return KindEvent }
func (e *Event) DeclName() string { return e.Name }

// Property is a documented value member.
type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func (*Property) Kind() Kind         { return KindProperty }
func (p *Property) DeclName() string { return p.Name }

// Value is a reflected member with no documentation.
type Value struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

func (*Value) Kind() Kind         { return KindValue }
func (v *Value) DeclName() string { return v.Name }

// InterfaceLiteral is a value structure.
type InterfaceLiteral struct {
	Name        string  `json:"name"`
	FullName    string  `json:"fullName"`
	Description string  `json:"description,omitempty"`
	Members     []Field `json:"members"`
}

func (*InterfaceLiteral) Kind() Kind         { return KindInterfaceLiteral }
func (l *InterfaceLiteral) DeclName() string { return l.Name }

// Delegate is a callback type.
type Delegate struct {
	Name           string    `json:"name"`
	FullName       string    `json:"fullName"`
	Description    string    `json:"description,omitempty"`
	TypeParameters []string  `json:"typeParameters,omitempty"`
	Signature      Signature `json:"signature"`
}

func (*Delegate) Kind() Kind         { return KindDelegate }
func (d *Delegate) DeclName() string { return d.Name }

// Interface is an expanded interface with its extension members folded in.
type Interface struct {
	Name           string      `json:"name"`
	FullName       string      `json:"fullName"`
	Description    string      `json:"description,omitempty"`
	TypeParameters []string    `json:"typeParameters,omitempty"`
	Extends        []string    `json:"extends,omitempty"`
	Methods        []*Function `json:"methods"`
	Properties     []*Property `json:"properties"`
}

func (*Interface) Kind() Kind         { return KindInterface }
func (i *Interface) DeclName() string { return i.Name }

// Dump writes root as indented JSON.
func Dump(w io.Writer, root *Namespace) error {
	data, err := List{root}.MarshalJSON()
	if err != nil {
		return errors.Errorf("encode merged tree: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data[1:len(data)-1], "", "\t"); err != nil {
		return errors.WithStack(err)
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return errors.Errorf("write merged tree: %w", err)
	}
	return nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
