// Package notation defines the typed records extracted from documentation
// pages and the Reference Corpus that holds them.
package notation

// Kind discriminates Notation variants.
type Kind string

const (
	KindClass       Kind = "class"
	KindAttribute   Kind = "attribute"
	KindEnumeration Kind = "enumeration"
	KindNamespace   Kind = "namespace"
	KindInterface   Kind = "interface"
	KindStructure   Kind = "structure"
	KindDelegate    Kind = "delegate"
	KindFunction    Kind = "function"
	KindEvent       Kind = "event"
	KindProperty    Kind = "property"
)

// Notation is one documented member. The concrete types below are the only
// implementations.
type Notation interface {
	Kind() Kind
	Base() *Info
}

// Info carries the fields every variant has.
type Info struct {
	Description string `json:"description"`
	// CamelID is the dotted identifier as spelled by the documentation.
	CamelID string `json:"camelId"`
}

func (i *Info) Base() *Info { return i }

// Class documents a runtime class or an attribute class.
type Class struct {
	Info
	Attribute  bool     `json:"-"`
	Interfaces []string `json:"interfaces,omitempty"`
}

func (c *Class) Kind() Kind {
	if c.Attribute {
		return KindAttribute
	}
	return KindClass
}

// Enumeration documents an enum; each member also has its own Property
// notation keyed below the enumeration.
type Enumeration struct {
	Info
	Members []string `json:"members,omitempty"`
}

func (*Enumeration) Kind() Kind { return KindEnumeration }

// NamespaceMembers lists the structural types a namespace owns. They have no
// runtime presence and are attached to the namespace at merge time.
type NamespaceMembers struct {
	Structures []string `json:"structures,omitempty"`
	Delegates  []string `json:"delegates,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
}

// Namespace documents a namespace page.
type Namespace struct {
	Info
	Members NamespaceMembers `json:"members"`
}

func (*Namespace) Kind() Kind { return KindNamespace }

// InterfaceMembers holds member identifiers, resolved later from the corpus.
type InterfaceMembers struct {
	Methods    []string `json:"methods,omitempty"`
	Properties []string `json:"properties,omitempty"`
}

// Interface documents an interface page.
type Interface struct {
	Info
	Interfaces     []string         `json:"interfaces,omitempty"`
	TypeParameters []string         `json:"typeParameters,omitempty"`
	Members        InterfaceMembers `json:"members"`
	// Extensions names sibling interfaces (IFoo2, IFoo3, ...) whose members
	// fold into this one.
	Extensions []string `json:"extensions,omitempty"`
}

func (*Interface) Kind() Kind { return KindInterface }

// Function holds every documented overload of a method or constructor.
type Function struct {
	Info
	Signatures []Signature `json:"signatures"`
}

func (*Function) Kind() Kind { return KindFunction }

// Delegate documents a callback type.
type Delegate struct {
	Info
	TypeParameters []string  `json:"typeParameters,omitempty"`
	Signature      Signature `json:"signature"`
}

func (*Delegate) Kind() Kind { return KindDelegate }

// Event documents an event; Delegate is the handler type.
type Event struct {
	Info
	Delegate TypeReference `json:"delegate"`
	// EventName is the name passed to addEventListener.
	EventName string `json:"eventName,omitempty"`
}

func (*Event) Kind() Kind { return KindEvent }

// Property documents a property or an enumeration member.
type Property struct {
	Info
	Type TypeReference `json:"name"`
}

func (*Property) Kind() Kind { return KindProperty }

// Structure documents a value structure.
type Structure struct {
	Info
	Members []DescribedKeyType `json:"members"`
}

func (*Structure) Kind() Kind { return KindStructure }

// DescribedKeyType is a named, typed and described slot.
type DescribedKeyType struct {
	Key         string        `json:"key"`
	Type        TypeReference `json:"type"`
	Description string        `json:"description,omitempty"`
}

// CodeSnippet is an example written in one language.
type CodeSnippet struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Signature is one overload of a function or delegate.
type Signature struct {
	Description    string             `json:"description"`
	TypeParameters []string           `json:"typeParameters,omitempty"`
	Parameters     []DescribedKeyType `json:"parameters"`
	Return         Return             `json:"return"`
	CodeSnippets   []CodeSnippet      `json:"codeSnippets,omitempty"`
}

// SnippetFor returns the code of the first snippet written in language.
func SnippetFor(snippets []CodeSnippet, language string) (string, bool) {
	for _, cs := range snippets {
		if cs.Language == language {
			return cs.Code, true
		}
	}
	return "", false
}

// ReturnKind discriminates Return values.
type ReturnKind int

const (
	ReturnNone ReturnKind = iota
	// ReturnInstance marks constructors.
	ReturnInstance
	ReturnType
	// ReturnLiteral is an anonymous structure built from output parameters.
	ReturnLiteral
)

// Return describes what a signature produces.
type Return struct {
	Kind        ReturnKind
	Type        TypeReference
	Description string
	Members     []DescribedKeyType
}

// UnknownType is the sentinel for a documented return without a type.
const UnknownType = "unknown"
