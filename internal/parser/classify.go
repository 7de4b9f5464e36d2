package parser

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DocumentKind is the classification of one documentation page.
type DocumentKind int

const (
	DocUnknown DocumentKind = iota
	DocClass
	DocAttribute
	DocEnumeration
	DocNamespace
	DocProperty
	DocDelegate
	DocConstructor
	DocMethod
	DocEvent
	DocStructure
	DocInterface
	// DocMeta covers overview pages listing several members.
	DocMeta
)

var documentKindNames = map[DocumentKind]string{
	DocUnknown:     "unknown",
	DocClass:       "class",
	DocAttribute:   "attribute",
	DocEnumeration: "enumeration",
	DocNamespace:   "namespace",
	DocProperty:    "property",
	DocDelegate:    "delegate",
	DocConstructor: "constructor",
	DocMethod:      "method",
	DocEvent:       "event",
	DocStructure:   "structure",
	DocInterface:   "interface",
	DocMeta:        "meta",
}

func (k DocumentKind) String() string {
	if name, ok := documentKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// TitleRule classifies a page by the suffix of its displayed title.
type TitleRule struct {
	Suffix string
	Kind   DocumentKind
}

// DefaultTitleRules returns the title suffixes of the documentation template.
func DefaultTitleRules() []TitleRule {
	return []TitleRule{
		{Suffix: " class", Kind: DocClass},
		{Suffix: " attribute", Kind: DocAttribute},
		{Suffix: " enumeration", Kind: DocEnumeration},
		{Suffix: " namespace", Kind: DocNamespace},
		{Suffix: " property", Kind: DocProperty},
		{Suffix: " delegate", Kind: DocDelegate},
		{Suffix: " constructor", Kind: DocConstructor},
		{Suffix: " method", Kind: DocMethod},
		{Suffix: " event", Kind: DocEvent},
		{Suffix: " structure", Kind: DocStructure},
		{Suffix: " interface", Kind: DocInterface},
		{Suffix: " constructors", Kind: DocMeta},
		{Suffix: " methods", Kind: DocMeta},
		{Suffix: " properties", Kind: DocMeta},
		{Suffix: " events", Kind: DocMeta},
		{Suffix: " members", Kind: DocMeta},
		{Suffix: " fields", Kind: DocMeta},
	}
}

const removedContentTitle = "Content Removed"

// Classify returns the kind of a page title and the title with the kind
// suffix removed.
func Classify(rules []TitleRule, title string) (DocumentKind, string, error) {
	title = strings.TrimSpace(title)
	if title == removedContentTitle {
		return DocMeta, title, nil
	}
	for _, rule := range rules {
		if strings.HasSuffix(title, rule.Suffix) {
			return rule.Kind, strings.TrimSpace(strings.TrimSuffix(title, rule.Suffix)), nil
		}
	}
	return DocUnknown, title, errors.Errorf("%w: %q", ErrUnrecognizedTitle, title)
}

// GenericParameters splits "TypedEventHandler<TSender, TResult>" into its
// base name and parameter names.
func GenericParameters(name string) (string, []string) {
	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		return name, nil
	}
	return strings.TrimSpace(name[:open]), SplitInterfaceList(name[open+1 : len(name)-1])
}
