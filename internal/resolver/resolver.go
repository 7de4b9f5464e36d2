package resolver

import (
	"strings"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
)

// Resolver renders documentation type spellings as declaration types.
type Resolver interface {
	// Type renders one type expression.
	Type(name string) string
	// Placeholder renders the type of an undocumented reflected member.
	Placeholder(placeholder string) string
	// Signature applies the signature rules to one overload of method and
	// renders its types.
	Signature(method string, sig decl.Signature) Signature
}

// Rule tries to render one type expression. resolve renders nested
// expressions through the whole chain.
type Rule interface {
	Name() string
	Try(name string, resolve func(string) string) (string, bool)
}

// SignatureRule rewrites one overload before its types are rendered.
type SignatureRule interface {
	Name() string
	Apply(method string, sig *decl.Signature) bool
}

type resolverImpl struct {
	rules          []Rule
	signatureRules []SignatureRule
}

// New builds a resolver from type rules in priority order and signature
// rules in application order. Rules implementing ArityAware receive arity.
func New(arity Arity, rules []Rule, signatureRules []SignatureRule) Resolver {
	for _, rule := range rules {
		if aware, ok := rule.(ArityAware); ok {
			aware.SetArity(arity)
		}
	}
	return &resolverImpl{rules: rules, signatureRules: signatureRules}
}

// NewDefault builds a resolver with the built-in rules.
func NewDefault(arity Arity) Resolver {
	return New(arity, DefaultRules(), DefaultSignatureRules())
}

func (r *resolverImpl) Type(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return anyType
	}
	for _, rule := range r.rules {
		if out, ok := rule.Try(name, r.Type); ok {
			return out
		}
	}
	return name
}

func (r *resolverImpl) Placeholder(placeholder string) string {
	if typ, ok := placeholderTypes[placeholder]; ok {
		return typ
	}
	return anyType
}

func (r *resolverImpl) Signature(method string, sig decl.Signature) Signature {
	sig = cloneSignature(sig)
	for _, rule := range r.signatureRules {
		rule.Apply(method, &sig)
	}

	out := Signature{
		Description:    sig.Description,
		TypeParameters: sig.TypeParameters,
		Parameters:     make([]Parameter, 0, len(sig.Parameters)),
	}
	for _, p := range sig.Parameters {
		out.Parameters = append(out.Parameters, Parameter{Name: p.Name, Type: r.Type(p.Type), Description: p.Description})
	}

	switch ret := sig.Return; {
	case ret == nil:
		out.Return = voidType
	case ret.Instance:
		out.Constructor = true
	case ret.Members != nil:
		out.Return = r.literal(ret.Members)
		out.ReturnDescription = ret.Description
	default:
		out.Return = r.Type(ret.Type)
		out.ReturnDescription = ret.Description
	}
	return out
}

// literal renders an anonymous structural type.
func (r *resolverImpl) literal(members []decl.Field) string {
	var b strings.Builder
	b.WriteString("{ ")
	for _, m := range members {
		b.WriteString(m.Name)
		b.WriteString(": ")
		b.WriteString(r.Type(m.Type))
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

func cloneSignature(sig decl.Signature) decl.Signature {
	sig.Parameters = append([]decl.Field(nil), sig.Parameters...)
	if sig.Return != nil {
		ret := *sig.Return
		if ret.Members != nil {
			ret.Members = append([]decl.Field{}, ret.Members...)
		}
		sig.Return = &ret
	}
	return sig
}
