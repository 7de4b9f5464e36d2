package resolver

import (
	"strings"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
)

const (
	arrayPrefix  = "array of "
	asyncSuffix  = "Async"
	outMarker    = "[out]"
	returnValue  = "returnValue"
	foundationNS = "Windows.Foundation."
)

// DefaultRules returns built-in type rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		&ArrayOfRule{},
		&GenericRule{},
		&PrimitiveRule{},
		&ArityRule{},
	}
}

// DefaultSignatureRules returns built-in signature rules in application
// order. Output parameters are folded before async results are wrapped.
func DefaultSignatureRules() []SignatureRule {
	return []SignatureRule{
		&OutParamRule{},
		&AsyncRule{},
	}
}

// ArrayOfRule: "array of T" -> T[].
type ArrayOfRule struct{}

func (r *ArrayOfRule) Name() string { return "array-of" }

func (r *ArrayOfRule) Try(name string, resolve func(string) string) (string, bool) {
	if !strings.HasPrefix(name, arrayPrefix) {
		return "", false
	}
	elem := resolve(strings.TrimPrefix(name, arrayPrefix))
	if strings.ContainsAny(elem, " |") {
		elem = "(" + elem + ")"
	}
	return elem + "[]", true
}

// GenericRule renders the arguments of an instantiated generic type.
type GenericRule struct{}

func (r *GenericRule) Name() string { return "generic" }

func (r *GenericRule) Try(name string, resolve func(string) string) (string, bool) {
	base, args, ok := SplitGeneric(name)
	if !ok {
		return "", false
	}
	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = resolve(arg)
	}
	return base + "<" + strings.Join(rendered, ", ") + ">", true
}

var primitiveTypes = map[string]string{
	"Number":  "number",
	"Int16":   "number",
	"Int32":   "number",
	"Int64":   "number",
	"UInt8":   "number",
	"UInt16":  "number",
	"UInt32":  "number",
	"UInt64":  "number",
	"Single":  "number",
	"Double":  "number",
	"String":  "string",
	"Char16":  "string",
	"Guid":    "string",
	"Boolean": "boolean",
	"Object":  anyType,
	"unknown": anyType,
	"Void":    voidType,

	"Windows.Foundation.DateTime": "Date",
	"Windows.Foundation.TimeSpan": "number",
	"Windows.Foundation.HResult":  "number",
}

// placeholderTypes renders reflected placeholders; anything else is any.
var placeholderTypes = map[string]string{
	"function": "Function",
	"number":   "number",
	"string":   "string",
	"boolean":  "boolean",
}

// PrimitiveRule: documentation primitive names -> declaration primitives.
type PrimitiveRule struct{}

func (r *PrimitiveRule) Name() string { return "primitive" }

func (r *PrimitiveRule) Try(name string, _ func(string) string) (string, bool) {
	typ, ok := primitiveTypes[name]
	return typ, ok
}

// ArityRule backfills unresolved type arguments for generic types used
// without any.
type ArityRule struct {
	arity Arity
}

func (r *ArityRule) Name() string { return "arity" }

func (r *ArityRule) SetArity(a Arity) { r.arity = a }

func (r *ArityRule) Try(name string, _ func(string) string) (string, bool) {
	n := r.arity[name]
	if n <= 0 {
		return "", false
	}
	args := make([]string, n)
	for i := range args {
		args[i] = anyType
	}
	return name + "<" + strings.Join(args, ", ") + ">", true
}

// OutParamRule moves output parameters into the result. A single output
// parameter of a call that returns nothing becomes the result; otherwise all
// output parameters and the original result, under returnValue, form one
// anonymous structural result.
type OutParamRule struct{}

func (r *OutParamRule) Name() string { return "out-param" }

func (r *OutParamRule) Apply(_ string, sig *decl.Signature) bool {
	if sig.Return != nil && sig.Return.Instance {
		return false
	}
	var in, out []decl.Field
	for _, p := range sig.Parameters {
		if name, ok := outParameter(p.Name); ok {
			p.Name = name
			out = append(out, p)
			continue
		}
		in = append(in, p)
	}
	if len(out) == 0 {
		return false
	}

	sig.Parameters = in
	if len(out) == 1 && sig.Return == nil {
		sig.Return = &decl.Return{Type: out[0].Type, Description: out[0].Description}
		return true
	}
	ret := &decl.Return{Members: out}
	if sig.Return != nil {
		ret.Description = sig.Return.Description
		ret.Members = append(ret.Members, decl.Field{
			Name:        returnValue,
			Type:        sig.Return.Type,
			Description: sig.Return.Description,
		})
	}
	sig.Return = ret
	return true
}

func outParameter(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if !strings.HasSuffix(trimmed, outMarker) {
		return name, false
	}
	return strings.TrimSpace(strings.TrimSuffix(trimmed, outMarker)), true
}

// AsyncRule wraps the result of methods named "...Async" in a promise type.
// IAsyncAction and the progress variants are renamed to their promise
// counterparts; IAsyncOperation keeps its argument or gets an unresolved
// one; any other result T becomes IPromise<T>.
type AsyncRule struct{}

func (r *AsyncRule) Name() string { return "async" }

func (r *AsyncRule) Apply(method string, sig *decl.Signature) bool {
	if !strings.HasSuffix(method, asyncSuffix) {
		return false
	}
	ret := sig.Return
	if ret == nil || ret.Instance || ret.Members != nil || ret.Type == "" {
		return false
	}

	base, args, generic := SplitGeneric(ret.Type)
	short := lastSegment(base)
	argList := ""
	if generic {
		argList = "<" + strings.Join(args, ", ") + ">"
	}

	switch {
	case short == "IAsyncOperation":
		if !generic {
			argList = "<" + anyType + ">"
		}
		ret.Type = foundationNS + "IPromiseWithIAsyncOperation" + argList
	case strings.HasPrefix(short, "IAsyncAction"), strings.HasPrefix(short, "IAsyncOperation"):
		ret.Type = foundationNS + "IPromiseWith" + short + argList
	default:
		ret.Type = foundationNS + "IPromise<" + ret.Type + ">"
	}
	return true
}

// SplitGeneric splits "A<B, C<D>>" into "A" and its top-level arguments.
func SplitGeneric(name string) (string, []string, bool) {
	open := strings.IndexByte(name, '<')
	if open <= 0 || !strings.HasSuffix(name, ">") {
		return name, nil, false
	}
	inner := name[open+1 : len(name)-1]
	var args []string
	depth, start := 0, 0
	for i, ch := range inner {
		switch ch {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return strings.TrimSpace(name[:open]), args, true
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
