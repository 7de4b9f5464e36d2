package resolver

const (
	anyType  = "any"
	voidType = "void"
)

// Signature is one overload with every type rendered.
type Signature struct {
	Description    string
	TypeParameters []string
	Parameters     []Parameter
	// Return is empty for constructors.
	Return            string
	ReturnDescription string
	Constructor       bool
}

// Parameter is one rendered parameter.
type Parameter struct {
	Name        string
	Type        string
	Description string
}

// Arity maps canonical generic type names to their type-parameter count.
type Arity map[string]int

// ArityAware rules consume the generic arity table.
type ArityAware interface {
	SetArity(Arity)
}
