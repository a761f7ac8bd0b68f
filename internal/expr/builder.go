package expr

import (
	"strings"

	"github.com/roach88/exprtree/internal/operator"
)

// Builder combines operands under operators looked up by name.
type Builder struct {
	registry *operator.Registry
}

// NewBuilder creates a builder bound to registry. A nil registry means
// operator.Global().
func NewBuilder(registry *operator.Registry) *Builder {
	if registry == nil {
		registry = operator.Global()
	}
	return &Builder{registry: registry}
}

var defaultBuilder = NewBuilder(nil)

// Default returns the builder bound to the global registry.
func Default() *Builder { return defaultBuilder }

// Registry returns the registry the builder looks operators up in.
func (b *Builder) Registry() *operator.Registry { return b.registry }

// Apply converts operands and combines them under the operator registered as
// name. Extra operands are folded left to right.
func (b *Builder) Apply(name string, operands ...any) (Operand, error) {
	op, err := b.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	xs, err := ConvertAll(operands...)
	if err != nil {
		return nil, err
	}
	return Combine(op, xs...)
}

// Op is like Apply but takes an identifier-style name in which underscores
// stand for spaces: Op("subset_of", a, b) applies "subset of".
func (b *Builder) Op(attr string, operands ...any) (Operand, error) {
	return b.Apply(OperatorName(attr), operands...)
}

// OperatorName maps an identifier-style name to an operator name.
func OperatorName(attr string) string {
	return strings.ReplaceAll(attr, "_", " ")
}

// Must panics if err is non-nil and returns x otherwise.
//
//	sum := expr.Must(expr.Add(expr.X, expr.Y))
func Must(x Operand, err error) Operand {
	if err != nil {
		panic(err)
	}
	return x
}

// Apply combines operands under the named operator of the global registry.
func Apply(name string, operands ...any) (Operand, error) {
	return defaultBuilder.Apply(name, operands...)
}

// Op is Builder.Op on the global registry.
func Op(attr string, operands ...any) (Operand, error) {
	return defaultBuilder.Op(attr, operands...)
}

func apply(op *operator.Operator, operands []any) (Operand, error) {
	xs, err := ConvertAll(operands...)
	if err != nil {
		return nil, err
	}
	return Combine(op, xs...)
}

// Arithmetic.

func Add(operands ...any) (Operand, error)      { return apply(operator.Add, operands) }
func Sub(operands ...any) (Operand, error)      { return apply(operator.Sub, operands) }
func Mul(operands ...any) (Operand, error)      { return apply(operator.Mul, operands) }
func Div(operands ...any) (Operand, error)      { return apply(operator.Div, operands) }
func FloorDiv(operands ...any) (Operand, error) { return apply(operator.FloorDiv, operands) }
func Mod(operands ...any) (Operand, error)      { return apply(operator.Mod, operands) }
func MatMul(operands ...any) (Operand, error)   { return apply(operator.MatMul, operands) }
func Pow(operands ...any) (Operand, error)      { return apply(operator.Pow, operands) }
func Root(operands ...any) (Operand, error)     { return apply(operator.Root, operands) }
func Minus(x any) (Operand, error)              { return apply(operator.Minus, []any{x}) }
func Abs(x any) (Operand, error)                { return apply(operator.Abs, []any{x}) }

// Relations.

func Eq(operands ...any) (Operand, error) { return apply(operator.Eq, operands) }
func Ne(operands ...any) (Operand, error) { return apply(operator.Ne, operands) }
func Lt(operands ...any) (Operand, error) { return apply(operator.Lt, operands) }
func Le(operands ...any) (Operand, error) { return apply(operator.Le, operands) }
func Gt(operands ...any) (Operand, error) { return apply(operator.Gt, operands) }
func Ge(operands ...any) (Operand, error) { return apply(operator.Ge, operands) }

// Boolean connectives.

func Not(x any) (Operand, error)           { return apply(operator.Neg, []any{x}) }
func And(operands ...any) (Operand, error) { return apply(operator.And, operands) }
func Or(operands ...any) (Operand, error)  { return apply(operator.Or, operands) }
func Xor(operands ...any) (Operand, error) { return apply(operator.Xor, operands) }
