package expr

import (
	"github.com/roach88/exprtree/internal/operator"
)

// Kind identifies the variant of an Operand.
type Kind int

const (
	KindAtom Kind = iota
	KindAtomicOperation
	KindCompoundOperation
)

// String returns the short variant name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atomic"
	case KindAtomicOperation:
		return "atomic operation"
	case KindCompoundOperation:
		return "compound operation"
	default:
		return "unknown"
	}
}

// Operand is a node of an expression tree.
//
// This is a sealed interface - only types in this package implement it.
// Switch on the concrete type (*AtomicOperand, *AtomicOperation,
// *CompoundOperation) or on Kind.
type Operand interface {
	Kind() Kind

	// Operator returns the node's operator, nil for atoms.
	Operator() *operator.Operator

	// Operands returns the node's immediate operands, nil for atoms.
	Operands() []Operand

	// Const reports whether the node is constant-foldable.
	Const() bool

	// EvaluatesToBool reports whether the node yields a truth value.
	EvaluatesToBool() bool

	// Priority is the binding strength used when rendering. Atoms never need
	// grouping and report operator.Infinite.
	Priority() int

	// String returns a debug form such as add(x, y).
	String() string

	// isOperand seals the interface.
	isOperand()
}

// Ensure every variant implements Operand.
var (
	_ Operand = (*AtomicOperand)(nil)
	_ Operand = (*AtomicOperation)(nil)
	_ Operand = (*CompoundOperation)(nil)
)

// IsAtom reports whether x is an atomic operand.
func IsAtom(x Operand) bool {
	_, ok := x.(*AtomicOperand)
	return ok
}

// sameOperator reports whether x is an operation node built with op.
func sameOperator(x Operand, op *operator.Operator) bool {
	if IsAtom(x) {
		return false
	}
	return x.Operator() == op
}
