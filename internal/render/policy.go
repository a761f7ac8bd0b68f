package render

import (
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/operator"
)

// Slot describes where a child operand is rendered.
type Slot struct {
	// Parent is the operator of the node being rendered.
	Parent *operator.Operator
	// Template is the parent's template.
	Template Template
	// Index is the child's position among the parent's operands.
	Index int
	// Placeholder is the template placeholder receiving the child. It differs
	// from Index for the extra operands of a chained node.
	Placeholder int
	// ChildTemplate is the child's own template, zero for atoms.
	ChildTemplate Template
}

// Policy decides whether a child operand needs parentheses.
type Policy interface {
	Parenthesize(slot Slot, child expr.Operand) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(slot Slot, child expr.Operand) bool

func (f PolicyFunc) Parenthesize(slot Slot, child expr.Operand) bool { return f(slot, child) }

// unaryMinusPriority is the binding strength of a leading minus sign.
const unaryMinusPriority = operator.PriorityMultiplication

// Precedence is the default policy. Higher priority binds tighter and
// relations bind loosest of all.
//
// Rules, first match wins:
//   - atoms: a negative literal is parenthesised unless the slot is
//     enclosed or the parent is a relation, and then only when it is not the
//     leading operand, sits under a prefix operator, or sits under a parent
//     binding tighter than a minus sign
//   - enclosed slots: never
//   - prefix parents: always
//   - relation children: always; relation parents: never
//   - prefix children in a non-leading slot: always, y * (-x)
//   - lower priority child: always; higher priority child: never
//   - equal priority, leading slot: only under a right-associative parent
//   - equal priority, other slots: unless the parent is associative and the
//     child is the same operator or its inverse, or the parent is
//     right-associative and the child is the same operator
type Precedence struct{}

func (Precedence) Parenthesize(slot Slot, child expr.Operand) bool {
	parent := slot.Parent
	enclosed := slot.Template.Encloses(slot.Placeholder)

	if a, ok := child.(*expr.AtomicOperand); ok {
		if !a.Negative() || enclosed || parent.Relation() {
			return false
		}
		return slot.Index > 0 || slot.Template.Prefix || parent.Priority() > unaryMinusPriority
	}

	if enclosed {
		return false
	}
	if slot.Template.Prefix {
		return true
	}

	op := child.Operator()
	if op.Relation() {
		return true
	}
	if parent.Relation() {
		return false
	}
	if slot.ChildTemplate.Prefix && slot.Index > 0 {
		return true
	}

	switch cp, pp := child.Priority(), parent.Priority(); {
	case cp < pp:
		return true
	case cp > pp:
		return false
	}

	if slot.Index == 0 {
		return parent.RightAssociative()
	}
	if op == parent && parent.RightAssociative() {
		return false
	}
	if !parent.Associative() {
		return true
	}
	return op != parent && op.Name() != parent.InverseName()
}
