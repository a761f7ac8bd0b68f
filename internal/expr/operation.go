package expr

import (
	"errors"
	"strings"

	"github.com/roach88/exprtree/internal/operator"
)

// AtomicOperation is an operator applied to atoms only: x + y + 5, a / b.
type AtomicOperation struct {
	op       *operator.Operator
	operands []Operand
	chained  bool
}

// CompoundOperation is an operator applied to a list holding at least one
// operation node that could not be flattened in: x - (y - z), -1 * (x + y).
//
// Besides the operand order, a compound operation records which immediate
// operands are atoms, atomic operations and compound operations.
type CompoundOperation struct {
	op       *operator.Operator
	operands []Operand
	chained  bool

	atoms    []*AtomicOperand
	atomic   []*AtomicOperation
	compound []*CompoundOperation
}

// NewAtomicOperation validates and builds an atomic operation.
func NewAtomicOperation(op *operator.Operator, operands ...Operand) (*AtomicOperation, error) {
	if op == nil {
		return nil, errors.New("atomic operation: operator is required")
	}
	for i, x := range operands {
		if isNil(x) {
			return nil, &OperandTypeError{Node: KindAtomicOperation, Index: i, Nil: true}
		}
		if !IsAtom(x) {
			return nil, &OperandTypeError{Node: KindAtomicOperation, Index: i, Operand: x.Kind()}
		}
	}
	chained, err := validate(op, operands)
	if err != nil {
		return nil, err
	}
	return &AtomicOperation{
		op:       op,
		operands: append([]Operand(nil), operands...),
		chained:  chained,
	}, nil
}

// NewCompoundOperation validates and builds a compound operation.
func NewCompoundOperation(op *operator.Operator, operands ...Operand) (*CompoundOperation, error) {
	if op == nil {
		return nil, errors.New("compound operation: operator is required")
	}
	co := &CompoundOperation{op: op, operands: append([]Operand(nil), operands...)}
	for i, x := range co.operands {
		switch v := x.(type) {
		case *AtomicOperand:
			if v == nil {
				return nil, &OperandTypeError{Node: KindCompoundOperation, Index: i, Nil: true}
			}
			co.atoms = append(co.atoms, v)
		case *AtomicOperation:
			if v == nil {
				return nil, &OperandTypeError{Node: KindCompoundOperation, Index: i, Nil: true}
			}
			co.atomic = append(co.atomic, v)
		case *CompoundOperation:
			if v == nil {
				return nil, &OperandTypeError{Node: KindCompoundOperation, Index: i, Nil: true}
			}
			co.compound = append(co.compound, v)
		default:
			return nil, &OperandTypeError{Node: KindCompoundOperation, Index: i, Nil: true}
		}
	}
	chained, err := validate(op, co.operands)
	if err != nil {
		return nil, err
	}
	co.chained = chained
	return co, nil
}

// validate checks operand count and types against op and reports whether
// the operation is chained.
func validate(op *operator.Operator, operands []Operand) (bool, error) {
	n := len(operands)
	chained := false

	if n > op.MaxArgs() {
		return false, &NotChainableError{Operator: op.Name(), Got: n, Max: op.MaxArgs()}
	}
	if lo := op.MinArgs(); lo > 0 {
		if n < lo {
			return false, &ArityError{Operator: op.Name(), Got: n, Min: lo}
		}
		if n > lo {
			if !op.Chainable() {
				return false, &NotChainableError{Operator: op.Name(), Got: n, Max: op.MaxArgs()}
			}
			chained = true
		}
	}

	if op.BooleanOperands() {
		var offending []string
		for _, x := range operands {
			if !x.EvaluatesToBool() {
				offending = append(offending, x.String()+" ("+x.Kind().String()+")")
			}
		}
		if len(offending) > 0 {
			return false, &NonBooleanOperandError{Operator: op.LongName(), Operands: offending}
		}
	}
	return chained, nil
}

func isNil(x Operand) bool {
	switch v := x.(type) {
	case nil:
		return true
	case *AtomicOperand:
		return v == nil
	case *AtomicOperation:
		return v == nil
	case *CompoundOperation:
		return v == nil
	}
	return false
}

func (o *AtomicOperation) Kind() Kind { return KindAtomicOperation }

func (o *AtomicOperation) Operator() *operator.Operator { return o.op }

// Operands returns a copy of the operand list.
func (o *AtomicOperation) Operands() []Operand { return append([]Operand(nil), o.operands...) }

// Atoms returns the operands as atoms.
func (o *AtomicOperation) Atoms() []*AtomicOperand {
	result := make([]*AtomicOperand, len(o.operands))
	for i, x := range o.operands {
		result[i] = x.(*AtomicOperand)
	}
	return result
}

// Chained reports whether the operation holds more operands than its
// operator's minimum.
func (o *AtomicOperation) Chained() bool { return o.chained }

func (o *AtomicOperation) Const() bool { return allConst(o.operands) }

func (o *AtomicOperation) EvaluatesToBool() bool { return o.op.EvaluatesToBool() }

func (o *AtomicOperation) Priority() int { return o.op.Priority() }

func (o *AtomicOperation) String() string { return debugString(o.op, o.operands) }

func (o *AtomicOperation) isOperand() {}

func (c *CompoundOperation) Kind() Kind { return KindCompoundOperation }

func (c *CompoundOperation) Operator() *operator.Operator { return c.op }

// Operands returns a copy of the operand list.
func (c *CompoundOperation) Operands() []Operand { return append([]Operand(nil), c.operands...) }

// Atoms returns the atom operands in order.
func (c *CompoundOperation) Atoms() []*AtomicOperand {
	return append([]*AtomicOperand(nil), c.atoms...)
}

// AtomicOperations returns the atomic operation operands in order.
func (c *CompoundOperation) AtomicOperations() []*AtomicOperation {
	return append([]*AtomicOperation(nil), c.atomic...)
}

// CompoundOperations returns the compound operation operands in order.
func (c *CompoundOperation) CompoundOperations() []*CompoundOperation {
	return append([]*CompoundOperation(nil), c.compound...)
}

func (c *CompoundOperation) Chained() bool { return c.chained }

func (c *CompoundOperation) Const() bool { return allConst(c.operands) }

func (c *CompoundOperation) EvaluatesToBool() bool { return c.op.EvaluatesToBool() }

func (c *CompoundOperation) Priority() int { return c.op.Priority() }

func (c *CompoundOperation) String() string { return debugString(c.op, c.operands) }

func (c *CompoundOperation) isOperand() {}

func allConst(operands []Operand) bool {
	for _, x := range operands {
		if !x.Const() {
			return false
		}
	}
	return true
}

func debugString(op *operator.Operator, operands []Operand) string {
	var sb strings.Builder
	sb.WriteString(op.Name())
	sb.WriteByte('(')
	for i, x := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(x.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
