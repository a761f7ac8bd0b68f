package expr

import (
	"errors"

	"github.com/roach88/exprtree/internal/operator"
)

// Combine applies op to operands and returns the flattest node that has the
// same meaning as nesting op naively.
//
// One operand: an atom becomes an atomic operation; an operation built with
// the same idempotent operator is returned unchanged; anything else is
// wrapped in a compound operation.
//
// Two operands: each side whose operands can be spliced into the result is
// spread, the other side is kept as a single operand. The left side spreads
// when it was built with op and op is associative or chainable, so (x-y)-z
// is sub(x, y, z). The right side spreads only when op is associative, so
// x-(y-z) keeps its nesting. Neither side spreads past op's MaxArgs; it is
// kept whole instead. The result is an atomic operation when every resulting
// operand is an atom and a compound operation otherwise. When both sides
// spread under an associative and commutative operator and the left side is
// compound, the operands are regrouped: atoms first, then atomic operations,
// then compound operations, left side before right within each group. An
// atomic left side is simply concatenated with the right.
//
// More operands are folded left to right through binary combination.
func Combine(op *operator.Operator, operands ...Operand) (Operand, error) {
	if op == nil {
		return nil, errors.New("combine: operator is required")
	}
	for i, x := range operands {
		if isNil(x) {
			return nil, &OperandTypeError{Node: KindCompoundOperation, Index: i, Nil: true}
		}
	}

	switch len(operands) {
	case 0:
		return nil, &ArityError{Operator: op.Name(), Got: 0, Min: max(op.MinArgs(), 1)}
	case 1:
		return combineUnary(op, operands[0])
	}

	result, err := combineBinary(op, operands[0], operands[1])
	if err != nil {
		return nil, err
	}
	for _, next := range operands[2:] {
		result, err = combineBinary(op, result, next)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// MustCombine is like Combine but panics on error.
func MustCombine(op *operator.Operator, operands ...Operand) Operand {
	x, err := Combine(op, operands...)
	if err != nil {
		panic(err)
	}
	return x
}

func combineUnary(op *operator.Operator, x Operand) (Operand, error) {
	if IsAtom(x) {
		return build(op, []Operand{x})
	}
	if x.Operator() == op && op.Idempotent() {
		return x, nil
	}
	co, err := NewCompoundOperation(op, x)
	if err != nil {
		return nil, err
	}
	return co, nil
}

func combineBinary(op *operator.Operator, left, right Operand) (Operand, error) {
	spreadLeft := sameOperator(left, op) && (op.Associative() || op.Chainable())
	spreadRight := sameOperator(right, op) && op.Associative()

	// A side is only spread while the result stays within MaxArgs.
	if spreadLeft && spreadRight && len(left.Operands())+len(right.Operands()) > op.MaxArgs() {
		spreadRight = false
	}
	if spreadLeft && len(left.Operands())+1 > op.MaxArgs() {
		spreadLeft = false
	}
	if spreadRight && len(right.Operands())+1 > op.MaxArgs() {
		spreadRight = false
	}

	var operands []Operand
	if spreadLeft && spreadRight && op.Commutative() && left.Kind() == KindCompoundOperation {
		operands = regroup(left.Operands(), right.Operands())
	} else {
		operands = append(operands, spread(left, spreadLeft)...)
		operands = append(operands, spread(right, spreadRight)...)
	}
	return build(op, operands)
}

func spread(x Operand, ok bool) []Operand {
	if ok {
		return x.Operands()
	}
	return []Operand{x}
}

// regroup orders the operands of two merged operations by kind.
func regroup(left, right []Operand) []Operand {
	result := make([]Operand, 0, len(left)+len(right))
	for _, kind := range []Kind{KindAtom, KindAtomicOperation, KindCompoundOperation} {
		for _, side := range [][]Operand{left, right} {
			for _, x := range side {
				if x.Kind() == kind {
					result = append(result, x)
				}
			}
		}
	}
	return result
}

// build returns an atomic operation when every operand is an atom and a
// compound operation otherwise.
func build(op *operator.Operator, operands []Operand) (Operand, error) {
	for _, x := range operands {
		if !IsAtom(x) {
			co, err := NewCompoundOperation(op, operands...)
			if err != nil {
				return nil, err
			}
			return co, nil
		}
	}
	o, err := NewAtomicOperation(op, operands...)
	if err != nil {
		return nil, err
	}
	return o, nil
}
