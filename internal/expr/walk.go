package expr

import (
	"fmt"
)

// Walk visits x and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(x Operand, fn func(Operand) bool) {
	if x == nil || !fn(x) {
		return
	}
	for _, child := range x.Operands() {
		Walk(child, fn)
	}
}

// Depth returns the height of the tree rooted at x; an atom has depth 0.
func Depth(x Operand) int {
	d := 0
	for _, child := range x.Operands() {
		d = max(d, Depth(child)+1)
	}
	return d
}

// Swap rebuilds a two-operand operation with its operands reversed under the
// operator's swapped partner: x >= y becomes y <= x. Commutative operators
// are their own partner.
func Swap(x Operand) (Operand, error) {
	if IsAtom(x) {
		return nil, fmt.Errorf("swap %s: atoms have no operator", x)
	}
	operands := x.Operands()
	if len(operands) != 2 {
		return nil, fmt.Errorf("swap %s: need exactly 2 operands, got %d", x, len(operands))
	}
	partner, err := x.Operator().Swapped()
	if err != nil {
		return nil, fmt.Errorf("swap %s: %w", x, err)
	}
	return Combine(partner, operands[1], operands[0])
}
