package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprtree/internal/operator"
)

func TestWalk_PreOrder(t *testing.T) {
	tree := Must(Sub(X, Must(Mul(Y, Z))))

	var visited []string
	Walk(tree, func(x Operand) bool {
		visited = append(visited, x.String())
		return true
	})

	assert.Equal(t, []string{"sub(x, mul(y, z))", "x", "mul(y, z)", "y", "z"}, visited)
}

func TestWalk_SkipChildren(t *testing.T) {
	tree := Must(Sub(X, Must(Mul(Y, Z))))

	var visited []string
	Walk(tree, func(x Operand) bool {
		visited = append(visited, x.String())
		return x.Operator() != operator.Mul
	})

	assert.Equal(t, []string{"sub(x, mul(y, z))", "x", "mul(y, z)"}, visited)
}

func TestWalk_CollectSymbols(t *testing.T) {
	tree := Must(Add(Must(Pow(X, 2)), Must(Mul(2, X, Y))))

	seen := map[string]bool{}
	Walk(tree, func(x Operand) bool {
		if a, ok := x.(*AtomicOperand); ok {
			if sym, ok := a.Symbol(); ok {
				seen[sym.Name] = true
			}
		}
		return true
	})

	assert.Equal(t, map[string]bool{"x": true, "y": true}, seen)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(X))
	assert.Equal(t, 1, Depth(Must(Add(X, Y))))
	assert.Equal(t, 2, Depth(Must(Sub(X, Must(Sub(Y, Z))))))
}

func TestSwap(t *testing.T) {
	ge := Must(Ge(X, Y))
	swapped, err := Swap(ge)
	require.NoError(t, err)
	assert.Same(t, operator.Le, swapped.Operator())
	assert.Equal(t, "le(y, x)", swapped.String())

	eq := Must(Eq(X, Must(Add(Y, 1))))
	swapped, err = Swap(eq)
	require.NoError(t, err)
	assert.Equal(t, "eq(add(y, 1), x)", swapped.String())
}

func TestSwap_Errors(t *testing.T) {
	_, err := Swap(X)
	assert.Error(t, err)

	_, err = Swap(Must(Sub(X, Y)))
	assert.ErrorIs(t, err, operator.ErrNotSwappable)

	_, err = Swap(Must(Lt(X, Y, Z)))
	assert.Error(t, err)
}
