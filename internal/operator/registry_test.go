package operator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobal_LookupReturnsSameInstance(t *testing.T) {
	first, err := Global().Lookup("add")
	require.NoError(t, err)
	second, err := Global().Lookup("add")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, Add, first)
}

func TestGlobal_UnknownOperator(t *testing.T) {
	op, err := Global().Lookup("frobnicate")
	assert.Nil(t, op)

	var nse *NoSuchOperatorError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, "frobnicate", nse.Name)
	assert.Contains(t, err.Error(), `"frobnicate"`)
}

func TestBuiltins_AllRegistered(t *testing.T) {
	names := Global().Names()
	require.Len(t, names, len(Builtins()))
	for _, def := range Builtins() {
		assert.True(t, Global().Has(def.Name), "builtin %q should be registered", def.Name)
	}
}

func TestBuiltins_Metadata(t *testing.T) {
	tests := []struct {
		op          *Operator
		minArgs     int
		maxArgs     int
		chainable   bool
		associative bool
		priority    int
	}{
		{Add, 2, Unbounded, true, true, PriorityAddition},
		{Sub, 2, Unbounded, true, false, PriorityAddition},
		{Mul, 2, Unbounded, true, true, PriorityMultiplication},
		{Div, 2, Unbounded, true, false, PriorityMultiplication},
		{Minus, 1, 1, false, false, PriorityMultiplication},
		{Pow, 2, Unbounded, false, false, PriorityExponentiation},
		{Abs, 1, 1, false, false, PriorityModulus},
		{Lt, 2, Unbounded, true, false, Infinite},
		{And, 2, Unbounded, true, true, Infinite},
		{Neg, 1, 1, false, true, Infinite},
	}

	for _, tt := range tests {
		t.Run(tt.op.Name(), func(t *testing.T) {
			assert.Equal(t, tt.minArgs, tt.op.MinArgs())
			assert.Equal(t, tt.maxArgs, tt.op.MaxArgs())
			assert.Equal(t, tt.chainable, tt.op.Chainable())
			assert.Equal(t, tt.associative, tt.op.Associative())
			assert.Equal(t, tt.priority, tt.op.Priority())
		})
	}
}

func TestBuiltins_Flags(t *testing.T) {
	assert.True(t, Abs.Idempotent())
	assert.True(t, Abs.Unary())
	assert.False(t, Add.Unary())
	assert.True(t, Pow.RightAssociative())
	assert.True(t, Lt.Relation())
	assert.True(t, And.Relation())
	assert.False(t, Add.Relation())
	assert.True(t, And.BooleanOperands())
	assert.False(t, Lt.BooleanOperands())
	assert.True(t, Eq.Comparison())
	assert.Equal(t, "sub", Add.InverseName())
	assert.True(t, Mul.DistributesOver("add"))
	assert.False(t, Add.DistributesOver("mul"))
	assert.Equal(t, "less-than inequality relation", Lt.LongName())
	assert.Equal(t, "subset of", SubsetOf.String())
}

func TestSwapped_BuiltinPairs(t *testing.T) {
	pairs := map[*Operator]*Operator{Ge: Le, Le: Ge, Gt: Lt, Lt: Gt}
	for op, want := range pairs {
		got, err := op.Swapped()
		require.NoError(t, err)
		assert.Same(t, want, got, "swapped of %s", op.Name())
	}
}

func TestSwapped_CommutativeIsSelf(t *testing.T) {
	got, err := Eq.Swapped()
	require.NoError(t, err)
	assert.Same(t, Eq, got)
}

func TestSwapped_NotSwappable(t *testing.T) {
	_, err := Sub.Swapped()
	assert.ErrorIs(t, err, ErrNotSwappable)
}

func TestRegister_SwappedResolvedWhenPartnerRegistersLater(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "succeeds", MinArgs: 2, Swapped: "precedes"}))

	succeeds := r.MustLookup("succeeds")
	assert.Equal(t, "precedes", succeeds.SwappedName())

	// Partner not registered yet: the name dangles.
	_, err := succeeds.Swapped()
	var nse *NoSuchOperatorError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, "precedes", nse.Name)

	require.NoError(t, r.Register(Definition{Name: "precedes", MinArgs: 2}))
	precedes := r.MustLookup("precedes")

	got, err := succeeds.Swapped()
	require.NoError(t, err)
	assert.Same(t, precedes, got)

	back, err := precedes.Swapped()
	require.NoError(t, err)
	assert.Same(t, succeeds, back)
}

func TestRegister_SwappedResolvedWhenPartnerAlreadyRegistered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "above", MinArgs: 2}))
	require.NoError(t, r.Register(Definition{Name: "below", MinArgs: 2, Swapped: "above"}))

	above := r.MustLookup("above")
	assert.Equal(t, "below", above.SwappedName())
	def, ok := r.Definition("above")
	require.True(t, ok)
	assert.Equal(t, "below", def.Swapped)
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "op"}))
	err := r.Register(Definition{Name: "op"})
	assert.ErrorIs(t, err, ErrDuplicateOperator)
}

func TestRegister_EmptyName(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Definition{Name: "  "}))
}

func TestRegister_DerivedFields(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "f"}))
	require.NoError(t, r.Register(Definition{Name: "g", MinArgs: 2}))
	require.NoError(t, r.Register(Definition{Name: "h", MinArgs: 2, Chainable: Bool(false)}))

	f := r.MustLookup("f")
	assert.Equal(t, "f", f.LongName())
	assert.False(t, f.Chainable())
	assert.Equal(t, Unbounded, f.MaxArgs())

	assert.True(t, r.MustLookup("g").Chainable())
	assert.False(t, r.MustLookup("h").Chainable())
}

func TestRegistry_SeparateRegistriesAreIndependent(t *testing.T) {
	r := NewRegistry()
	registerBuiltins(r)

	local := r.MustLookup("add")
	assert.NotSame(t, Add, local)
	assert.Equal(t, Add.Definition(), local.Definition())
}

func TestRegistry_AllPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(Definition{Name: name}))
	}

	var names []string
	for _, def := range r.All() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
	assert.Equal(t, []string{"c", "a", "b"}, r.Names())
}

func TestMustLookup_Panics(t *testing.T) {
	assert.Panics(t, func() { NewRegistry().MustLookup("missing") })
}

func TestNewBuiltinRegistry(t *testing.T) {
	r := NewBuiltinRegistry()
	assert.Equal(t, Global().Names(), r.Names())

	add, err := r.Lookup("add")
	require.NoError(t, err)
	assert.NotSame(t, Add, add, "instances are owned by their registry")

	require.NoError(t, r.Register(Definition{Name: "cross", MinArgs: 2, Priority: PriorityMultiplication}))
	assert.True(t, r.Has("cross"))
	assert.False(t, Global().Has("cross"))
}
