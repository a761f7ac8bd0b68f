package expr

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		negated bool
	}{
		{"x", "x", false},
		{"-x", "x", true},
		{"--x", "x", false},
		{"---x", "x", true},
		{"(-y)", "y", true},
		{"-(-x)", "x", false},
		{"((alpha))", "alpha", false},
		{"-(x1)", "x1", true},
		{"(a)+(b)", "(a)+(b)", false},
		{"-((a)+(b))", "(a)+(b)", true},
		{"((x)(y))", "(x)(y)", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sym, err := ParseSymbol(tt.in)
			require.NoError(t, err)
			assert.Equal(t, Symbol{Name: tt.name, Negated: tt.negated}, sym)
		})
	}
}

func TestParseSymbol_Empty(t *testing.T) {
	for _, in := range []string{"", "-", "()", "-( )"} {
		_, err := ParseSymbol(in)
		assert.ErrorIs(t, err, ErrEmptySymbol, "input %q", in)
	}
}

func TestParseSymbol_UnbalancedWarns(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	sym, err := ParseSymbol("-(x")
	require.NoError(t, err)
	assert.Equal(t, Symbol{Name: "(x", Negated: true}, sym)

	out := buf.String()
	assert.Contains(t, out, "inconsistent brackets")
	assert.Equal(t, 1, strings.Count(out, "inconsistent brackets"))
}

func TestAtom_InternsEqualPayloads(t *testing.T) {
	assert.Same(t, X, MustAtom("x"))
	assert.Same(t, MustAtom(5), MustAtom(5.0))
	assert.Same(t, MustAtom(true), Bool(true))
	assert.Same(t, MustAtom(Symbol{Name: "y"}), Y)
	assert.NotSame(t, MustAtom("x"), MustAtom("-x"))
}

func TestFreshAtom_IsNotShared(t *testing.T) {
	fresh, err := FreshAtom("x")
	require.NoError(t, err)
	assert.NotSame(t, X, fresh)
	assert.Equal(t, "x", fresh.String())

	_, err = FreshAtom(struct{}{})
	var uoe *UnrecognizedOperandError
	assert.True(t, errors.As(err, &uoe))
}

func TestAtom_RejectsOperations(t *testing.T) {
	sum := Must(Add(X, Y))
	_, err := Atom(sum)
	var uoe *UnrecognizedOperandError
	assert.True(t, errors.As(err, &uoe))
}

func TestAtom_ConcurrentInterning(t *testing.T) {
	const workers = 8
	results := make([]*AtomicOperand, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustAtom("concurrent")
		}(i)
	}
	wg.Wait()

	for _, a := range results {
		assert.Same(t, results[0], a)
	}
}

func TestSymbols(t *testing.T) {
	xyz, err := Symbols("xyz")
	require.NoError(t, err)
	require.Len(t, xyz, 3)
	assert.Same(t, X, xyz[0])
	assert.Same(t, Y, xyz[1])
	assert.Same(t, Z, xyz[2])

	named, err := Symbols("alpha, beta gamma,,delta")
	require.NoError(t, err)
	var names []string
	for _, a := range named {
		names = append(names, a.String())
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, names)

	again, err := Symbols("alpha")
	require.NoError(t, err)
	require.Len(t, again, 5, "all-alphabetic list splits per letter")
}

func TestAtom_Const(t *testing.T) {
	assert.True(t, Bool(true).Const())
	assert.True(t, Bool(false).EvaluatesToBool())
	assert.False(t, X.Const())
	assert.False(t, Number(3).Const())
	assert.False(t, X.EvaluatesToBool())
}

func TestAtom_Negate(t *testing.T) {
	assert.Same(t, MustAtom("-x"), X.Negate())
	assert.Same(t, X, X.Negate().Negate())
	assert.Same(t, Number(-2), Number(2).Negate())
	assert.Same(t, Bool(false), Bool(true).Negate())
}

func TestAtom_Negative(t *testing.T) {
	assert.True(t, Number(-1).Negative())
	assert.False(t, Number(1).Negative())
	assert.True(t, MustAtom("-x").Negative())
	assert.False(t, X.Negative())
	assert.False(t, Bool(false).Negative())
}

func TestAtom_String(t *testing.T) {
	assert.Equal(t, "x", X.String())
	assert.Equal(t, "-x", MustAtom("-x").String())
	assert.Equal(t, "5", Number(5).String())
	assert.Equal(t, "-5.25", Number(-5.25).String())
	assert.Equal(t, "true", Bool(true).String())
}

func TestAtom_GetValue(t *testing.T) {
	ctx := map[string]any{"x": 3.0, "p": true, "s": "text"}

	v, err := Number(2).GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Bool(true).GetValue(nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = X.GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = MustAtom("-x").GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, -3.0, v)

	v, err = MustAtom("-p").GetValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = MustAtom("-s").GetValue(ctx)
	assert.Error(t, err)

	_, err = Y.GetValue(ctx)
	var ube *UnboundSymbolError
	require.True(t, errors.As(err, &ube))
	assert.Equal(t, "y", ube.Name)
}

type celsius float64

func TestConvert(t *testing.T) {
	sum := Must(Add(X, Y))
	got, err := Convert(sum)
	require.NoError(t, err)
	assert.Same(t, sum, got)

	got, err = Convert(int64(7))
	require.NoError(t, err)
	assert.Same(t, Number(7), got)

	_, err = Convert(celsius(1))
	var uoe *UnrecognizedOperandError
	require.True(t, errors.As(err, &uoe))

	RegisterConverter(func(c celsius) (Operand, error) {
		return Number(float64(c)), nil
	})
	got, err = Convert(celsius(21.5))
	require.NoError(t, err)
	assert.Same(t, Number(21.5), got)

	_, err = Convert(nil)
	assert.True(t, errors.As(err, &uoe))

	_, err = Convert([]int{1})
	assert.True(t, errors.As(err, &uoe))
}

func TestConvert_ConverterError(t *testing.T) {
	type broken struct{}
	boom := errors.New("boom")
	RegisterConverter(func(broken) (Operand, error) { return nil, boom })

	_, err := Convert(broken{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "UnrecognizedOperandError", ErrorKind(err))
}
