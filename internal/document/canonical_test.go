package document

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/ir"
)

func TestCanonicalJSON(t *testing.T) {
	tests := []struct {
		name     string
		x        expr.Operand
		expected string
	}{
		{"number", expr.Number(2.5), `{"num":"2.5"}`},
		{"symbol", expr.X, `{"sym":"x"}`},
		{"negated symbol", expr.MustAtom("-x"), `{"neg":true,"sym":"x"}`},
		{"bool", expr.Bool(false), `{"bool":false}`},
		{
			"operation",
			expr.Must(expr.Add(expr.X, expr.Must(expr.Pow(expr.Y, 2)))),
			`{"args":[{"sym":"x"},{"args":[{"sym":"y"},{"num":"2"}],"op":"pow"}],"op":"add"}`,
		},
		{
			"operator name with space",
			expr.Must(expr.Op("subset_of", expr.A, expr.B)),
			`{"args":[{"sym":"a"},{"sym":"b"}],"op":"subset of"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := CanonicalJSON(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestID(t *testing.T) {
	a := expr.Must(expr.Add(expr.X, expr.Y))
	b := expr.Must(expr.Add(expr.MustAtom("x"), expr.MustAtom("(y)")))
	c := expr.Must(expr.Add(expr.Y, expr.X))

	idA, err := ID(a)
	require.NoError(t, err)
	idB, err := ID(b)
	require.NoError(t, err)
	idC, err := ID(c)
	require.NoError(t, err)

	assert.Equal(t, idA, idB, "structurally equal trees share an id")
	assert.NotEqual(t, idA, idC, "operand order is part of the id")
	assert.Equal(t, ir.MustExpressionID(Canonical(a)), idA)

	_, err = ID(nil)
	assert.Error(t, err)
}

func TestID_NegativeZero(t *testing.T) {
	pos, err := ID(expr.Number(0))
	require.NoError(t, err)
	neg, err := ID(expr.Number(math.Copysign(0, -1)))
	require.NoError(t, err)
	assert.NotEqual(t, pos, neg)
}

func TestFromCanonical_RoundTrip(t *testing.T) {
	trees := []expr.Operand{
		expr.Number(-2.5),
		expr.MustAtom("-x"),
		expr.Bool(true),
		expr.Must(expr.Add(expr.X, expr.Must(expr.Mul(2, expr.MustAtom("-y"))), expr.Bool(false))),
		expr.Must(expr.Op("not_in", expr.A, expr.Must(expr.Apply("union", expr.B, expr.C)))),
	}

	for _, x := range trees {
		t.Run(x.String(), func(t *testing.T) {
			data, err := CanonicalJSON(x)
			require.NoError(t, err)
			v, err := ir.Unmarshal(data)
			require.NoError(t, err)

			doc, err := FromCanonical(v)
			require.NoError(t, err)
			back, err := doc.Build(expr.Default())
			require.NoError(t, err)

			assert.Equal(t, x.String(), back.String())
			assert.Equal(t, mustID(t, x), mustID(t, back))
		})
	}
}

func TestFromCanonical_Errors(t *testing.T) {
	tests := []struct {
		name string
		v    ir.Value
	}{
		{"not an object", ir.Array{}},
		{"empty atom", ir.Object{}},
		{"op not a string", ir.Object{"op": ir.Int(1), "args": ir.Array{}}},
		{"args missing", ir.Object{"op": ir.String("add")}},
		{"argument not an object", ir.Object{"op": ir.String("add"), "args": ir.Array{ir.Int(1)}}},
		{"num not a string", ir.Object{"num": ir.Int(2)}},
		{"num not a number", ir.Object{"num": ir.String("two")}},
		{"sym not a string", ir.Object{"sym": ir.Bool(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCanonical(tt.v)
			require.Error(t, err)
			assert.Equal(t, "InvalidDocumentError", ErrorKind(err))
		})
	}
}

func mustID(t *testing.T, x expr.Operand) string {
	t.Helper()
	id, err := ID(x)
	require.NoError(t, err)
	return id
}
