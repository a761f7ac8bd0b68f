package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/operator"
)

var (
	must = expr.Must
	x, y = expr.X, expr.Y
	z, n = expr.Z, expr.N
)

func TestText_Associativity(t *testing.T) {
	tests := []struct {
		name string
		node expr.Operand
		want string
	}{
		{"flat", must(expr.Add(x, y, z)), "x + y + z"},
		{"left nested", must(expr.Add(must(expr.Add(x, y)), z)), "x + y + z"},
		{"right nested", must(expr.Add(x, must(expr.Add(y, z)))), "x + y + z"},
		{"add then sub", must(expr.Sub(must(expr.Add(x, y)), z)), "x + y - z"},
		{"sub inside add", must(expr.Add(x, must(expr.Sub(y, z)))), "x + y - z"},
		{"sub right nested", must(expr.Sub(x, must(expr.Sub(y, z)))), "x - (y - z)"},
		{"sub left nested", must(expr.Sub(must(expr.Sub(x, y)), z)), "x - y - z"},
		{"sub of sum", must(expr.Sub(x, must(expr.Add(y, z)))), "x - (y + z)"},
		{"div chain", must(expr.Div(must(expr.Div(x, y)), z)), "x / y / z"},
		{"div nested then chained", must(expr.Div(must(expr.Div(x, must(expr.Div(y, z)))), x)), "x / (y / z) / x"},
		{"div of chain", must(expr.Div(x, must(expr.Div(must(expr.Div(y, z)), x)))), "x / (y / z / x)"},
		{
			"mixed",
			must(expr.Add(must(expr.Sub(x, must(expr.Div(y, must(expr.Div(y, z)))))), z)),
			"x - y / (y / z) + z",
		},
		{"mul of div", must(expr.Mul(x, must(expr.Div(y, z)))), "x * y / z"},
		{"mul of floordiv", must(expr.Mul(x, must(expr.FloorDiv(y, z)))), "x * (y // z)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text().Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_Negation(t *testing.T) {
	square := must(expr.Pow(x, 2))
	tests := []struct {
		name string
		node expr.Operand
		want string
	}{
		{"negated symbol", expr.MustAtom("-x"), "-x"},
		{"double negated symbol", x.Negate().Negate(), "x"},
		{"minus of atom", must(expr.Minus(x)), "-x"},
		{"minus of sum", must(expr.Minus(must(expr.Add(x, y)))), "-(x + y)"},
		{"minus of negative atom", must(expr.Minus(expr.MustAtom("-x"))), "-(-x)"},
		{"minus of minus", must(expr.Minus(must(expr.Minus(x)))), "-(-x)"},
		{
			"minus of polynomial",
			must(expr.Minus(must(expr.Sub(must(expr.Add(must(expr.Minus(square)), must(expr.Mul(2, x)))), 3)))),
			"-(-(x^2) + 2 * x - 3)",
		},
		{
			"negative base",
			must(expr.Minus(must(expr.Sub(must(expr.Add(must(expr.Pow("-x", 2)), must(expr.Mul(2, x)))), 3)))),
			"-((-x)^2 + 2 * x - 3)",
		},
		{"trailing negative literal", must(expr.Add(x, y, -1)), "x + y + (-1)"},
		{"leading negative literal", must(expr.Add(-1, x, y)), "-1 + x + y"},
		{"negative factor", must(expr.Add(must(expr.Mul(-1, x)), y)), "-1 * x + y"},
		{"negative factor of sum", must(expr.Mul(-1, must(expr.Add(x, y)))), "-1 * (x + y)"},
		{"negative term with product", must(expr.Add(-1, must(expr.Mul(x, y)))), "-1 + x * y"},
		{"minus in second factor", must(expr.Mul(y, must(expr.Minus(x)))), "y * (-x)"},
		{"minus leading sum", must(expr.Add(must(expr.Minus(x)), y)), "-x + y"},
		{"minus leading product", must(expr.Mul(must(expr.Minus(x)), y)), "-x * y"},
		{"minus as base", must(expr.Pow(must(expr.Minus(x)), 2)), "(-x)^2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text().Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_PowersAndFunctions(t *testing.T) {
	tests := []struct {
		name string
		node expr.Operand
		want string
	}{
		{"right nested power", must(expr.Pow(x, must(expr.Pow(y, z)))), "x^y^z"},
		{"left nested power", must(expr.Pow(x, y, z)), "(x^y)^z"},
		{"power of sum", must(expr.Pow(must(expr.Add(x, 1)), 2)), "(x + 1)^2"},
		{"square root", must(expr.Root(x, 2)), "x^(1/2)"},
		{"root of sum", must(expr.Root(must(expr.Add(x, 1)), 3)), "(x + 1)^(1/3)"},
		{"root with compound degree", must(expr.Root(x, must(expr.Add(n, 1)))), "x^(1/(n + 1))"},
		{"abs", must(expr.Abs(must(expr.Sub(x, y)))), "|x - y|"},
		{"abs of abs", must(expr.Abs(must(expr.Abs(x)))), "|x|"},
		{"abs of negative literal", must(expr.Abs(-3)), "|-3|"},
		{"abs in product", must(expr.Mul(2, must(expr.Abs(x)))), "2 * |x|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text().Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_Relations(t *testing.T) {
	tests := []struct {
		name string
		node expr.Operand
		want string
	}{
		{"chained", must(expr.Lt(x, y, 5)), "x < y < 5"},
		{"sum compared", must(expr.Lt(must(expr.Add(x, y)), z)), "x + y < z"},
		{"negative operand", must(expr.Ge(x, -1)), "x >= -1"},
		{"nested relation", must(expr.Eq(must(expr.Lt(x, y)), true)), "(x < y) = true"},
		{"relation right nested", must(expr.Lt(x, must(expr.Lt(y, z)))), "x < (y < z)"},
		{"conjunction", must(expr.And(must(expr.Lt(x, y)), must(expr.Gt(y, z)))), "(x < y) and (y > z)"},
		{"negation", must(expr.Not(must(expr.Lt(x, y)))), "not (x < y)"},
		{"negated literal", must(expr.Not(true)), "not true"},
		{"multi-word operator", must(expr.Op("subset_of", expr.A, expr.B)), "a subset of b"},
		{"not in", must(expr.Op("not_in", x, expr.S)), "x not in s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text().Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_RegroupedCompound(t *testing.T) {
	left := must(expr.Add(must(expr.Mul(x, y)), z))
	right := must(expr.Add(must(expr.Sub(expr.A, must(expr.Mul(expr.B, expr.C)))), expr.D))

	got, err := Text().Render(must(expr.Add(left, right)))
	require.NoError(t, err)
	assert.Equal(t, "z + d + x * y + a - b * c", got)
}

func TestText_AtomicSumThenCompoundKeepsOrder(t *testing.T) {
	right := must(expr.Add(must(expr.Mul(expr.A, expr.B)), z))

	got, err := Text().Render(must(expr.Add(must(expr.Add(x, y)), right)))
	require.NoError(t, err)
	assert.Equal(t, "x + y + a * b + z", got)
}

func TestLaTeX(t *testing.T) {
	tests := []struct {
		name string
		node expr.Operand
		want string
	}{
		{"fraction", must(expr.Div(x, y)), `\frac{x}{y}`},
		{"chained fraction", must(expr.Div(x, y, z)), `\frac{\frac{x}{y}}{z}`},
		{"fraction of sums", must(expr.Div(must(expr.Add(x, 1)), must(expr.Sub(y, 1)))), `\frac{x + 1}{y - 1}`},
		{"power", must(expr.Pow(x, must(expr.Add(y, 1)))), `x^{y + 1}`},
		{"negative base", must(expr.Pow(-2, x)), `\left(-2\right)^{x}`},
		{"product of sum", must(expr.Mul(x, must(expr.Add(y, z)))), `x \cdot \left(y + z\right)`},
		{"abs", must(expr.Abs(must(expr.Sub(x, y)))), `\left|x - y\right|`},
		{"root", must(expr.Root(x, 3)), `\sqrt[3]{x}`},
		{"relation", must(expr.Le(must(expr.Mul(2, x)), y)), `2 \cdot x \leq y`},
		{"word symbol", must(expr.Add("alpha", 1)), `\mathrm{alpha} + 1`},
		{"truth values", must(expr.And(true, false)), `\mathrm{true} \land \mathrm{false}`},
		{"minus of fraction", must(expr.Minus(must(expr.Div(x, y)))), `-\left(\frac{x}{y}\right)`},
		{"set", must(expr.Op("subset_of", expr.A, expr.B)), `a \subseteq b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LaTeX().Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBackendsCoverBuiltins(t *testing.T) {
	for _, engine := range []*Engine{Text(), LaTeX()} {
		for _, def := range operator.Builtins() {
			tmpl, ok := engine.Template(def.Name)
			if assert.True(t, ok, "%s engine has no template for %q", engine.Name(), def.Name) {
				_, err := tmpl.Slots()
				assert.NoError(t, err, "%s template for %q", engine.Name(), def.Name)
			}
		}
	}
}

func TestBackend(t *testing.T) {
	e, ok := Backend("latex")
	require.True(t, ok)
	assert.Same(t, LaTeX(), e)

	_, ok = Backend("ascii")
	assert.False(t, ok)
}

func TestRender_MissingTemplate(t *testing.T) {
	e := New("bare", map[string]Template{"add": {Format: "{0} + {1}"}})

	_, err := e.Render(must(expr.Add(x, must(expr.Mul(y, z)))))
	var mte *MissingTemplateError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, "mul", mte.Operator)
	assert.Equal(t, "bare", mte.Engine)

	assert.Panics(t, func() { e.MustRender(must(expr.Mul(y, z))) })
}

func TestRender_CustomOperator(t *testing.T) {
	r := operator.NewRegistry()
	r.MustRegister(operator.Definition{Name: "concat", MinArgs: 2, Associative: true})
	b := expr.NewBuilder(r)

	node, err := b.Apply("concat", x, must(b.Apply("concat", y, z)))
	require.NoError(t, err)

	_, err = Text().Render(node)
	var mte *MissingTemplateError
	assert.True(t, errors.As(err, &mte))

	e := Text().With(map[string]Template{"concat": {Format: "{0} ++ {1}"}})
	got, err := e.Render(node)
	require.NoError(t, err)
	assert.Equal(t, "x ++ y ++ z", got)

	_, ok := Text().Template("concat")
	assert.False(t, ok, "With must not modify the original engine")
}

func TestRender_PolicyFunc(t *testing.T) {
	always := PolicyFunc(func(Slot, expr.Operand) bool { return true })
	e := New("always", TextTemplates(), WithPolicy(always))

	got, err := e.Render(must(expr.Add(x, y)))
	require.NoError(t, err)
	assert.Equal(t, "(x) + (y)", got)
}

func TestRender_Nil(t *testing.T) {
	_, err := Text().Render(nil)
	assert.Error(t, err)
}

func TestOperators(t *testing.T) {
	e := New("small", map[string]Template{"sub": {Format: "{0} - {1}"}, "add": {Format: "{0} + {1}"}})
	assert.Equal(t, []string{"add", "sub"}, e.Operators())
}
