package render

import (
	"strconv"
	"sync"

	"github.com/roach88/exprtree/internal/expr"
)

// LaTeXTemplates returns the LaTeX templates of the builtin operators.
func LaTeXTemplates() map[string]Template {
	return map[string]Template{
		"add":      {Format: "{0} + {1}"},
		"sub":      {Format: "{0} - {1}"},
		"mul":      {Format: `{0} \cdot {1}`},
		"div":      {Format: `\frac{{{0}}}{{{1}}}`, Enclosed: []int{0, 1}},
		"floordiv": {Format: `\left\lfloor \frac{{{0}}}{{{1}}} \right\rfloor`, Enclosed: []int{0, 1}},
		"mod":      {Format: `{0} \bmod {1}`},
		"matmul":   {Format: `{0} \mathbin{{@}} {1}`},
		"minus":    {Format: "-{0}", Prefix: true},
		"pow":      {Format: "{0}^{{{1}}}", Enclosed: []int{1}},
		"root":     {Format: `\sqrt[{1}]{{{0}}}`, Enclosed: []int{0, 1}},
		"abs":      {Format: `\left|{0}\right|`, Enclosed: []int{0}},

		"eq":               {Format: "{0} = {1}"},
		"approx eq":        {Format: `{0} \approx {1}`},
		"ne":               {Format: `{0} \neq {1}`},
		"ge":               {Format: `{0} \geq {1}`},
		"gt":               {Format: "{0} > {1}"},
		"le":               {Format: `{0} \leq {1}`},
		"lt":               {Format: "{0} < {1}"},
		"in":               {Format: `{0} \in {1}`},
		"not in":           {Format: `{0} \notin {1}`},
		"subset of":        {Format: `{0} \subseteq {1}`},
		"proper subset of": {Format: `{0} \subset {1}`},

		"union":        {Format: `{0} \cup {1}`},
		"intersection": {Format: `{0} \cap {1}`},
		"diff":         {Format: `{0} \setminus {1}`},

		"neg": {Format: `\lnot {0}`, Prefix: true},
		"and": {Format: `{0} \land {1}`},
		"or":  {Format: `{0} \lor {1}`},
		"xor": {Format: `{0} \oplus {1}`},
	}
}

// LaTeXAtom formats an atom for LaTeX. Multi-letter symbol names are set
// upright.
func LaTeXAtom(a *expr.AtomicOperand) string {
	if sym, ok := a.Symbol(); ok {
		name := sym.Name
		if len([]rune(name)) > 1 {
			name = `\mathrm{` + name + `}`
		}
		if sym.Negated {
			return "-" + name
		}
		return name
	}
	if b, ok := a.Bool(); ok {
		return `\mathrm{` + strconv.FormatBool(b) + `}`
	}
	return a.String()
}

var (
	latexOnce   sync.Once
	latexEngine *Engine
)

// LaTeX returns the shared LaTeX engine: \frac{x}{y}, x^{2}, \left|x\right|.
func LaTeX() *Engine {
	latexOnce.Do(func() {
		latexEngine = New("latex", LaTeXTemplates(),
			WithAtomFormatter(LaTeXAtom),
			WithParentheses(`\left(`, `\right)`))
	})
	return latexEngine
}

// Backend returns the shared engine with the given name ("text" or "latex").
func Backend(name string) (*Engine, bool) {
	switch name {
	case "text":
		return Text(), true
	case "latex":
		return LaTeX(), true
	}
	return nil, false
}
