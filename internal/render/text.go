package render

import (
	"sync"
)

// TextTemplates returns the plain-text templates of the builtin operators.
func TextTemplates() map[string]Template {
	return map[string]Template{
		"add":      {Format: "{0} + {1}"},
		"sub":      {Format: "{0} - {1}"},
		"mul":      {Format: "{0} * {1}"},
		"div":      {Format: "{0} / {1}"},
		"floordiv": {Format: "{0} // {1}"},
		"mod":      {Format: "{0} % {1}"},
		"matmul":   {Format: "{0} @ {1}"},
		"minus":    {Format: "-{0}", Prefix: true},
		"pow":      {Format: "{0}^{1}"},
		"root":     {Format: "{0}^(1/{1})"},
		"abs":      {Format: "|{0}|", Enclosed: []int{0}},

		"eq":               {Format: "{0} = {1}"},
		"approx eq":        {Format: "{0} ~= {1}"},
		"ne":               {Format: "{0} != {1}"},
		"ge":               {Format: "{0} >= {1}"},
		"gt":               {Format: "{0} > {1}"},
		"le":               {Format: "{0} <= {1}"},
		"lt":               {Format: "{0} < {1}"},
		"in":               {Format: "{0} in {1}"},
		"not in":           {Format: "{0} not in {1}"},
		"subset of":        {Format: "{0} subset of {1}"},
		"proper subset of": {Format: "{0} proper subset of {1}"},

		"union":        {Format: "{0} | {1}"},
		"intersection": {Format: "{0} & {1}"},
		"diff":         {Format: `{0} \ {1}`},

		"neg": {Format: "not {0}", Prefix: true},
		"and": {Format: "{0} and {1}"},
		"or":  {Format: "{0} or {1}"},
		"xor": {Format: "{0} xor {1}"},
	}
}

var (
	textOnce   sync.Once
	textEngine *Engine
)

// Text returns the shared plain-text engine: x + y, x - (y - z), |x|.
func Text() *Engine {
	textOnce.Do(func() {
		textEngine = New("text", TextTemplates())
	})
	return textEngine
}
