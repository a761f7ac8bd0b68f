package compiler

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/exprtree/internal/document"
)

// NamedExpression is a catalog expression with its label.
type NamedExpression struct {
	Label string              `json:"label"`
	Doc   document.Expression `json:"expression"`

	Pos token.Pos `json:"-"`
}

// CompileExpression parses a CUE value into a NamedExpression.
// The value uses the document layout and is labelled by its struct key:
//
//	expression: quadratic: {
//		name: "add"
//		data: [
//			{dtype: "exp", exp: {name: "pow", data: [{dtype: "str", str: "x"}, {dtype: "num", num: 2}]}},
//			{dtype: "ref", ref: "linear"},
//		]
//	}
func CompileExpression(v cue.Value) (*NamedExpression, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	named := &NamedExpression{Label: labelOf(v), Pos: v.Pos()}
	if named.Label == "" {
		return nil, &CompileError{Field: "expression", Message: "expression label is required", Pos: v.Pos()}
	}

	if !v.LookupPath(cue.ParsePath("data")).Exists() {
		return nil, &CompileError{
			Field:   "data",
			Message: "expression data is required",
			Pos:     v.Pos(),
		}
	}
	if err := v.Decode(&named.Doc); err != nil {
		return nil, formatCUEError(err)
	}
	return named, nil
}
