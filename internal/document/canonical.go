package document

import (
	"fmt"
	"strconv"

	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/ir"
)

// Canonical returns the canonical form of x used for content ids:
//
//	number    {"num": "2.5"}
//	symbol    {"sym": "x"} or {"sym": "x", "neg": true}
//	bool      {"bool": true}
//	operation {"op": "add", "args": [...]}
//
// Numbers are carried as their shortest round-trip string since the
// canonical encoding has no floats.
func Canonical(x expr.Operand) ir.Object {
	if a, ok := x.(*expr.AtomicOperand); ok {
		return canonicalAtom(a)
	}
	children := x.Operands()
	args := make(ir.Array, len(children))
	for i, child := range children {
		args[i] = Canonical(child)
	}
	return ir.Object{
		"op":   ir.String(x.Operator().Name()),
		"args": args,
	}
}

func canonicalAtom(a *expr.AtomicOperand) ir.Object {
	switch a.ValueKind() {
	case expr.ValueSymbol:
		sym, _ := a.Symbol()
		obj := ir.Object{"sym": ir.String(sym.Name)}
		if sym.Negated {
			obj["neg"] = ir.Bool(true)
		}
		return obj
	case expr.ValueBool:
		b, _ := a.Bool()
		return ir.Object{"bool": ir.Bool(b)}
	default:
		n, _ := a.Number()
		return ir.Object{"num": ir.String(expr.FormatNumber(n))}
	}
}

// ID returns the content id of x. Structurally equal trees share an id.
func ID(x expr.Operand) (string, error) {
	if x == nil {
		return "", fmt.Errorf("ID: nil operand")
	}
	return ir.ExpressionID(Canonical(x))
}

// CanonicalJSON returns the canonical JSON bytes of x.
func CanonicalJSON(x expr.Operand) ([]byte, error) {
	if x == nil {
		return nil, fmt.Errorf("CanonicalJSON: nil operand")
	}
	return ir.MarshalCanonical(Canonical(x))
}

// FromCanonical converts a canonical form back into a document.
func FromCanonical(v ir.Value) (*Expression, error) {
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, &InvalidDocumentError{Message: fmt.Sprintf("canonical form must be an object, got %T", v)}
	}
	if _, isOp := obj["op"]; !isOp {
		arg, err := canonicalArg(obj, "")
		if err != nil {
			return nil, err
		}
		return &Expression{Data: []Arg{arg}}, nil
	}
	return canonicalExpression(obj, "")
}

func canonicalExpression(obj ir.Object, path string) (*Expression, error) {
	name, ok := obj["op"].(ir.String)
	if !ok {
		return nil, &InvalidDocumentError{Path: path, Message: "op must be a string"}
	}
	args, ok := obj["args"].(ir.Array)
	if !ok {
		return nil, &InvalidDocumentError{Path: path, Message: "args must be an array"}
	}
	doc := &Expression{Name: string(name)}
	for i, v := range args {
		argPath := fmt.Sprintf("%sargs[%d]", path, i)
		child, ok := v.(ir.Object)
		if !ok {
			return nil, &InvalidDocumentError{Path: argPath, Message: "argument must be an object"}
		}
		if _, isOp := child["op"]; isOp {
			sub, err := canonicalExpression(child, argPath+".")
			if err != nil {
				return nil, err
			}
			doc.Data = append(doc.Data, Arg{DType: DTypeExp, Exp: sub})
			continue
		}
		arg, err := canonicalArg(child, argPath)
		if err != nil {
			return nil, err
		}
		doc.Data = append(doc.Data, arg)
	}
	return doc, nil
}

func canonicalArg(obj ir.Object, path string) (Arg, error) {
	switch {
	case obj["sym"] != nil:
		name, ok := obj["sym"].(ir.String)
		if !ok {
			return Arg{}, &InvalidDocumentError{Path: path, Message: "sym must be a string"}
		}
		sym := expr.Symbol{Name: string(name)}
		if neg, ok := obj["neg"].(ir.Bool); ok {
			sym.Negated = bool(neg)
		}
		return Arg{DType: DTypeStr, Str: sym.String()}, nil
	case obj["bool"] != nil:
		b, ok := obj["bool"].(ir.Bool)
		if !ok {
			return Arg{}, &InvalidDocumentError{Path: path, Message: "bool must be a boolean"}
		}
		return Arg{DType: DTypeBool, Bool: bool(b)}, nil
	case obj["num"] != nil:
		s, ok := obj["num"].(ir.String)
		if !ok {
			return Arg{}, &InvalidDocumentError{Path: path, Message: "num must be a decimal string"}
		}
		n, err := strconv.ParseFloat(string(s), 64)
		if err != nil {
			return Arg{}, &InvalidDocumentError{Path: path, Message: fmt.Sprintf("num %q: %v", s, err)}
		}
		return Arg{DType: DTypeNum, Num: n}, nil
	}
	return Arg{}, &InvalidDocumentError{Path: path, Message: "atom must hold one of sym, num or bool"}
}
