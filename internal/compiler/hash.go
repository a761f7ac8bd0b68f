package compiler

import (
	"github.com/roach88/exprtree/internal/ir"
	"github.com/roach88/exprtree/internal/operator"
)

// CanonicalOperator returns the canonical form of def used for operator
// ids. Derived fields are filled in first, so a definition hashes the same
// whether MaxArgs and Chainable were spelled out or left to their defaults.
// Unbounded and Infinite are written as names, since the canonical
// encoding carries no integer that large portably.
func CanonicalOperator(def operator.Definition) ir.Object {
	if def.LongName == "" {
		def.LongName = def.Name
	}
	if def.MaxArgs == 0 {
		def.MaxArgs = operator.Unbounded
	}
	chainable := def.MinArgs > 1
	if def.Chainable != nil {
		chainable = *def.Chainable
	}

	obj := ir.Object{
		"name":              ir.String(def.Name),
		"long_name":         ir.String(def.LongName),
		"category":          ir.String(string(def.Category)),
		"min_args":          ir.Int(def.MinArgs),
		"max_args":          limit(def.MaxArgs, operator.Unbounded, "unbounded"),
		"chainable":         ir.Bool(chainable),
		"priority":          limit(def.Priority, operator.Infinite, "infinite"),
		"associative":       ir.Bool(def.Associative),
		"right_associative": ir.Bool(def.RightAssociative),
		"commutative":       ir.Bool(def.Commutative),
		"comparison":        ir.Bool(def.Comparison),
		"idempotent":        ir.Bool(def.Idempotent),
		"evaluates_to_bool": ir.Bool(def.EvaluatesToBool),
		"boolean_operands":  ir.Bool(def.BooleanOperands),
	}
	if def.Swapped != "" {
		obj["swapped"] = ir.String(def.Swapped)
	}
	if def.Inverse != "" {
		obj["inverse"] = ir.String(def.Inverse)
	}
	if len(def.DistributesOver) > 0 {
		over := make(ir.Array, len(def.DistributesOver))
		for i, name := range def.DistributesOver {
			over[i] = ir.String(name)
		}
		obj["distributes_over"] = over
	}
	return obj
}

func limit(n, sentinel int, name string) ir.Value {
	if n == sentinel {
		return ir.String(name)
	}
	return ir.Int(n)
}

// OperatorID returns the content id of def.
func OperatorID(def operator.Definition) (string, error) {
	return ir.OperatorID(CanonicalOperator(def))
}
