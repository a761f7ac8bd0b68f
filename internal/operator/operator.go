// Package operator defines operator metadata and the registry that hands out
// one live Operator instance per name.
//
// An Operator is immutable apart from its swapped partner, which is resolved
// lazily through the registry that created it. Operators are compared by
// identity: two lookups of the same name in the same registry return the same
// pointer for as long as the instance is reachable.
package operator

import (
	"errors"
	"math"
)

// Infinite is the priority sentinel for relations and functions.
const Infinite = math.MaxInt

// Unbounded is the MaxArgs value of operators without an upper arity limit.
const Unbounded = math.MaxInt

// Category groups operators for listing and documentation.
type Category string

const (
	CategoryArithmetic Category = "arithmetic"
	CategoryRelation   Category = "relation"
	CategoryBoolean    Category = "boolean"
	CategorySet        Category = "set"
	CategoryFunction   Category = "function"
)

// ErrNotSwappable is returned by Operator.Swapped for operators that have no
// swapped partner and are not commutative.
var ErrNotSwappable = errors.New("operator has no swapped partner")

// Definition is the static metadata of an operator.
//
// Zero values are meaningful: MinArgs 0 leaves the operand count unchecked,
// MaxArgs 0 is derived (Unbounded), and a nil Chainable derives to MinArgs > 1.
type Definition struct {
	Name     string   `json:"name"`
	LongName string   `json:"long_name,omitempty"`
	Category Category `json:"category,omitempty"`

	MinArgs   int   `json:"min_args,omitempty"`
	MaxArgs   int   `json:"max_args,omitempty"`
	Chainable *bool `json:"chainable,omitempty"`

	Priority         int  `json:"priority"`
	Associative      bool `json:"associative,omitempty"`
	RightAssociative bool `json:"right_associative,omitempty"`
	Commutative      bool `json:"commutative,omitempty"`
	Comparison       bool `json:"comparison,omitempty"`
	Idempotent       bool `json:"idempotent,omitempty"`

	// EvaluatesToBool marks operators whose result is a truth value.
	EvaluatesToBool bool `json:"evaluates_to_bool,omitempty"`
	// BooleanOperands marks operators that only accept truth-valued operands.
	BooleanOperands bool `json:"boolean_operands,omitempty"`

	Swapped         string   `json:"swapped,omitempty"`
	Inverse         string   `json:"inverse,omitempty"`
	DistributesOver []string `json:"distributes_over,omitempty"`
}

// Bool returns a pointer to b, for Definition.Chainable literals.
func Bool(b bool) *bool {
	return &b
}

// normalize fills in derived fields.
func (d Definition) normalize() Definition {
	if d.LongName == "" {
		d.LongName = d.Name
	}
	if d.Chainable == nil {
		d.Chainable = Bool(d.MinArgs > 1)
	}
	if d.MaxArgs == 0 {
		d.MaxArgs = Unbounded
	}
	if len(d.DistributesOver) > 0 {
		d.DistributesOver = append([]string(nil), d.DistributesOver...)
	}
	return d
}

// Operator is a live, registry-owned operator instance.
type Operator struct {
	def Definition
	reg *Registry
}

// Name returns the canonical operator name ("add", "subset of", ...).
func (o *Operator) Name() string { return o.def.Name }

// LongName returns the descriptive name used in error messages.
func (o *Operator) LongName() string { return o.def.LongName }

func (o *Operator) Category() Category { return o.def.Category }

// MinArgs returns the minimum operand count; 0 means unchecked.
func (o *Operator) MinArgs() int { return o.def.MinArgs }

// MaxArgs returns the maximum operand count, Unbounded when there is none.
func (o *Operator) MaxArgs() int { return o.def.MaxArgs }

func (o *Operator) Chainable() bool { return *o.def.Chainable }

func (o *Operator) Priority() int { return o.def.Priority }

func (o *Operator) Associative() bool { return o.def.Associative }

func (o *Operator) RightAssociative() bool { return o.def.RightAssociative }

func (o *Operator) Commutative() bool { return o.def.Commutative }

func (o *Operator) Comparison() bool { return o.def.Comparison }

func (o *Operator) Idempotent() bool { return o.def.Idempotent }

func (o *Operator) EvaluatesToBool() bool { return o.def.EvaluatesToBool }

func (o *Operator) BooleanOperands() bool { return o.def.BooleanOperands }

// Unary reports whether the operator takes exactly one operand.
func (o *Operator) Unary() bool { return o.def.MinArgs == 1 && o.def.MaxArgs == 1 }

// Relation reports whether the operator is a truth-valued relation or
// connective. Relations bind loosest when rendered.
func (o *Operator) Relation() bool {
	return o.def.EvaluatesToBool && o.def.Priority == Infinite
}

// InverseName returns the name of the operator undoing this one at the same
// priority ("sub" for "add"), or "".
func (o *Operator) InverseName() string { return o.def.Inverse }

// DistributesOver reports whether the operator distributes over the named one.
func (o *Operator) DistributesOver(name string) bool {
	for _, n := range o.def.DistributesOver {
		if n == name {
			return true
		}
	}
	return false
}

// Definition returns a copy of the operator's metadata, with the swapped
// partner as currently resolved by the registry.
func (o *Operator) Definition() Definition {
	d := o.def
	d.Swapped = o.SwappedName()
	if len(d.DistributesOver) > 0 {
		d.DistributesOver = append([]string(nil), d.DistributesOver...)
	}
	return d
}

// SwappedName returns the name of the operator obtained by reversing the
// operand order. The partner may not be registered yet.
func (o *Operator) SwappedName() string {
	if o.reg == nil {
		return o.def.Swapped
	}
	return o.reg.swappedName(o.def.Name)
}

// Swapped returns the operator obtained by reversing the operand order.
// Commutative operators without an explicit partner are their own swap.
func (o *Operator) Swapped() (*Operator, error) {
	name := o.SwappedName()
	if name == "" {
		if o.def.Commutative {
			return o, nil
		}
		return nil, ErrNotSwappable
	}
	return o.reg.Lookup(name)
}

func (o *Operator) String() string { return o.def.Name }
