package operator

// Priorities of the builtin arithmetic tiers. Higher binds tighter.
const (
	PriorityAddition       = 0
	PriorityMultiplication = PriorityAddition + 1
	PriorityExponentiation = PriorityMultiplication + 1
	PriorityModulus        = PriorityExponentiation + 1
)

// Builtin operators, interned in the global registry for the life of the
// process.
var (
	Add      = Global().MustLookup("add")
	Sub      = Global().MustLookup("sub")
	Mul      = Global().MustLookup("mul")
	Div      = Global().MustLookup("div")
	FloorDiv = Global().MustLookup("floordiv")
	Mod      = Global().MustLookup("mod")
	MatMul   = Global().MustLookup("matmul")
	Minus    = Global().MustLookup("minus")
	Pow      = Global().MustLookup("pow")
	Root     = Global().MustLookup("root")
	Abs      = Global().MustLookup("abs")

	Eq             = Global().MustLookup("eq")
	ApproxEq       = Global().MustLookup("approx eq")
	Ne             = Global().MustLookup("ne")
	Ge             = Global().MustLookup("ge")
	Gt             = Global().MustLookup("gt")
	Le             = Global().MustLookup("le")
	Lt             = Global().MustLookup("lt")
	In             = Global().MustLookup("in")
	NotIn          = Global().MustLookup("not in")
	SubsetOf       = Global().MustLookup("subset of")
	ProperSubsetOf = Global().MustLookup("proper subset of")

	Union        = Global().MustLookup("union")
	Intersection = Global().MustLookup("intersection")
	Difference   = Global().MustLookup("diff")

	Neg = Global().MustLookup("neg")
	And = Global().MustLookup("and")
	Or  = Global().MustLookup("or")
	Xor = Global().MustLookup("xor")
)

// registerBuiltins registers all builtin operators.
// Called once by Global() during singleton initialization.
func registerBuiltins(r *Registry) {
	for _, def := range Builtins() {
		r.MustRegister(def)
	}
}

// Builtins returns the builtin operator definitions in registration order.
func Builtins() []Definition {
	arithmetic := func(d Definition) Definition {
		d.Category = CategoryArithmetic
		if d.MinArgs == 0 {
			d.MinArgs = 2
		}
		return d
	}
	relation := func(d Definition) Definition {
		d.Category = CategoryRelation
		d.Priority = Infinite
		d.EvaluatesToBool = true
		d.MinArgs = 2
		return d
	}
	boolean := func(d Definition) Definition {
		d.Category = CategoryBoolean
		d.Priority = Infinite
		d.EvaluatesToBool = true
		d.BooleanOperands = true
		d.Associative = true
		if d.MinArgs == 0 {
			d.MinArgs = 2
		}
		return d
	}
	set := func(d Definition) Definition {
		d.Category = CategorySet
		d.MinArgs = 2
		return d
	}

	return []Definition{
		arithmetic(Definition{Name: "add", LongName: "addition", Priority: PriorityAddition,
			Associative: true, Commutative: true, Inverse: "sub"}),
		arithmetic(Definition{Name: "sub", LongName: "subtraction", Priority: PriorityAddition,
			Inverse: "add"}),
		arithmetic(Definition{Name: "mul", LongName: "multiplication", Priority: PriorityMultiplication,
			Associative: true, Commutative: true, Inverse: "div", DistributesOver: []string{"add"}}),
		arithmetic(Definition{Name: "div", LongName: "division", Priority: PriorityMultiplication,
			Inverse: "mul"}),
		arithmetic(Definition{Name: "floordiv", LongName: "floor division", Priority: PriorityMultiplication}),
		arithmetic(Definition{Name: "mod", LongName: "remainder", Priority: PriorityMultiplication}),
		arithmetic(Definition{Name: "matmul", LongName: "matrix multiplication", Priority: PriorityMultiplication,
			Associative: true}),
		arithmetic(Definition{Name: "minus", LongName: "negation", Priority: PriorityMultiplication,
			MinArgs: 1, MaxArgs: 1}),
		arithmetic(Definition{Name: "pow", LongName: "exponentiation", Priority: PriorityExponentiation,
			Chainable: Bool(false), RightAssociative: true, DistributesOver: []string{"mul"}}),
		arithmetic(Definition{Name: "root", LongName: "root", Priority: PriorityExponentiation,
			Chainable: Bool(false), RightAssociative: true}),
		arithmetic(Definition{Name: "abs", LongName: "modulus", Priority: PriorityModulus,
			MinArgs: 1, MaxArgs: 1, Idempotent: true, DistributesOver: []string{"mul"}}),

		relation(Definition{Name: "eq", LongName: "equality relation", Comparison: true, Commutative: true}),
		relation(Definition{Name: "approx eq", LongName: "approximate equality", Comparison: true,
			Commutative: true}),
		relation(Definition{Name: "ne", LongName: "inequality relation", Comparison: true, Commutative: true}),
		relation(Definition{Name: "ge", LongName: "greater-or-equal inequality relation", Comparison: true,
			Swapped: "le"}),
		relation(Definition{Name: "gt", LongName: "greater-than inequality relation", Comparison: true,
			Swapped: "lt"}),
		relation(Definition{Name: "le", LongName: "less-or-equal inequality relation", Comparison: true,
			Swapped: "ge"}),
		relation(Definition{Name: "lt", LongName: "less-than inequality relation", Comparison: true,
			Swapped: "gt"}),
		relation(Definition{Name: "in", LongName: "membership relation"}),
		relation(Definition{Name: "not in", LongName: "negation of membership relation"}),
		relation(Definition{Name: "subset of", LongName: "inclusion relation"}),
		relation(Definition{Name: "proper subset of", LongName: "proper inclusion relation"}),

		set(Definition{Name: "union", LongName: "set union", Priority: PriorityAddition,
			Associative: true, Commutative: true}),
		set(Definition{Name: "intersection", LongName: "set intersection", Priority: PriorityMultiplication,
			Associative: true, Commutative: true, DistributesOver: []string{"union"}}),
		set(Definition{Name: "diff", LongName: "set difference", Priority: PriorityAddition}),

		boolean(Definition{Name: "neg", LongName: "logical negation", MinArgs: 1, MaxArgs: 1}),
		boolean(Definition{Name: "and", LongName: "conjunction", Commutative: true}),
		boolean(Definition{Name: "or", LongName: "disjunction", Commutative: true}),
		boolean(Definition{Name: "xor", LongName: "exclusive disjunction", Commutative: true}),
	}
}
