package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/operator"
	"github.com/roach88/exprtree/internal/render"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedType = "E100" // unsupported value type for validation

	// Operator errors (E101-E109)
	ErrInvalidOperatorName = "E101" // empty or malformed name
	ErrInvalidArity        = "E102" // min_args/max_args out of range
	ErrInvalidPriority     = "E103" // negative priority
	ErrUnknownCategory     = "E104" // category not recognised
	ErrDuplicateName       = "E105" // operator or expression defined twice
	ErrUnknownReference    = "E106" // swapped/inverse/distributes_over names nothing
	ErrSwappedMismatch     = "E107" // swapped partner points elsewhere
	ErrInvalidTemplate     = "E108" // template does not fit the operator
	ErrConflictingFlags    = "E109" // flags that cannot hold together

	// Expression errors (E110-E119)
	ErrUnknownOperator     = "E110" // expression uses an unregistered operator
	ErrInvalidArgument     = "E111" // bad dtype or missing payload
	ErrConstruction        = "E112" // the tree cannot be built (arity, operand types)
	ErrUndefinedExpression = "E113" // ref to a label not in the catalog
	ErrReferenceCycle      = "E114" // expressions reference each other
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled catalog or operator.
// Returns all errors found (does not fail-fast).
// Catalogs are checked against the builtin operators.
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *Catalog:
		return ValidateCatalog(val, operator.Global())
	case Catalog:
		return ValidateCatalog(&val, operator.Global())
	case *OperatorSpec:
		return validateOperator(val, fmt.Sprintf("operator.%q", val.Name))
	case OperatorSpec:
		return validateOperator(&val, fmt.Sprintf("operator.%q", val.Name))
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

// ValidateCatalog validates c as an extension of base.
//
// Operators are checked on their own and against each other; expressions
// are checked for unknown operators, bad arguments, dangling and cyclic
// references, and finally built to surface construction errors.
func ValidateCatalog(c *Catalog, base *operator.Registry) []ValidationError {
	var errs []ValidationError

	known := make(map[string]bool)
	for _, name := range base.Names() {
		known[name] = true
	}
	catalogOps := make(map[string]*OperatorSpec, len(c.Operators))
	for i := range c.Operators {
		spec := &c.Operators[i]
		field := fmt.Sprintf("operator.%q", spec.Name)
		errs = append(errs, validateOperator(spec, field)...)

		// E105: duplicate within the catalog or shadowing a base operator
		switch {
		case catalogOps[spec.Name] != nil:
			errs = append(errs, withLine(ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate operator name: %q", spec.Name),
				Code:    ErrDuplicateName,
			}, spec.Pos.Line()))
		case known[spec.Name]:
			errs = append(errs, withLine(ValidationError{
				Field:   field,
				Message: fmt.Sprintf("operator %q is already defined", spec.Name),
				Code:    ErrDuplicateName,
			}, spec.Pos.Line()))
		}
		catalogOps[spec.Name] = spec
	}
	for name := range catalogOps {
		known[name] = true
	}

	for i := range c.Operators {
		errs = append(errs, validateOperatorRefs(&c.Operators[i], base, catalogOps, known)...)
	}

	errs = append(errs, validateExpressions(c, known)...)
	if len(errs) > 0 {
		return errs
	}

	// Construction errors only make sense once the catalog is sound.
	errs = append(errs, validateConstruction(c)...)
	return errs
}

// validateOperator checks the fields of one operator.
func validateOperator(spec *OperatorSpec, field string) []ValidationError {
	var errs []ValidationError
	line := spec.Pos.Line()
	add := func(suffix, code, format string, args ...any) {
		errs = append(errs, withLine(ValidationError{
			Field:   field + suffix,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		}, line))
	}

	// E101: name
	if strings.TrimSpace(spec.Name) == "" {
		add(".name", ErrInvalidOperatorName, "operator name is required and must be non-empty")
	} else if spec.Name != strings.TrimSpace(spec.Name) || strings.ContainsAny(spec.Name, "{}") {
		add(".name", ErrInvalidOperatorName, "invalid operator name %q", spec.Name)
	}

	// E102: arity
	if spec.MinArgs < 0 {
		add(".min_args", ErrInvalidArity, "min_args must be non-negative, got %d", spec.MinArgs)
	}
	if spec.MaxArgs < 0 {
		add(".max_args", ErrInvalidArity, "max_args must be non-negative, got %d", spec.MaxArgs)
	} else if spec.MaxArgs != 0 && spec.MaxArgs < spec.MinArgs {
		add(".max_args", ErrInvalidArity, "max_args %d is below min_args %d", spec.MaxArgs, spec.MinArgs)
	}

	// E103: priority
	if spec.Priority < 0 {
		add(".priority", ErrInvalidPriority, "priority must be non-negative, got %d", spec.Priority)
	}

	// E104: category
	if !isValidCategory(spec.Category) {
		add(".category", ErrUnknownCategory, "unknown category %q", spec.Category)
	}

	// E109: conflicting flags
	if spec.Associative && spec.RightAssociative {
		add("", ErrConflictingFlags, "an operator cannot be both associative and right-associative")
	}
	if spec.BooleanOperands && !spec.EvaluatesToBool {
		add("", ErrConflictingFlags, "boolean_operands requires evaluates_to_bool")
	}

	// E108: templates
	for _, t := range []struct {
		suffix   string
		template *render.Template
	}{{".text", spec.Text}, {".latex", spec.LaTeX}} {
		if t.template == nil {
			continue
		}
		if msg := checkTemplate(*t.template, spec.Definition); msg != "" {
			add(t.suffix, ErrInvalidTemplate, "%s", msg)
		}
	}

	return errs
}

// checkTemplate returns why t cannot display operands of def, or "".
func checkTemplate(t render.Template, def operator.Definition) string {
	slots, err := t.Slots()
	if err != nil {
		return err.Error()
	}
	if slots == 0 {
		return fmt.Sprintf("template %q has no placeholders", t.Format)
	}
	maxArgs := def.MaxArgs
	if maxArgs == 0 {
		maxArgs = operator.Unbounded
	}
	switch {
	case slots > maxArgs:
		return fmt.Sprintf("template uses %d operands but the operator takes at most %d", slots, maxArgs)
	case def.MinArgs > 0 && slots > def.MinArgs:
		return fmt.Sprintf("template uses %d operands but the operator may have only %d", slots, def.MinArgs)
	case maxArgs > slots && slots != 2:
		return fmt.Sprintf("only two-operand templates can fold extra operands, template has %d", slots)
	case t.Prefix && slots != 1:
		return "prefix templates take exactly one operand"
	}
	for _, i := range t.Enclosed {
		if i < 0 || i >= slots {
			return fmt.Sprintf("enclosed index %d is out of range", i)
		}
	}
	return ""
}

// validateOperatorRefs checks swapped, inverse and distributes_over.
func validateOperatorRefs(spec *OperatorSpec, base *operator.Registry, catalogOps map[string]*OperatorSpec, known map[string]bool) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("operator.%q", spec.Name)
	line := spec.Pos.Line()

	// E106: references must name a known operator
	check := func(suffix, ref string) {
		if ref != "" && !known[ref] {
			errs = append(errs, withLine(ValidationError{
				Field:   field + suffix,
				Message: fmt.Sprintf("unknown operator %q", ref),
				Code:    ErrUnknownReference,
			}, line))
		}
	}
	check(".swapped", spec.Swapped)
	check(".inverse", spec.Inverse)
	for i, name := range spec.DistributesOver {
		check(fmt.Sprintf(".distributes_over[%d]", i), name)
	}

	// E107: a swapped partner must not already point at a third operator
	if spec.Swapped != "" && spec.Swapped != spec.Name {
		var partnerSwapped string
		if partner, ok := catalogOps[spec.Swapped]; ok {
			partnerSwapped = partner.Swapped
		} else if def, ok := base.Definition(spec.Swapped); ok {
			partnerSwapped = def.Swapped
		}
		if partnerSwapped != "" && partnerSwapped != spec.Name {
			errs = append(errs, withLine(ValidationError{
				Field:   field + ".swapped",
				Message: fmt.Sprintf("%q swaps to %q, not %q", spec.Swapped, partnerSwapped, spec.Name),
				Code:    ErrSwappedMismatch,
			}, line))
		}
	}

	return errs
}

// validateExpressions checks expression structure without building.
func validateExpressions(c *Catalog, known map[string]bool) []ValidationError {
	var errs []ValidationError
	labels := make(map[string]bool, len(c.Expressions))

	for _, named := range c.Expressions {
		field := "expression." + named.Label
		line := named.Pos.Line()

		// E105: duplicate label
		if labels[named.Label] {
			errs = append(errs, withLine(ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate expression label: %q", named.Label),
				Code:    ErrDuplicateName,
			}, line))
		}
		labels[named.Label] = true

		walkDocument(&named.Doc, field, func(doc *document.Expression, path string) {
			// E110: unknown operator
			if doc.Name != "" && !known[doc.Name] {
				errs = append(errs, withLine(ValidationError{
					Field:   path + ".name",
					Message: fmt.Sprintf("unknown operator %q", doc.Name),
					Code:    ErrUnknownOperator,
				}, line))
			}
			for i, arg := range doc.Data {
				if msg := checkArg(arg); msg != "" {
					errs = append(errs, withLine(ValidationError{
						Field:   fmt.Sprintf("%s.data[%d]", path, i),
						Message: msg,
						Code:    ErrInvalidArgument,
					}, line))
				}
			}
		})
	}

	// E113: dangling references
	for _, named := range c.Expressions {
		for _, ref := range named.Doc.Refs() {
			if ref != "" && !labels[ref] {
				errs = append(errs, withLine(ValidationError{
					Field:   "expression." + named.Label,
					Message: fmt.Sprintf("reference to undefined expression %q", ref),
					Code:    ErrUndefinedExpression,
				}, named.Pos.Line()))
			}
		}
	}

	// E114: reference cycles
	for _, cycle := range AnalyzeCycles(c.Expressions) {
		errs = append(errs, ValidationError{
			Field:   "expression." + cycle.Path[0],
			Message: cycle.Message,
			Code:    ErrReferenceCycle,
		})
	}

	return errs
}

// validateConstruction builds the catalog and reports each expression that
// fails (E112). Operator registration failures are reported as E105.
func validateConstruction(c *Catalog) []ValidationError {
	env, err := c.Install()
	if err != nil {
		code := ErrConstruction
		if errors.Is(err, operator.ErrDuplicateOperator) {
			code = ErrDuplicateName
		}
		return []ValidationError{{Field: "operator", Message: err.Error(), Code: code}}
	}
	order, err := ResolveOrder(c.Expressions)
	if err != nil {
		return []ValidationError{{Field: "expression", Message: err.Error(), Code: ErrReferenceCycle}}
	}

	var errs []ValidationError
	failed := env.buildAll(c, order)
	for _, named := range c.Expressions {
		if err, ok := failed[named.Label]; ok {
			msg := err.Error()
			if kind := expr.ErrorKind(err); kind != "" {
				msg = kind + ": " + msg
			}
			errs = append(errs, withLine(ValidationError{
				Field:   "expression." + named.Label,
				Message: msg,
				Code:    ErrConstruction,
			}, named.Pos.Line()))
		}
	}
	return errs
}

// walkDocument calls fn for doc and every nested expression.
func walkDocument(doc *document.Expression, path string, fn func(*document.Expression, string)) {
	fn(doc, path)
	for i, arg := range doc.Data {
		if arg.DType == document.DTypeExp && arg.Exp != nil {
			walkDocument(arg.Exp, fmt.Sprintf("%s.data[%d].exp", path, i), fn)
		}
	}
}

// checkArg returns why arg is malformed, or "".
func checkArg(arg document.Arg) string {
	switch arg.DType {
	case document.DTypeExp:
		if arg.Exp == nil {
			return "dtype exp requires exp"
		}
	case document.DTypeStr:
		if strings.TrimSpace(arg.Str) == "" {
			return "dtype str requires a non-empty symbol"
		}
	case document.DTypeRef:
		if arg.Ref == "" {
			return "dtype ref requires ref"
		}
	case document.DTypeNum, document.DTypeBool:
	case "":
		return "dtype is required"
	default:
		return fmt.Sprintf("unknown dtype %q", arg.DType)
	}
	return ""
}

func isValidCategory(c operator.Category) bool {
	switch c {
	case "", operator.CategoryArithmetic, operator.CategoryRelation, operator.CategoryBoolean,
		operator.CategorySet, operator.CategoryFunction:
		return true
	}
	return false
}

func withLine(e ValidationError, line int) ValidationError {
	if line > 0 {
		e.Line = line
	}
	return e
}
