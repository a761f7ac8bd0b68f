package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/exprtree/internal/operator"
	"github.com/roach88/exprtree/internal/render"
)

// OperatorSpec is a compiled catalog operator: its definition plus the
// optional templates that teach the render backends to display it.
type OperatorSpec struct {
	operator.Definition
	Text  *render.Template `json:"text,omitempty"`
	LaTeX *render.Template `json:"latex,omitempty"`

	Pos token.Pos `json:"-"`
}

// priorityNames are the symbolic priorities accepted in catalogs.
var priorityNames = map[string]int{
	"addition":       operator.PriorityAddition,
	"multiplication": operator.PriorityMultiplication,
	"exponentiation": operator.PriorityExponentiation,
	"modulus":        operator.PriorityModulus,
	"infinite":       operator.Infinite,
}

// CompileOperator parses a CUE value into an OperatorSpec.
// The operator name is the struct label:
//
//	operator: "cross": {
//		long_name:   "cross product"
//		min_args:    2
//		priority:    "multiplication"
//		associative: false
//		text:        "{0} x {1}"
//		latex:       {format: "{0} \\times {1}"}
//	}
func CompileOperator(v cue.Value) (*OperatorSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &OperatorSpec{Pos: v.Pos()}
	spec.Name = labelOf(v)
	if spec.Name == "" {
		return nil, &CompileError{Field: "name", Message: "operator name is required", Pos: v.Pos()}
	}

	var err error
	if spec.LongName, err = optionalString(v, "long_name"); err != nil {
		return nil, err
	}
	category, err := optionalString(v, "category")
	if err != nil {
		return nil, err
	}
	spec.Category = operator.Category(category)

	if spec.MinArgs, err = optionalInt(v, "min_args"); err != nil {
		return nil, err
	}
	if spec.MaxArgs, err = parseMaxArgs(v); err != nil {
		return nil, err
	}
	if spec.Priority, err = parsePriority(v); err != nil {
		return nil, err
	}

	chainable := v.LookupPath(cue.ParsePath("chainable"))
	if chainable.Exists() {
		b, err := chainable.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Chainable = operator.Bool(b)
	}

	flags := []struct {
		field string
		dst   *bool
	}{
		{"associative", &spec.Associative},
		{"right_associative", &spec.RightAssociative},
		{"commutative", &spec.Commutative},
		{"comparison", &spec.Comparison},
		{"idempotent", &spec.Idempotent},
		{"evaluates_to_bool", &spec.EvaluatesToBool},
		{"boolean_operands", &spec.BooleanOperands},
	}
	for _, f := range flags {
		if *f.dst, err = optionalBool(v, f.field); err != nil {
			return nil, err
		}
	}

	if spec.Swapped, err = optionalString(v, "swapped"); err != nil {
		return nil, err
	}
	if spec.Inverse, err = optionalString(v, "inverse"); err != nil {
		return nil, err
	}
	if spec.DistributesOver, err = optionalStrings(v, "distributes_over"); err != nil {
		return nil, err
	}

	if spec.Text, err = parseTemplate(v, "text"); err != nil {
		return nil, err
	}
	if spec.LaTeX, err = parseTemplate(v, "latex"); err != nil {
		return nil, err
	}

	return spec, nil
}

// parsePriority accepts an int or one of the names in priorityNames.
// A missing priority is 0, the addition tier.
func parsePriority(v cue.Value) (int, error) {
	pv := v.LookupPath(cue.ParsePath("priority"))
	if !pv.Exists() {
		return 0, nil
	}
	switch pv.IncompleteKind() {
	case cue.IntKind:
		n, err := pv.Int64()
		if err != nil {
			return 0, formatCUEError(err)
		}
		return int(n), nil
	case cue.StringKind:
		name, err := pv.String()
		if err != nil {
			return 0, formatCUEError(err)
		}
		p, ok := priorityNames[name]
		if !ok {
			return 0, &CompileError{
				Field:   "priority",
				Message: fmt.Sprintf("unknown priority %q", name),
				Pos:     pv.Pos(),
			}
		}
		return p, nil
	default:
		return 0, &CompileError{
			Field:   "priority",
			Message: fmt.Sprintf("priority must be an int or a tier name, got %v", pv.IncompleteKind()),
			Pos:     pv.Pos(),
		}
	}
}

// parseMaxArgs accepts an int or "unbounded". A missing value is 0, which
// the registry derives to Unbounded.
func parseMaxArgs(v cue.Value) (int, error) {
	mv := v.LookupPath(cue.ParsePath("max_args"))
	if !mv.Exists() {
		return 0, nil
	}
	if s, err := mv.String(); err == nil {
		if s != "unbounded" {
			return 0, &CompileError{
				Field:   "max_args",
				Message: fmt.Sprintf("max_args must be an int or \"unbounded\", got %q", s),
				Pos:     mv.Pos(),
			}
		}
		return operator.Unbounded, nil
	}
	n, err := mv.Int64()
	if err != nil {
		return 0, intError("max_args", mv, err)
	}
	return int(n), nil
}

// parseTemplate reads a template given either as a bare format string or as
// {format, prefix, enclosed}.
func parseTemplate(v cue.Value, field string) (*render.Template, error) {
	tv := v.LookupPath(cue.ParsePath(field))
	if !tv.Exists() {
		return nil, nil
	}
	if format, err := tv.String(); err == nil {
		return &render.Template{Format: format}, nil
	}

	fv := tv.LookupPath(cue.ParsePath("format"))
	if !fv.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: "template must be a string or a struct with a format field",
			Pos:     tv.Pos(),
		}
	}
	t := &render.Template{}
	var err error
	if t.Format, err = fv.String(); err != nil {
		return nil, formatCUEError(err)
	}
	if t.Prefix, err = optionalBool(tv, "prefix"); err != nil {
		return nil, err
	}

	ev := tv.LookupPath(cue.ParsePath("enclosed"))
	if ev.Exists() {
		iter, err := ev.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			n, err := iter.Value().Int64()
			if err != nil {
				return nil, intError(field+".enclosed", iter.Value(), err)
			}
			t.Enclosed = append(t.Enclosed, int(n))
		}
	}
	return t, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// optionalInt reads an integer field. Floats are rejected: arities are
// counts.
func optionalInt(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, intError(field, fv, err)
	}
	return int(n), nil
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var result []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		result = append(result, s)
	}
	return result, nil
}

func intError(field string, v cue.Value, err error) error {
	switch v.IncompleteKind() {
	case cue.FloatKind, cue.NumberKind:
		return &CompileError{Field: field, Message: "must be an int, not a float", Pos: v.Pos()}
	}
	return formatCUEError(err)
}

// labelOf returns the last path selector of v without quotes.
func labelOf(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return strings.Trim(sels[len(sels)-1].String(), `"`)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
