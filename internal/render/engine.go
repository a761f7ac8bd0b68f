// Package render turns expression trees into text.
//
// An Engine pairs per-operator templates with a parenthesisation Policy.
// Backends (plain text, LaTeX) differ only in templates, atom formatting and
// grouping delimiters; the tree walk is shared.
package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/operator"
)

// MissingTemplateError is returned when rendering an operator the engine has
// no template for.
type MissingTemplateError struct {
	Engine   string
	Operator string
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("%s renderer: no template for operator %q", e.Engine, e.Operator)
}

// Engine renders expression trees.
//
// Engines are immutable after construction and safe for concurrent use.
type Engine struct {
	name      string
	templates map[string]Template
	policy    Policy
	atom      func(*expr.AtomicOperand) string
	open      string
	close     string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces the parenthesisation policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithAtomFormatter replaces the atom formatter.
func WithAtomFormatter(f func(*expr.AtomicOperand) string) Option {
	return func(e *Engine) { e.atom = f }
}

// WithParentheses sets the grouping delimiters.
func WithParentheses(left, right string) Option {
	return func(e *Engine) {
		e.open = left
		e.close = right
	}
}

// New creates an engine named name (used in error messages).
func New(name string, templates map[string]Template, opts ...Option) *Engine {
	e := &Engine{
		name:      name,
		templates: maps.Clone(templates),
		policy:    Precedence{},
		atom:      func(a *expr.AtomicOperand) string { return a.String() },
		open:      "(",
		close:     ")",
	}
	if e.templates == nil {
		e.templates = map[string]Template{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name.
func (e *Engine) Name() string { return e.name }

// Template returns the template registered for an operator name.
func (e *Engine) Template(name string) (Template, bool) {
	t, ok := e.templates[name]
	return t, ok
}

// Operators returns the names the engine has templates for, sorted.
func (e *Engine) Operators() []string {
	return slices.Sorted(maps.Keys(e.templates))
}

// With returns a copy of the engine with templates added or replaced.
func (e *Engine) With(templates map[string]Template) *Engine {
	clone := *e
	clone.templates = maps.Clone(e.templates)
	maps.Copy(clone.templates, templates)
	return &clone
}

// Render returns the text form of x.
func (e *Engine) Render(x expr.Operand) (string, error) {
	if x == nil {
		return "", fmt.Errorf("%s renderer: nil operand", e.name)
	}
	var sb strings.Builder
	if err := e.render(&sb, x); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// MustRender is like Render but panics on error.
func (e *Engine) MustRender(x expr.Operand) string {
	s, err := e.Render(x)
	if err != nil {
		panic(err)
	}
	return s
}

func (e *Engine) render(sb *strings.Builder, x expr.Operand) error {
	if a, ok := x.(*expr.AtomicOperand); ok {
		sb.WriteString(e.atom(a))
		return nil
	}

	op := x.Operator()
	t, ok := e.templates[op.Name()]
	if !ok {
		return &MissingTemplateError{Engine: e.name, Operator: op.Name()}
	}
	slots, err := t.Slots()
	if err != nil {
		return err
	}

	operands := x.Operands()
	if len(operands) < slots {
		return fmt.Errorf("%s renderer: template %q needs %d operands, %s has %d",
			e.name, t.Format, slots, op.Name(), len(operands))
	}
	if len(operands) > slots && slots != 2 {
		return fmt.Errorf("%s renderer: cannot chain %d operands through template %q",
			e.name, len(operands), t.Format)
	}

	args := make([]string, slots)
	for i := range slots {
		if args[i], err = e.child(op, t, i, i, operands[i]); err != nil {
			return err
		}
	}
	result, err := t.Apply(args...)
	if err != nil {
		return err
	}

	// Extra operands of a chained node fold through the template:
	// ((a op b) op c) op d, with the accumulated text taken verbatim.
	for i := slots; i < len(operands); i++ {
		next, err := e.child(op, t, i, 1, operands[i])
		if err != nil {
			return err
		}
		if result, err = t.Apply(result, next); err != nil {
			return err
		}
	}

	sb.WriteString(result)
	return nil
}

func (e *Engine) child(parent *operator.Operator, t Template, index, placeholder int, x expr.Operand) (string, error) {
	slot := Slot{Parent: parent, Template: t, Index: index, Placeholder: placeholder}
	if op := x.Operator(); op != nil {
		slot.ChildTemplate = e.templates[op.Name()]
	}

	var sb strings.Builder
	if err := e.render(&sb, x); err != nil {
		return "", err
	}
	if e.policy.Parenthesize(slot, x) {
		return e.open + sb.String() + e.close, nil
	}
	return sb.String(), nil
}
