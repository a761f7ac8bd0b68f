package compiler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/operator"
	"github.com/roach88/exprtree/internal/render"
)

// Environment is a catalog installed on top of the builtin operators.
//
// Catalog operators live in their own registry, never in operator.Global,
// so two catalogs can define the same name independently.
type Environment struct {
	Registry *operator.Registry
	Builder  *expr.Builder
	Text     *render.Engine
	LaTeX    *render.Engine

	// Expressions holds the built catalog expressions by label.
	Expressions map[string]expr.Operand
	// Order lists the labels in dependency order.
	Order []string
}

// Install registers the catalog operators in a fresh builtin registry and
// extends the render backends with their templates. Expressions are not
// built; use Load for that.
func (c *Catalog) Install() (*Environment, error) {
	reg := operator.NewBuiltinRegistry()
	text := make(map[string]render.Template)
	latex := make(map[string]render.Template)

	for _, spec := range c.Operators {
		if err := reg.Register(spec.Definition); err != nil {
			return nil, err
		}
		if spec.Text != nil {
			text[spec.Name] = *spec.Text
		}
		if spec.LaTeX != nil {
			latex[spec.Name] = *spec.LaTeX
		}
		slog.Debug("installed operator", "name", spec.Name)
	}

	return &Environment{
		Registry:    reg,
		Builder:     expr.NewBuilder(reg),
		Text:        render.Text().With(text),
		LaTeX:       render.LaTeX().With(latex),
		Expressions: make(map[string]expr.Operand),
	}, nil
}

// Load installs the catalog and builds every expression in dependency
// order. It stops at the first expression that fails to build.
func (c *Catalog) Load() (*Environment, error) {
	env, err := c.Install()
	if err != nil {
		return nil, err
	}
	order, err := ResolveOrder(c.Expressions)
	if err != nil {
		return nil, err
	}
	env.Order = order

	for _, label := range order {
		if err := env.build(c, label); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// buildAll builds every expression it can and returns the failures by
// label. Expressions referencing a failed one are skipped.
func (env *Environment) buildAll(c *Catalog, order []string) map[string]error {
	failed := make(map[string]error)
	for _, label := range order {
		named, _ := c.Expression(label)
		if blockedBy(named.Doc.Refs(), failed) {
			continue
		}
		if err := env.build(c, label); err != nil {
			failed[label] = err
		}
	}
	return failed
}

func blockedBy(refs []string, failed map[string]error) bool {
	for _, ref := range refs {
		if _, ok := failed[ref]; ok {
			return true
		}
	}
	return false
}

func (env *Environment) build(c *Catalog, label string) error {
	named, ok := c.Expression(label)
	if !ok {
		return fmt.Errorf("no expression %q", label)
	}
	x, err := named.Doc.BuildWith(env.Builder, env.Resolve)
	if err != nil {
		return fmt.Errorf("expression %q: %w", label, err)
	}
	env.Expressions[label] = x
	return nil
}

// Resolve returns the built catalog expression labelled ref.
func (env *Environment) Resolve(ref string) (expr.Operand, error) {
	x, ok := env.Expressions[ref]
	if !ok {
		return nil, &document.InvalidDocumentError{Message: fmt.Sprintf("no expression labelled %q", ref)}
	}
	return x, nil
}

// Render returns the text and LaTeX forms of x under the environment's
// backends.
func (env *Environment) Render(x expr.Operand) (text, latex string, err error) {
	if text, err = env.Text.Render(x); err != nil {
		return "", "", err
	}
	if latex, err = env.LaTeX.Render(x); err != nil {
		return "", "", err
	}
	return text, latex, nil
}
