package compiler

import (
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Catalog is the compiled content of one CUE instance: operator
// definitions under "operator" and named expressions under "expression".
type Catalog struct {
	Operators   []OperatorSpec    `json:"operators"`
	Expressions []NamedExpression `json:"expressions"`
}

// CompileCatalog compiles every operator and expression in v.
// Errors are collected, not fail-fast: a catalog with one bad entry still
// yields its good entries alongside the error list.
func CompileCatalog(v cue.Value) (*Catalog, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	catalog := &Catalog{}
	var errs []error

	opsVal := v.LookupPath(cue.ParsePath("operator"))
	if opsVal.Exists() {
		iter, err := opsVal.Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err))
		} else {
			for iter.Next() {
				spec, err := CompileOperator(iter.Value())
				if err != nil {
					errs = append(errs, fmt.Errorf("operator %s: %w", iter.Selector(), err))
					continue
				}
				slog.Debug("compiled operator", "name", spec.Name)
				catalog.Operators = append(catalog.Operators, *spec)
			}
		}
	}

	exprsVal := v.LookupPath(cue.ParsePath("expression"))
	if exprsVal.Exists() {
		iter, err := exprsVal.Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err))
		} else {
			for iter.Next() {
				named, err := CompileExpression(iter.Value())
				if err != nil {
					errs = append(errs, fmt.Errorf("expression %s: %w", iter.Selector(), err))
					continue
				}
				slog.Debug("compiled expression", "label", named.Label)
				catalog.Expressions = append(catalog.Expressions, *named)
			}
		}
	}

	return catalog, errs
}

// CompileString compiles CUE source text into a catalog.
// The filename is used in error positions only.
func CompileString(filename, src string) (*Catalog, []error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return CompileCatalog(v)
}

// CompileFile compiles a single CUE file into a catalog.
func CompileFile(path string) (*Catalog, []error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read catalog: %w", err)}
	}
	return CompileString(path, string(src))
}

// Operator returns the catalog operator named name.
func (c *Catalog) Operator(name string) (OperatorSpec, bool) {
	for _, spec := range c.Operators {
		if spec.Name == name {
			return spec, true
		}
	}
	return OperatorSpec{}, false
}

// Expression returns the catalog expression labelled label.
func (c *Catalog) Expression(label string) (NamedExpression, bool) {
	for _, named := range c.Expressions {
		if named.Label == label {
			return named, true
		}
	}
	return NamedExpression{}, false
}
