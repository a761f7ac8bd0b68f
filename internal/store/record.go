package store

import (
	"fmt"

	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/ir"
)

// Record is a stored expression.
type Record struct {
	ID            string `json:"id"`
	Canonical     string `json:"canonical"`
	Root          string `json:"root"`
	Kind          string `json:"kind"`
	Depth         int    `json:"depth"`
	Text          string `json:"text"`
	LaTeX         string `json:"latex"`
	FormatVersion string `json:"format_version"`
}

// NewRecord computes the stored form of x. text and latex are the rendered
// forms; latex may be empty.
func NewRecord(x expr.Operand, text, latex string) (Record, error) {
	canonical, err := document.CanonicalJSON(x)
	if err != nil {
		return Record{}, fmt.Errorf("new record: %w", err)
	}
	id, err := document.ID(x)
	if err != nil {
		return Record{}, fmt.Errorf("new record: %w", err)
	}

	var root string
	if op := x.Operator(); op != nil {
		root = op.Name()
	}
	return Record{
		ID:            id,
		Canonical:     string(canonical),
		Root:          root,
		Kind:          x.Kind().String(),
		Depth:         expr.Depth(x),
		Text:          text,
		LaTeX:         latex,
		FormatVersion: ir.FormatVersion,
	}, nil
}

// Operand rebuilds the stored tree through b.
func (r Record) Operand(b *expr.Builder) (expr.Operand, error) {
	v, err := ir.Unmarshal([]byte(r.Canonical))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	doc, err := document.FromCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	x, err := doc.Build(b)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return x, nil
}

// Verify reports whether the canonical form still hashes to the record id.
func (r Record) Verify() error {
	v, err := ir.Unmarshal([]byte(r.Canonical))
	if err != nil {
		return fmt.Errorf("record %s: %w", r.ID, err)
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return fmt.Errorf("record %s: canonical form is not an object", r.ID)
	}
	id, err := ir.ExpressionID(obj)
	if err != nil {
		return fmt.Errorf("record %s: %w", r.ID, err)
	}
	if id != r.ID {
		return fmt.Errorf("record %s: content hashes to %s", r.ID, id)
	}
	return nil
}
