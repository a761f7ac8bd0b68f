package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/exprtree/internal/compiler"
	"github.com/roach88/exprtree/internal/document"
	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/render"
	"github.com/roach88/exprtree/internal/store"
)

// Harness is the suite execution engine.
type Harness struct {
	env    *compiler.Environment
	store  *store.Store
	logger *slog.Logger
}

// Option configures a harness run.
type Option func(*Harness)

// WithLogger routes run logs to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// Run executes a suite and returns the result.
//
// Each suite runs in a fresh in-memory database for isolation, with the
// batch id fixed to "suite:<name>".
//
// Execution flow:
// 1. Load the catalog, if any, on top of the builtin operators
// 2. Build and render every case, checking its expect clause
// 3. Store the successful cases as one batch
// 4. Evaluate the assertions against the outcomes and the store
//
// An error is returned only when the suite itself cannot run (bad catalog,
// store failure). Case mismatches are reported in Result.Errors.
func Run(suite *Suite, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	env, err := loadEnvironment(suite.Catalog)
	if err != nil {
		return nil, err
	}
	h.env = env

	st, err := store.OpenWith(":memory:", store.NewFixedGenerator("suite:"+suite.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	ctx := context.Background()
	result := NewResult()

	built := make(map[string]expr.Operand)
	var items []store.Item
	for _, c := range suite.Cases {
		x, outcome := h.runCase(c)
		result.Outcomes = append(result.Outcomes, outcome)
		for _, msg := range checkExpect(outcome, c.Expect) {
			result.AddError(fmt.Sprintf("case %q: %s", c.Name, msg))
		}
		if outcome.Failed() {
			continue
		}

		built[c.Name] = x
		rec, err := store.NewRecord(x, outcome.Text, outcome.LaTeX)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		items = append(items, store.Item{Label: c.Name, Record: rec})
	}

	batch, err := st.SaveBatch(ctx, suite.Name, items)
	if err != nil {
		return nil, fmt.Errorf("failed to store outcomes: %w", err)
	}
	result.BatchID = batch.ID
	h.logger.Debug("suite stored", "suite", suite.Name, "batch", batch.ID, "entries", len(batch.Entries))

	actx := &AssertionContext{
		Ctx:     ctx,
		Store:   st,
		Builder: env.Builder,
		Text:    env.Text,
		Batch:   batch,
	}
	for _, msg := range EvaluateAssertions(result, suite.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// loadEnvironment loads the catalog at path, or the builtin operators
// alone when path is empty.
func loadEnvironment(path string) (*compiler.Environment, error) {
	if path == "" {
		return (&compiler.Catalog{}).Load()
	}
	catalog, errs := compiler.CompileFile(path)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to compile catalog %s: %w", path, errors.Join(errs...))
	}
	env, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return env, nil
}

// runCase builds and renders one case. The operand is nil when the
// outcome failed.
func (h *Harness) runCase(c Case) (expr.Operand, Outcome) {
	outcome := Outcome{Name: c.Name}

	x, err := h.build(c)
	if err != nil {
		return nil, failed(outcome, err)
	}

	text, err := h.env.Text.Render(x)
	if err != nil {
		return nil, failed(outcome, err)
	}
	id, err := document.ID(x)
	if err != nil {
		return nil, failed(outcome, err)
	}

	outcome.ID = id
	outcome.Kind = x.Kind().String()
	if op := x.Operator(); op != nil {
		outcome.Root = op.Name()
	}
	outcome.Depth = expr.Depth(x)
	outcome.Text = text

	latex, err := h.env.LaTeX.Render(x)
	if err != nil {
		outcome.LaTeXError = errorKind(err)
	} else {
		outcome.LaTeX = latex
	}

	h.logger.Debug("case built", "case", c.Name, "id", id, "text", text)
	return x, outcome
}

func (h *Harness) build(c Case) (expr.Operand, error) {
	if c.Ref != "" {
		return h.env.Resolve(c.Ref)
	}
	return c.Expression.BuildWith(h.env.Builder, h.env.Resolve)
}

func failed(o Outcome, err error) Outcome {
	o.Error = errorKind(err)
	o.Message = err.Error()
	return o
}

// errorKind names the type of err for expect clauses.
func errorKind(err error) string {
	var mte *render.MissingTemplateError
	if errors.As(err, &mte) {
		return "MissingTemplateError"
	}
	if kind := document.ErrorKind(err); kind != "" {
		return kind
	}
	return "Error"
}

// checkExpect compares an outcome with its expect clause and returns
// the mismatches.
func checkExpect(o Outcome, want Expect) []string {
	var msgs []string
	mismatch := func(field, got, want string) {
		msgs = append(msgs, fmt.Sprintf("%s = %q, want %q", field, got, want))
	}

	if want.Error != "" {
		if o.Error != want.Error {
			if o.Error == "" {
				msgs = append(msgs, fmt.Sprintf("expected %s, got success", want.Error))
			} else {
				mismatch("error", o.Error, want.Error)
			}
		}
		return msgs
	}
	if o.Failed() {
		return append(msgs, fmt.Sprintf("unexpected %s: %s", o.Error, o.Message))
	}

	if want.Text != "" && o.Text != want.Text {
		mismatch("text", o.Text, want.Text)
	}
	if want.LaTeX != "" && o.LaTeX != want.LaTeX {
		mismatch("latex", o.LaTeX, want.LaTeX)
	}
	if want.LaTeXError != "" && o.LaTeXError != want.LaTeXError {
		mismatch("latex_error", o.LaTeXError, want.LaTeXError)
	}
	if want.Kind != "" && o.Kind != want.Kind {
		mismatch("kind", o.Kind, want.Kind)
	}
	if want.Root != "" && o.Root != want.Root {
		mismatch("root", o.Root, want.Root)
	}
	if want.Depth != nil && o.Depth != *want.Depth {
		msgs = append(msgs, fmt.Sprintf("depth = %d, want %d", o.Depth, *want.Depth))
	}
	if want.ID != "" && !strings.HasPrefix(o.ID, want.ID) {
		mismatch("id", o.ID, want.ID)
	}
	return msgs
}
