package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/exprtree/internal/expr"
	"github.com/roach88/exprtree/internal/render"
	"github.com/roach88/exprtree/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Outcomes []Outcome // Outcomes of the cases involved
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Outcomes) > 0 {
		fmt.Fprintf(&buf, "\nCases:\n")
		for i, o := range e.Outcomes {
			if o.Failed() {
				fmt.Fprintf(&buf, "  [%d] %s: %s\n", i+1, o.Name, o.Error)
				continue
			}
			fmt.Fprintf(&buf, "  [%d] %s: %s %s\n", i+1, o.Name, shortID(o.ID), o.Text)
		}
	}

	return buf.String()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// AssertionContext provides store access for assertions that look past
// the outcomes.
type AssertionContext struct {
	Ctx     context.Context
	Store   *store.Store
	Builder *expr.Builder
	Text    *render.Engine
	Batch   store.Batch
}

// collect returns the outcomes of the named cases. Every case must have
// succeeded.
func collect(result *Result, typ string, names []string) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		o, ok := result.Outcome(name)
		if !ok {
			return nil, fmt.Errorf("%s: unknown case %q", typ, name)
		}
		outcomes = append(outcomes, o)
	}
	for _, o := range outcomes {
		if o.Failed() {
			return nil, &AssertionError{
				Type:     typ,
				Expected: "all cases to build",
				Actual:   fmt.Sprintf("case %q failed with %s", o.Name, o.Error),
				Outcomes: outcomes,
			}
		}
	}
	return outcomes, nil
}

// assertSameID checks that the listed cases built structurally equal trees.
func assertSameID(result *Result, assertion Assertion) error {
	outcomes, err := collect(result, AssertSameID, assertion.Cases)
	if err != nil {
		return err
	}
	first := outcomes[0]
	for _, o := range outcomes[1:] {
		if o.ID != first.ID {
			return &AssertionError{
				Type:     AssertSameID,
				Expected: fmt.Sprintf("%q to equal %q", o.Name, first.Name),
				Actual:   fmt.Sprintf("%s != %s", shortID(o.ID), shortID(first.ID)),
				Outcomes: outcomes,
			}
		}
	}
	return nil
}

// assertDistinctIDs checks that no two listed cases share an id.
func assertDistinctIDs(result *Result, assertion Assertion) error {
	outcomes, err := collect(result, AssertDistinctIDs, assertion.Cases)
	if err != nil {
		return err
	}
	seen := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		if prev, ok := seen[o.ID]; ok {
			return &AssertionError{
				Type:     AssertDistinctIDs,
				Expected: "pairwise different ids",
				Actual:   fmt.Sprintf("%q and %q share %s", prev, o.Name, shortID(o.ID)),
				Outcomes: outcomes,
			}
		}
		seen[o.ID] = o.Name
	}
	return nil
}

// assertStoredCount checks the number of distinct stored expressions.
func assertStoredCount(actx *AssertionContext, assertion Assertion) error {
	records, err := actx.Store.ListExpressions(actx.Ctx, store.ListOptions{})
	if err != nil {
		return fmt.Errorf("stored_count: %w", err)
	}
	if len(records) != assertion.Count {
		return &AssertionError{
			Type:     AssertStoredCount,
			Expected: fmt.Sprintf("%d stored expressions", assertion.Count),
			Actual:   fmt.Sprintf("%d stored expressions", len(records)),
		}
	}
	return nil
}

// assertRoundTrip reads each listed case back from the store, rebuilds
// it and checks that id and text survive.
func assertRoundTrip(result *Result, actx *AssertionContext, assertion Assertion) error {
	names := assertion.Cases
	if len(names) == 0 {
		for _, e := range actx.Batch.Entries {
			names = append(names, e.Label)
		}
	}
	outcomes, err := collect(result, AssertRoundTrip, names)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		rec, err := actx.Store.ReadExpression(actx.Ctx, o.ID)
		if err != nil {
			return fmt.Errorf("round_trip: case %q: %w", o.Name, err)
		}
		if err := rec.Verify(); err != nil {
			return fmt.Errorf("round_trip: case %q: %w", o.Name, err)
		}
		x, err := rec.Operand(actx.Builder)
		if err != nil {
			return fmt.Errorf("round_trip: case %q: %w", o.Name, err)
		}
		text, err := actx.Text.Render(x)
		if err != nil {
			return fmt.Errorf("round_trip: case %q: %w", o.Name, err)
		}
		if text != o.Text {
			return &AssertionError{
				Type:     AssertRoundTrip,
				Expected: fmt.Sprintf("%q to render as %q", o.Name, o.Text),
				Actual:   fmt.Sprintf("rebuilt as %q", text),
				Outcomes: []Outcome{o},
			}
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides store access for stored_count and
// round_trip assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSameID:
			err = assertSameID(result, assertion)
		case AssertDistinctIDs:
			err = assertDistinctIDs(result, assertion)
		case AssertStoredCount, AssertRoundTrip:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires store context", i, assertion.Type)
			} else if assertion.Type == AssertStoredCount {
				err = assertStoredCount(actx, assertion)
			} else {
				err = assertRoundTrip(result, actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
