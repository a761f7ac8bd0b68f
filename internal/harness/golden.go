package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/exprtree/internal/ir"
)

// SuiteSnapshot captures the outcomes of a suite execution.
// All fields use canonical JSON serialization for deterministic comparison.
type SuiteSnapshot struct {
	SuiteName string    `json:"suite_name"`
	Outcomes  []Outcome `json:"outcomes"`
}

// toCanonical converts a SuiteSnapshot to an ir.Object for canonical JSON
// serialization. Error messages are left out; kinds are stable, wording
// is not.
func (s *SuiteSnapshot) toCanonical() ir.Object {
	outcomes := make(ir.Array, len(s.Outcomes))
	for i, o := range s.Outcomes {
		obj := ir.Object{"name": ir.String(o.Name)}
		if o.Failed() {
			obj["error"] = ir.String(o.Error)
			outcomes[i] = obj
			continue
		}
		obj["id"] = ir.String(o.ID)
		obj["kind"] = ir.String(o.Kind)
		obj["depth"] = ir.Int(o.Depth)
		obj["text"] = ir.String(o.Text)
		if o.Root != "" {
			obj["root"] = ir.String(o.Root)
		}
		if o.LaTeX != "" {
			obj["latex"] = ir.String(o.LaTeX)
		}
		if o.LaTeXError != "" {
			obj["latex_error"] = ir.String(o.LaTeXError)
		}
		outcomes[i] = obj
	}

	return ir.Object{
		"suite_name": ir.String(s.SuiteName),
		"outcomes":   outcomes,
	}
}

// Snapshot returns the canonical JSON snapshot of a result.
func Snapshot(suiteName string, result *Result) ([]byte, error) {
	snapshot := SuiteSnapshot{SuiteName: suiteName, Outcomes: result.Outcomes}
	return ir.MarshalCanonical(snapshot.toCanonical())
}

// RunWithGolden executes a suite and compares its outcomes against a golden
// file stored in testdata/golden/{suite.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if suite execution fails.
// Test failure (via goldie) occurs if outcomes don't match the golden file.
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result, err := Run(suite)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, suite.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's outcomes against a golden file.
// This is useful when you've already run a suite and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, suiteName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(suiteName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, suiteName, data)

	return nil
}
