// Package harness provides conformance testing for expression catalogs.
//
// A suite builds a list of expression documents, renders each one and
// checks the outcome against its expect clause. Suites may load a CUE
// catalog first so that cases can use its operators and refer to its
// named expressions.
//
// # Suite Format
//
// Suites are defined in YAML files with the following structure:
//
//	name: suite_name
//	description: "What this suite validates"
//	catalog: catalogs/vectors.cue   # optional, relative to the suite file
//	cases:
//	  - name: flat_sum
//	    expression:
//	      name: add
//	      data:
//	        - {dtype: str, str: x}
//	        - {dtype: exp, exp: {name: add, data: [{dtype: str, str: y}, {dtype: str, str: z}]}}
//	    expect:
//	      text: "x + y + z"
//	      kind: atomic operation
//	  - name: product
//	    ref: product                  # a named catalog expression
//	    expect:
//	      latex: "x \\cdot y"
//	  - name: too_few
//	    expression: {name: pow, data: [{dtype: str, str: x}]}
//	    expect:
//	      error: ArityError
//	assertions:
//	  - type: same_id
//	    cases: [flat_sum, other_sum]
//	  - type: stored_count
//	    count: 2
//
// # Assertion Types
//
//   - same_id: the listed cases built structurally equal trees
//   - distinct_ids: the listed cases built pairwise different trees
//   - stored_count: the suite stored exactly count distinct expressions
//   - round_trip: the listed cases (all when empty) rebuild from the store
//     to the same id and text
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store and a fixed batch id, so the
// outcome of a suite depends on its file alone. Outcomes are compared
// against golden snapshots in canonical JSON:
//
//	suite, err := harness.LoadSuite("testdata/suites/flattening.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(suite)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
