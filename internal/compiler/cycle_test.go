package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprtree/internal/document"
)

// named builds a catalog expression adding the given refs to x.
func named(label string, refs ...string) NamedExpression {
	doc := document.Expression{Name: "add", Data: []document.Arg{{DType: document.DTypeStr, Str: "x"}}}
	for _, ref := range refs {
		doc.Data = append(doc.Data, document.Arg{DType: document.DTypeRef, Ref: ref})
	}
	return NamedExpression{Label: label, Doc: doc}
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	exprs := []NamedExpression{
		named("a"),
		named("b", "a"),
		named("c", "a", "b"),
	}
	assert.Empty(t, AnalyzeCycles(exprs))
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	cycles := AnalyzeCycles([]NamedExpression{named("a", "a")})

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "a"}, cycles[0].Path)
	assert.Equal(t, "expression references itself: a -> a", cycles[0].Message)
}

func TestAnalyzeCycles_ThreeNodeCycle(t *testing.T) {
	exprs := []NamedExpression{
		named("a", "b"),
		named("b", "c"),
		named("c", "a"),
		named("d", "a"),
	}

	cycles := AnalyzeCycles(exprs)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycles[0].Path)
	assert.Equal(t, "reference cycle: a -> b -> c -> a", cycles[0].Message)
}

func TestAnalyzeCycles_MultipleIndependentCycles(t *testing.T) {
	exprs := []NamedExpression{
		named("a", "b"),
		named("b", "a"),
		named("c", "c"),
		named("d"),
	}

	cycles := AnalyzeCycles(exprs)
	require.Len(t, cycles, 2)

	var paths [][]string
	for _, c := range cycles {
		paths = append(paths, c.Path)
	}
	assert.ElementsMatch(t, [][]string{{"a", "b", "a"}, {"c", "c"}}, paths)
}

func TestAnalyzeCycles_IgnoresUnknownRefs(t *testing.T) {
	assert.Empty(t, AnalyzeCycles([]NamedExpression{named("a", "elsewhere")}))
}

func TestResolveOrder(t *testing.T) {
	exprs := []NamedExpression{
		named("total", "left", "right"),
		named("left", "base"),
		named("right"),
		named("base"),
	}

	order, err := ResolveOrder(exprs)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "left", "right", "total"}, order)
}

func TestResolveOrder_Cycle(t *testing.T) {
	_, err := ResolveOrder([]NamedExpression{named("a", "b"), named("b", "a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference cycle")
}

func TestTarjanSCC_TwoNodeCycle(t *testing.T) {
	graph := buildReferenceGraph([]NamedExpression{named("a", "b"), named("b", "a")})
	sccs := tarjanSCC(graph)

	require.Len(t, sccs, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, sccs[0])
}

func TestTarjanSCC_DAG(t *testing.T) {
	graph := buildReferenceGraph([]NamedExpression{named("a"), named("b", "a"), named("c", "b")})
	sccs := tarjanSCC(graph)

	assert.Len(t, sccs, 3)
	for _, scc := range sccs {
		assert.Len(t, scc, 1)
		assert.False(t, hasSelfLoop(scc[0], graph))
	}
}

func TestReconstructCyclePath_Empty(t *testing.T) {
	assert.Empty(t, reconstructCyclePath(nil, referenceGraph{}))
}
