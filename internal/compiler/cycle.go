package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// ReferenceCycle is a set of catalog expressions that reference each other
// through ref arguments. Such expressions can never be built.
type ReferenceCycle struct {
	Path    []string `json:"path"` // ["a", "b", "a"]
	Message string   `json:"message"`
}

// AnalyzeCycles finds reference cycles among named expressions.
//
// It builds the label -> referenced labels graph and runs Tarjan's algorithm.
// Every strongly connected component with more than one member, and every
// self-referencing expression, is reported. References to labels outside
// the catalog are ignored here; Validate reports them.
func AnalyzeCycles(exprs []NamedExpression) []ReferenceCycle {
	if len(exprs) == 0 {
		return nil
	}

	graph := buildReferenceGraph(exprs)
	var cycles []ReferenceCycle
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	return cycles
}

// ResolveOrder returns the expression labels ordered so that every
// expression comes after the ones it references. Among independent
// expressions catalog order is kept.
func ResolveOrder(exprs []NamedExpression) ([]string, error) {
	if cycles := AnalyzeCycles(exprs); len(cycles) > 0 {
		return nil, fmt.Errorf("cannot order expressions: %s", cycles[0].Message)
	}

	graph := buildReferenceGraph(exprs)
	order := make([]string, 0, len(exprs))
	done := make(map[string]bool, len(exprs))

	var visit func(string)
	visit = func(label string) {
		if done[label] {
			return
		}
		done[label] = true
		for _, dep := range graph.edges[label] {
			visit(dep)
		}
		order = append(order, label)
	}
	for _, label := range graph.nodes {
		visit(label)
	}
	return order, nil
}

// referenceGraph maps each label to the catalog labels it references.
// nodes keeps catalog order so results are deterministic.
type referenceGraph struct {
	nodes []string
	edges map[string][]string
}

func buildReferenceGraph(exprs []NamedExpression) referenceGraph {
	graph := referenceGraph{edges: make(map[string][]string, len(exprs))}
	known := make(map[string]bool, len(exprs))
	for _, named := range exprs {
		known[named.Label] = true
	}
	for _, named := range exprs {
		graph.nodes = append(graph.nodes, named.Label)
		graph.edges[named.Label] = []string{}
		for _, ref := range named.Doc.Refs() {
			if known[ref] {
				graph.edges[named.Label] = append(graph.edges[named.Label], ref)
			}
		}
	}
	return graph
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	return slices.Contains(graph.edges[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToCycle(scc []string, graph referenceGraph) ReferenceCycle {
	if len(scc) == 1 {
		label := scc[0]
		return ReferenceCycle{
			Path:    []string{label, label},
			Message: fmt.Sprintf("expression references itself: %s -> %s", label, label),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return ReferenceCycle{
		Path:    path,
		Message: fmt.Sprintf("reference cycle: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath walks edges inside the SCC from its earliest catalog
// member until it returns to the start.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}
	start := scc[0]
	for _, node := range graph.nodes {
		if members[node] {
			start = node
			break
		}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph.edges[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
