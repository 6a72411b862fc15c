package tokens

import (
	"slices"
)

// graph is a directed graph of token or group dependencies
type graph struct {
	// dependencies maps a node to the nodes it depends on
	dependencies map[string][]string
	nodes        map[string]bool
}

func newGraph() *graph {
	return &graph{
		dependencies: map[string][]string{},
		nodes:        map[string]bool{},
	}
}

func (g *graph) add(node string, deps ...string) {
	g.nodes[node] = true
	for _, dep := range deps {
		g.nodes[dep] = true
		g.dependencies[node] = append(g.dependencies[node], dep)
	}
}

// sortedNodes keeps traversal deterministic
func (g *graph) sortedNodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// findCycle returns the cycle path if one exists, or nil if no cycle
func (g *graph) findCycle() []string {
	visited := map[string]bool{}
	onStack := map[string]bool{}
	for _, node := range g.sortedNodes() {
		if cycle := g.findCycleDFS(node, visited, onStack, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}

func (g *graph) findCycleDFS(node string, visited, onStack map[string]bool, path []string) []string {
	if onStack[node] {
		start := slices.Index(path, node)
		return append(slices.Clone(path[start:]), node)
	}
	if visited[node] {
		return nil
	}
	visited[node] = true
	onStack[node] = true
	path = append(path, node)
	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, onStack, path); cycle != nil {
			return cycle
		}
	}
	onStack[node] = false
	return nil
}

// sorted returns nodes with dependencies first. The graph must be acyclic.
func (g *graph) sorted() []string {
	visited := map[string]bool{}
	var result []string
	var visit func(string)
	visit = func(node string) {
		visited[node] = true
		for _, dep := range g.dependencies[node] {
			if !visited[dep] {
				visit(dep)
			}
		}
		result = append(result, node)
	}
	for _, node := range g.sortedNodes() {
		if !visited[node] {
			visit(node)
		}
	}
	return result
}
