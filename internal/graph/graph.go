package graph

import (
	"sort"

	"github.com/planloom/planloom/internal/project"
)

// Graph is the dependency DAG over task ids: an edge p -> t means p must
// finish before t may start.
type Graph struct {
	IDs    []string            // all task ids, ascending
	Adj    map[string][]string // task -> tasks it gates
	RevAdj map[string][]string // task -> its predecessors
	Roots  []string            // tasks with no predecessors
	Leaves []string            // tasks gating nothing
}

// Build constructs the dependency graph from task definitions. It fails
// with project.DanglingError if a predecessor id is unknown and with
// CycleError if the edges are not acyclic.
func Build(tasks []project.Task) (*Graph, error) {
	g := &Graph{
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	known := make(map[string]bool, len(tasks))
	for i := range tasks {
		known[tasks[i].ID] = true
		g.IDs = append(g.IDs, tasks[i].ID)
	}
	sort.Strings(g.IDs)

	edgeSet := make(map[[2]string]bool)
	for i := range tasks {
		t := &tasks[i]
		for _, pred := range t.After {
			if !known[pred] {
				return nil, &project.DanglingError{Kind: "task", From: t.ID, Ref: pred}
			}
			key := [2]string{pred, t.ID}
			if edgeSet[key] {
				continue
			}
			edgeSet[key] = true
			g.Adj[pred] = append(g.Adj[pred], t.ID)
			g.RevAdj[t.ID] = append(g.RevAdj[t.ID], pred)
		}
	}

	// Sorted adjacency keeps every downstream walk deterministic.
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	for _, id := range g.IDs {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}
	return g, nil
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int { return len(g.IDs) }

// DetectCycle returns one dependency cycle as a task-id path, or nil if
// the graph is acyclic. DFS with coloring: white (unvisited), gray (in
// progress), black (done).
func (g *Graph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.IDs {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TopoOrder returns a valid processing order via Kahn's algorithm. Ties
// are broken by ascending task id so repeated runs over the same input
// produce identical output.
func (g *Graph) TopoOrder() []string {
	inDegree := make(map[string]int, len(g.IDs))
	for _, id := range g.IDs {
		inDegree[id] = len(g.RevAdj[id])
	}

	var queue []string
	for _, id := range g.IDs {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.IDs))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}
	return order
}
