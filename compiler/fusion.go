package compiler

import (
	"fmt"

	"github.com/kisseru-go/kisseru/dag"
)

// Fusion collapses every maximal linear chain (single child, single
// parent, at each link) reachable by depth-first search from a graph
// source into one dag.FusedTask, so the chain runs as a single executable
// unit regardless of the outer backend.
//
// This conservative implementation refuses to extend a chain through any
// IsStaging/IsTransform node and records a warning instead, rather than
// risk fusing across a backend boundary.
type Fusion struct{}

// Name identifies the pass in diagnostics.
func (Fusion) Name() string { return "fusion" }

// Run performs the DFS chain collapse.
func (Fusion) Run(graph *dag.TaskGraph, ctx *Context) Result {
	parents := countParents(graph)
	children := func(t *dag.Task) []*dag.Task {
		seen := make(map[string]bool)
		var out []*dag.Task
		for _, e := range t.Edges {
			child := e.Dest.TaskRef
			if child == nil || child.Id == t.Id || seen[child.Id] || graph.Tasks[child.Id] != child {
				continue
			}
			seen[child.Id] = true
			out = append(out, child)
		}
		return out
	}

	var allFusable [][]*dag.Task
	visited := make(map[string]bool)

	var dfs func(node *dag.Task, cur []*dag.Task)
	dfs = func(node *dag.Task, cur []*dag.Task) {
		if visited[node.Id] {
			return
		}
		visited[node.Id] = true

		kids := children(node)
		if len(kids) == 1 && parents[kids[0].Id] == 1 && !kids[0].IsStaging && !kids[0].IsTransform && !node.IsStaging && !node.IsTransform {
			cur = append(cur, kids[0])
			dfs(kids[0], cur)
			return
		}
		if node.IsStaging || node.IsTransform {
			ctx.AddWarning(fmt.Sprintf("fusion: refusing to fuse across staging/transform node %s", node.Name))
		}

		allFusable = append(allFusable, cur)
		for _, kid := range kids {
			dfs(kid, []*dag.Task{kid})
		}
	}

	for _, source := range graph.Sources {
		dfs(source, []*dag.Task{source})
	}

	for _, chain := range allFusable {
		if len(chain) < 2 {
			continue
		}
		fused := dag.NewFusedTask(chain)
		// fused.Task shares the head task's identity and id (dag.FusedTask
		// embeds *Task by pointer), so it is already registered in
		// graph.Tasks and, if head was a source, in graph.Sources too.
		// Only the non-head members need to be absorbed out of the
		// executable-unit count.
		for _, member := range chain[1:] {
			graph.Absorb(member, fused)
		}
		if fused.Tail.IsSink {
			fused.Task.IsSink = true
		}
	}

	return Continue
}

// PostRun does nothing for Fusion.
func (Fusion) PostRun(graph *dag.TaskGraph, ctx *Context) {}

// countParents returns, for every task id in graph, the number of distinct
// tasks with an edge into it. A task's own synthetic Sink edge (PreProcess
// attaches one to every out-port of a task with no real out-edges, whose
// destination port shares the source task's TaskRef) is not a real parent
// link and is excluded, or every sink task would appear to have one
// incoming edge more than it really does and never get absorbed as the
// tail of a fused chain.
func countParents(graph *dag.TaskGraph) map[string]int {
	parentSets := make(map[string]map[string]bool)
	for _, task := range graph.Tasks {
		for _, e := range task.Edges {
			child := e.Dest.TaskRef
			if child == nil || child.Id == task.Id {
				continue
			}
			if parentSets[child.Id] == nil {
				parentSets[child.Id] = make(map[string]bool)
			}
			parentSets[child.Id][task.Id] = true
		}
	}
	counts := make(map[string]int, len(parentSets))
	for id, set := range parentSets {
		counts[id] = len(set)
	}
	return counts
}
