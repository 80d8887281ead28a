package compiler

import "github.com/kisseru-go/kisseru/dag"

// PreProcess infers which tasks are sources (every in-port immediate) and
// sinks (no out-edges), registering sources on the graph and attaching a
// synthetic dag.Sink edge to every out-port of a sink task.
type PreProcess struct{}

// Name identifies the pass in diagnostics.
func (PreProcess) Name() string { return "preprocess" }

// Run classifies every task in graph as source and/or sink.
func (PreProcess) Run(graph *dag.TaskGraph, ctx *Context) Result {
	for _, task := range graph.Tasks {
		isSource := true
		for _, in := range task.Inputs {
			if !in.IsImmediate {
				isSource = false
				break
			}
		}
		if isSource {
			graph.SetSource(task)
		}

		if len(task.Edges) == 0 {
			task.IsSink = true
			for _, out := range task.Outputs {
				task.Edges = append(task.Edges, dag.NewSinkEdge(out))
			}
		}
	}
	return Continue
}

// PostRun does nothing for PreProcess.
func (PreProcess) PostRun(graph *dag.TaskGraph, ctx *Context) {}
