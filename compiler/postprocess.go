package compiler

import "github.com/kisseru-go/kisseru/dag"

// PostProcess recomputes the executable-unit count as a final, from-scratch
// check on the incremental bookkeeping AddTask/Absorb perform during
// recording and fusion:
// graph.num_tasks = |tasks| - sum over fused chains of |chain - {head}|.
// Fusion runs after PreProcess and absorbs tasks afterward, so recomputing
// here instead of in PreProcess lets PostProcess double as the final
// sanity check; it must run last.
type PostProcess struct{}

// Name identifies the pass in diagnostics.
func (PostProcess) Name() string { return "postprocess" }

// Run recounts graph.NumTasks from graph.Tasks and graph.FuseeMap.
func (PostProcess) Run(graph *dag.TaskGraph, ctx *Context) Result {
	want := len(graph.Tasks) - len(graph.FuseeMap)
	if graph.NumTasks != want {
		ctx.AddWarning("postprocess: executable-unit count drifted, recomputing")
		graph.NumTasks = want
	}
	return Continue
}

// PostRun does nothing for PostProcess.
func (PostProcess) PostRun(graph *dag.TaskGraph, ctx *Context) {}
