package sequential

import (
	"fmt"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/dag"
)

func init() {
	backend.Register(backend.Sequential, New)
}

// Backend runs every task on the caller's goroutine via dag.DirectPortKind:
// a source firing cascades synchronously through the whole reachable
// subgraph before RunFlow returns control to the next source.
type Backend struct{}

// New constructs the sequential backend. cfg is accepted for signature
// symmetry with the other backends' constructors but carries nothing this
// backend needs.
func New(cfg backend.Config) (backend.Backend, error) {
	return &Backend{}, nil
}

// Name identifies the backend for diagnostics and archive naming.
func (b *Backend) Name() string { return "sequential" }

// GetPort returns dag.DirectPortKind{}: every edge on this backend is an
// in-process call, so there is no backend-specific port behavior to add.
func (b *Backend) GetPort() dag.PortKind { return dag.DirectPortKind{} }

// RunTask invokes task.Run() directly; Task.Run already fans its result
// out over its out-edges, which on this backend recurse synchronously into
// whichever tasks they satisfy.
func (b *Backend) RunTask(task *dag.Task) {
	task.Run()
}

// RunFlow fires every source in graph, one after another, and returns once
// they have all run to completion — on this backend that means control has
// already cascaded through the entire reachable subgraph by the time each
// RunTask call returns, so the closing graph.Wait() normally finds every
// unit already counted complete.
func (b *Backend) RunFlow(graph *dag.TaskGraph) error {
	for _, source := range graph.Sources {
		b.RunTask(source)
	}
	graph.Wait()
	return nil
}

// Package is unsupported on the sequential backend: packaging is a
// batch-only concept.
func (b *Backend) Package(graph *dag.TaskGraph, appDir, outFile string) error {
	return fmt.Errorf("sequential: package is not supported, use the batch backend")
}

// Cleanup releases nothing: the sequential backend holds no resources
// beyond the graph itself.
func (b *Backend) Cleanup() {}
