package build

import "github.com/kisseru-go/kisseru/dag"

// Recorder is the explicit, single-producer graph-under-construction: the
// graph itself plus the currently selected backend's port kind. A
// Recorder is created fresh for every App call and threaded through every
// TaskDef.Call; nothing about task recording is package-level mutable
// state.
type Recorder struct {
	Graph    *dag.TaskGraph
	PortKind dag.PortKind
}

// NewRecorder returns a Recorder bound to a fresh, empty graph named name,
// whose ports are built with kind — normally the PortKind of whichever
// backend runner.AppRunner selected before compiling, so a user task's
// ports behave identically to the synthetic ports compiler.Transform and
// compiler.Stage create for the same backend.
func NewRecorder(name string, kind dag.PortKind) *Recorder {
	return &Recorder{
		Graph:    dag.NewTaskGraph(name),
		PortKind: kind,
	}
}
