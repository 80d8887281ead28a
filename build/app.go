package build

import (
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/log"
)

// App builds a fresh Recorder named name with the given backend PortKind,
// runs fn against it to record the whole pipeline, and returns the
// resulting graph ready for compiler.Manager to run its passes over. fn
// receives its Recorder as an explicit argument rather than closing over
// any global state.
func App(name string, kind dag.PortKind, fn func(rec *Recorder)) *dag.TaskGraph {
	log.Info("compiling app %q", name)
	rec := NewRecorder(name, kind)
	fn(rec)
	return rec.Graph
}
