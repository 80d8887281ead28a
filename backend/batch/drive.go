package batch

import (
	"fmt"

	"github.com/kisseru-go/kisseru/dag"
)

// DriveTask runs the single executable unit named taskID within graph:
// what a submitted job script's `kisseru drive` invocation actually does once it has
// recompiled the packaged app against this backend. A source unit has no
// in-edges to wait on, so it is run directly; any other unit polls each of
// its non-immediate in-ports' handoff files (written by an upstream job's
// PortKind.Send) until every one has arrived, at which point the task's
// latch reaches zero and it runs itself.
//
// graph must have been compiled with this backend's PortKind
// (Backend.GetPort), matching how it was compiled when Package wrote
// taskID into graph.yaml and the job script that names it.
func DriveTask(graph *dag.TaskGraph, taskID string) error {
	task, ok := graph.Tasks[taskID]
	if !ok {
		return fmt.Errorf("batch: unknown task id %q in graph %q", taskID, graph.Name)
	}
	if _, absorbed := graph.FuseeMap[taskID]; absorbed {
		return fmt.Errorf("batch: task id %q was fused into another unit, not independently runnable", taskID)
	}

	if task.IsSource {
		task.Run()
		return nil
	}

	for _, port := range task.Inputs {
		if port.IsImmediate {
			continue
		}
		if err := port.Receive(nil); err != nil {
			return fmt.Errorf("batch: receiving input %q for task %q: %w", port.Name, task.Name, err)
		}
	}
	task.Wait()
	return nil
}
