package multiprocess

import (
	"fmt"

	"github.com/kisseru-go/kisseru/dag"
)

// DriveTask runs the single executable unit named taskID within graph: what
// a process spawned by spawnUnit actually does once `kisseru drive` has
// recompiled the app it was given. A fan-in unit may have inputs arriving
// from several independently-running processes, so this waits on every one
// of them rather than assuming a single caller, and only runs task once its
// latch reaches zero.
func DriveTask(graph *dag.TaskGraph, taskID string) error {
	task, ok := graph.Tasks[taskID]
	if !ok {
		return fmt.Errorf("multiprocess: unknown task id %q in graph %q", taskID, graph.Name)
	}
	if _, absorbed := graph.FuseeMap[taskID]; absorbed {
		return fmt.Errorf("multiprocess: task id %q was fused into another unit, not independently runnable", taskID)
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
			return fmt.Errorf("multiprocess: receiving input %q for task %q: %w", port.Name, task.Name, err)
		}
	}
	task.Wait()
	return nil
}
