package dag

import (
	"fmt"
	"sync"
)

// TaskGraph is the recorded, single-producer/multi-consumer graph: the
// recorder (one goroutine) builds it completely before any executor
// (the sequential, multi-process or batch backend) starts consuming it.
type TaskGraph struct {
	Name    string
	Tasks   map[string]*Task
	Sources map[string]*Task

	// FuseeMap maps a member task's id to the FusedTask that absorbed it,
	// populated by the Fusion pass.
	FuseeMap map[string]*FusedTask

	// NumTasks is the executable-unit count: tasks absorbed into some
	// FusedTask are excluded, so it can be smaller than len(Tasks).
	NumTasks int

	// nextID counts tasks added so far, the source of every task's id.
	nextID int

	mu             sync.Mutex
	completedTasks int
	done           *sync.Cond
}

// NewTaskGraph returns an empty graph ready for the recorder to populate.
func NewTaskGraph(name string) *TaskGraph {
	g := &TaskGraph{
		Name:    name,
		Tasks:   make(map[string]*Task),
		Sources: make(map[string]*Task),
	}
	g.done = sync.NewCond(&g.mu)
	return g
}

// AddTask assigns task the next sequential id, binds its graph
// back-reference, and registers it. Ids are positional, not random: the
// recorder and every compiler pass that synthesizes a task (Stage,
// Transform, Fusion) add tasks in a deterministic order for a given app,
// so recompiling the same app always reassigns the same ids to the same
// tasks. The batch backend depends on this: a packaged job script bakes in
// a task id, and `kisseru drive` recovers the task it names by recompiling
// the app fresh and looking that id up again.
func (g *TaskGraph) AddTask(task *Task) {
	task.Id = fmt.Sprintf("t%d", g.nextID)
	g.nextID++
	task.Graph = g
	g.Tasks[task.Id] = task
	g.NumTasks++
}

// SetSource marks task as a graph entry point: one whose in-ports are all
// immediate at preprocess time.
func (g *TaskGraph) SetSource(task *Task) {
	task.IsSource = true
	g.Sources[task.Id] = task
}

// UnsetSource removes task from the entry-point set without clearing its
// IsSource flag's prior effects on downstream passes.
func (g *TaskGraph) UnsetSource(task *Task) {
	task.IsSource = false
	delete(g.Sources, task.Id)
}

// Absorb records that task has been folded into fused, shrinking the
// executable-unit count accordingly.
func (g *TaskGraph) Absorb(task *Task, fused *FusedTask) {
	if g.FuseeMap == nil {
		g.FuseeMap = make(map[string]*FusedTask)
	}
	g.FuseeMap[task.Id] = fused
	g.NumTasks--
}

// TaskCompleted records one executable unit finishing and wakes any
// goroutine blocked in Wait once every unit has completed.
func (g *TaskGraph) TaskCompleted() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completedTasks++
	if g.completedTasks >= g.NumTasks {
		g.done.Broadcast()
	}
}

// Wait blocks until every executable unit in the graph has completed.
func (g *TaskGraph) Wait() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.completedTasks < g.NumTasks {
		g.done.Wait()
	}
}
