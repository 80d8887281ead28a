package dag

// FusedTask is a composite task produced by the Fusion pass: an ordered,
// non-empty chain of tasks that run back-to-back in one call chain,
// regardless of the outer backend. Its ports, latch and args mirror its
// head (the first task to receive external input); its out-edges are its
// tail's out-edges, reused rather than copied.
type FusedTask struct {
	*Task

	Tasks []*Task
	Head  *Task
	Tail  *Task

	// Edges shadows the embedded Task's Edges: a FusedTask's externally
	// visible out-edges are its tail's, not its head's internal ones.
	// Running the fused unit still goes through the head's own Edges
	// (promoted via *Task), which cascade synchronously into the next
	// chain member and on to Tail, whose real send uses these.
	Edges []*Edge
}

// NewFusedTask fuses a non-empty, ordered chain of tasks. The internal
// edges between chain members are rewired to DirectPortKind so the fused
// sub-tasks run in-process even when the outer backend is multiprocess or
// batch.
func NewFusedTask(tasks []*Task) *FusedTask {
	if len(tasks) == 0 {
		panic("dag: NewFusedTask requires at least one task")
	}
	head, tail := tasks[0], tasks[len(tasks)-1]
	for _, inner := range tasks {
		inner.IsFusee = true
		// tail's own Edges are the fused unit's externally visible
		// out-edges (promoted below as ft.Edges): they stay on whatever
		// PortKind the outer backend assigned them. Every other member's
		// Edges are purely intra-chain and must run in-process.
		if inner == tail {
			continue
		}
		for _, edge := range inner.Edges {
			edge.Source.Kind = DirectPortKind{}
			edge.Dest.Kind = DirectPortKind{}
		}
	}
	ft := &FusedTask{
		Task:  head,
		Tasks: tasks,
		Head:  head,
		Tail:  tail,
	}
	ft.Edges = tail.Edges
	ft.IsFused = true
	return ft
}
