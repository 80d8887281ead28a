package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskGraph_AddTaskAssignsIdAndGraph(t *testing.T) {
	g := NewTaskGraph("pipeline")
	task := NewTask("t1", func(args map[string]any) any { return nil })
	g.AddTask(task)

	assert.NotEmpty(t, task.Id)
	assert.Same(t, g, task.Graph)
	assert.Equal(t, task, g.Tasks[task.Id])
	assert.Equal(t, 1, g.NumTasks)
}

func TestTaskGraph_AddTaskAssignsSequentialDeterministicIds(t *testing.T) {
	g := NewTaskGraph("pipeline")
	a := NewTask("a", func(args map[string]any) any { return nil })
	b := NewTask("b", func(args map[string]any) any { return nil })
	g.AddTask(a)
	g.AddTask(b)

	assert.Equal(t, "t0", a.Id)
	assert.Equal(t, "t1", b.Id)

	// Recording the same two tasks into a fresh graph, in the same order,
	// must reassign the same ids: the batch backend bakes a task's id into
	// a job script and its graph.yaml, and `kisseru drive` recovers the
	// task it names by recompiling the app from scratch, not by loading any
	// serialized task state.
	g2 := NewTaskGraph("pipeline")
	a2 := NewTask("a", func(args map[string]any) any { return nil })
	b2 := NewTask("b", func(args map[string]any) any { return nil })
	g2.AddTask(a2)
	g2.AddTask(b2)

	assert.Equal(t, a.Id, a2.Id)
	assert.Equal(t, b.Id, b2.Id)
}

func TestTaskGraph_SetSourceAndUnsetSource(t *testing.T) {
	g := NewTaskGraph("pipeline")
	task := NewTask("t1", func(args map[string]any) any { return nil })
	g.AddTask(task)

	g.SetSource(task)
	assert.True(t, task.IsSource)
	assert.Contains(t, g.Sources, task.Id)

	g.UnsetSource(task)
	assert.False(t, task.IsSource)
	assert.NotContains(t, g.Sources, task.Id)
}

func TestTaskGraph_AbsorbShrinksNumTasks(t *testing.T) {
	g := NewTaskGraph("pipeline")
	a := NewTask("a", func(args map[string]any) any { return nil })
	b := NewTask("b", func(args map[string]any) any { return nil })
	g.AddTask(a)
	g.AddTask(b)
	assert.Equal(t, 2, g.NumTasks)

	fused := NewFusedTask([]*Task{a, b})
	g.Absorb(a, fused)
	assert.Equal(t, 1, g.NumTasks)
	assert.Same(t, fused, g.FuseeMap[a.Id])
}

func TestTaskGraph_WaitUnblocksAfterAllUnitsComplete(t *testing.T) {
	g := NewTaskGraph("pipeline")
	g.NumTasks = 2

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	g.TaskCompleted()
	select {
	case <-done:
		t.Fatal("Wait returned before all units completed")
	default:
	}

	g.TaskCompleted()
	<-done
}
