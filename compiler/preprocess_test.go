package compiler

import (
	"testing"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/stretchr/testify/assert"
)

func TestPreProcess_MarksSourceWhenEveryInputIsImmediate(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	task := dag.NewTask("t", func(args map[string]any) any { return nil })
	in := dag.NewPort(dtype.Global().Lookup("int"), "n", -1, task, dag.DirectPortKind{})
	task.AddInput(in)
	out := dag.NewPort(dtype.Global().Lookup("int"), "0", 0, task, dag.DirectPortKind{})
	task.AddOutput(out)
	g.AddTask(task)

	ctx := NewContext(dag.DirectPortKind{})
	result := PreProcess{}.Run(g, ctx)

	assert.Equal(t, Continue, result)
	assert.True(t, task.IsSource)
	assert.Contains(t, g.Sources, task.Id)
}

// stubPortKind stands in for a non-local backend kind, whose Send would
// hand the value off out of process rather than deliver it here.
type stubPortKind struct{ dag.BasePortKind }

func (stubPortKind) Send(from *dag.Port, value any, to *dag.Port) error { return nil }
func (stubPortKind) Receive(p *dag.Port, value any) error               { return nil }

func TestPreProcess_MarksSinkAndAttachesSyntheticEdge(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	task := dag.NewTask("t", func(args map[string]any) any { return 1 })
	out := dag.NewPort(dtype.Global().Lookup("int"), "0", 0, task, stubPortKind{})
	task.AddOutput(out)
	g.AddTask(task)

	ctx := NewContext(dag.DirectPortKind{})
	PreProcess{}.Run(g, ctx)

	assert.True(t, task.IsSink)
	assert.Len(t, task.Edges, 1)
	src := task.Edges[0].Source
	assert.Same(t, task, src.TaskRef)
	assert.Equal(t, out.Index, src.Index)
	assert.IsType(t, dag.DirectPortKind{}, src.Kind, "a sink edge delivers in-process on any backend")
}

func TestPreProcess_NonImmediateInputIsNotASource(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	task := dag.NewTask("t", func(args map[string]any) any { return nil })
	in := dag.NewPort(dtype.Global().Lookup("int"), "n", -1, task, dag.DirectPortKind{})
	task.AddInput(in)
	in.FlipImmediate()
	g.AddTask(task)

	PreProcess{}.Run(g, NewContext(dag.DirectPortKind{}))

	assert.False(t, task.IsSource)
}
