package compiler

import (
	"testing"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/stretchr/testify/assert"
)

func TestPostProcess_RecomputesCountAfterFusion(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	head, _, _, _ := buildLinearChain(t, g)
	Fusion{}.Run(g, NewContext(dag.DirectPortKind{}))

	g.NumTasks = 99 // simulate drift

	ctx := NewContext(dag.DirectPortKind{})
	result := PostProcess{}.Run(g, ctx)

	assert.Equal(t, Continue, result)
	assert.Equal(t, 1, g.NumTasks)
	assert.NotEmpty(t, ctx.Warnings)
	assert.Contains(t, g.Tasks, head.Id)
}

func TestPostProcess_NoDriftNoWarning(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	task := dag.NewTask("t", func(args map[string]any) any { return nil })
	g.AddTask(task)

	ctx := NewContext(dag.DirectPortKind{})
	PostProcess{}.Run(g, ctx)

	assert.Equal(t, 1, g.NumTasks)
	assert.Empty(t, ctx.Warnings)
}
