package compiler

import (
	"testing"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/stretchr/testify/assert"
)

// buildLinearChain wires head -> middle -> tail -> external, registering all
// three chain members (but not external) on g and marking head as a source.
func buildLinearChain(t *testing.T, g *dag.TaskGraph) (head, middle, tail, external *dag.Task) {
	t.Helper()
	intType := dtype.Global().Lookup("int")

	external = dag.NewTask("external", func(args map[string]any) any { return nil })
	extIn := dag.NewPort(intType, "v", -1, external, dag.DirectPortKind{})
	external.AddInput(extIn)
	extIn.FlipImmediate()

	tail = dag.NewTask("tail", func(args map[string]any) any { return args["v"].(int) * 2 })
	tailIn := dag.NewPort(intType, "v", -1, tail, dag.DirectPortKind{})
	tail.AddInput(tailIn)
	tailIn.FlipImmediate()
	tailOut := dag.NewPort(intType, "0", 0, tail, dag.DirectPortKind{})
	tail.AddOutput(tailOut)
	tail.Edges = append(tail.Edges, dag.NewEdge(tailOut, extIn))

	middle = dag.NewTask("middle", func(args map[string]any) any { return args["v"].(int) * 2 })
	midIn := dag.NewPort(intType, "v", -1, middle, dag.DirectPortKind{})
	middle.AddInput(midIn)
	midIn.FlipImmediate()
	midOut := dag.NewPort(intType, "0", 0, middle, dag.DirectPortKind{})
	middle.AddOutput(midOut)
	middle.Edges = append(middle.Edges, dag.NewEdge(midOut, tailIn))

	head = dag.NewTask("head", func(args map[string]any) any { return args["v"].(int) * 2 })
	headIn := dag.NewPort(intType, "v", -1, head, dag.DirectPortKind{})
	head.AddInput(headIn)
	headOut := dag.NewPort(intType, "0", 0, head, dag.DirectPortKind{})
	head.AddOutput(headOut)
	head.Edges = append(head.Edges, dag.NewEdge(headOut, midIn))

	g.AddTask(head)
	g.AddTask(middle)
	g.AddTask(tail)
	g.SetSource(head)

	return head, middle, tail, external
}

func TestFusion_CollapsesLinearChainIntoOneExecutableUnit(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	head, middle, tail, external := buildLinearChain(t, g)
	assert.Equal(t, 3, g.NumTasks)

	ctx := NewContext(dag.DirectPortKind{})
	result := Fusion{}.Run(g, ctx)
	assert.Equal(t, Continue, result)

	assert.Equal(t, 1, g.NumTasks)
	assert.Same(t, head, g.FuseeMap[middle.Id].Head)
	assert.Same(t, head, g.FuseeMap[tail.Id].Head)
	_, headAbsorbed := g.FuseeMap[head.Id]
	assert.False(t, headAbsorbed, "head keeps the fused unit's identity, it is never absorbed into itself")

	fused := g.FuseeMap[tail.Id]
	assert.True(t, head.IsFused)
	assert.Same(t, head, g.Tasks[head.Id], "AddTask must never be called again on the fused head")
	assert.Contains(t, g.Sources, head.Id)

	var result2 any
	external.Runner = func(args map[string]any) any { result2 = args["v"]; return nil }
	head.Args["v"] = 1
	fused.Run()
	external.Wait()
	assert.Equal(t, 8, result2)
}

func TestFusion_DoesNotFuseWhenChildHasMultipleParents(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	intType := dtype.Global().Lookup("int")

	shared := dag.NewTask("shared", func(args map[string]any) any { return nil })
	sharedIn := dag.NewPort(intType, "v", -1, shared, dag.DirectPortKind{})
	sharedIn2 := dag.NewPort(intType, "w", -1, shared, dag.DirectPortKind{})
	shared.AddInput(sharedIn)
	shared.AddInput(sharedIn2)

	a := dag.NewTask("a", func(args map[string]any) any { return 1 })
	aOut := dag.NewPort(intType, "0", 0, a, dag.DirectPortKind{})
	a.AddOutput(aOut)
	a.Edges = append(a.Edges, dag.NewEdge(aOut, sharedIn))

	b := dag.NewTask("b", func(args map[string]any) any { return 2 })
	bOut := dag.NewPort(intType, "0", 0, b, dag.DirectPortKind{})
	b.AddOutput(bOut)
	b.Edges = append(b.Edges, dag.NewEdge(bOut, sharedIn2))

	g.AddTask(a)
	g.AddTask(b)
	g.AddTask(shared)
	g.SetSource(a)
	g.SetSource(b)

	Fusion{}.Run(g, NewContext(dag.DirectPortKind{}))

	assert.Equal(t, 3, g.NumTasks, "a task with two parents must never be absorbed")
	assert.Empty(t, g.FuseeMap)
}

func TestFusion_RefusesToFuseAcrossStagingNode(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	intType := dtype.Global().Lookup("int")

	head := dag.NewTask("head", func(args map[string]any) any { return 1 })
	headOut := dag.NewPort(intType, "0", 0, head, dag.DirectPortKind{})
	head.AddOutput(headOut)

	staging := dag.NewTask("staging", func(args map[string]any) any { return 2 })
	staging.IsStaging = true
	stagingIn := dag.NewPort(intType, "v", -1, staging, dag.DirectPortKind{})
	staging.AddInput(stagingIn)
	head.Edges = append(head.Edges, dag.NewEdge(headOut, stagingIn))

	g.AddTask(head)
	g.AddTask(staging)
	g.SetSource(head)

	ctx := NewContext(dag.DirectPortKind{})
	Fusion{}.Run(g, ctx)

	assert.Equal(t, 2, g.NumTasks)
	assert.NotEmpty(t, ctx.Warnings)
}
