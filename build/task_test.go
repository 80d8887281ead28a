package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/backend/sequential"
	"github.com/kisseru-go/kisseru/build"
	"github.com/kisseru-go/kisseru/compiler"
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
)

// runGraph preprocesses graph (source/sink inference) and executes it on
// the sequential backend, the minimal subset of the compiler pipeline a
// build-package test needs to actually observe task output.
func runGraph(t *testing.T, graph *dag.TaskGraph) {
	t.Helper()
	be, err := sequential.New(backend.Config{})
	require.NoError(t, err)

	ctx := compiler.NewContext(be.GetPort())
	mgr := compiler.NewManager()
	mgr.Register(compiler.PreProcess{})
	_, ok := mgr.Run(graph, ctx)
	require.True(t, ok, "preprocess: %v", ctx.Errors)

	require.NoError(t, be.RunFlow(graph))
}

// TestSeriesPipeline covers two tasks chained in series, add(1, 2)
// feeding succ(sum).
func TestSeriesPipeline(t *testing.T) {
	var result int

	addDef := build.Task("add", func(a, b int) int { return a + b },
		build.Params(dtype.Param{Name: "a", Annotation: "int"}, dtype.Param{Name: "b", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)
	succDef := build.Task("succ", func(n int) int { result = n + 1; return result },
		build.Params(dtype.Param{Name: "n", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)

	graph := build.App("series", dag.DirectPortKind{}, func(rec *build.Recorder) {
		sum, err := addDef.Call(rec, 1, 2)
		require.NoError(t, err)
		_, err = succDef.Call(rec, sum)
		require.NoError(t, err)
	})

	runGraph(t, graph)
	assert.Equal(t, 4, result)
}

// TestFanIn covers two independent sources feeding one consumer,
// sum2(inc(1), inc(2)).
func TestFanIn(t *testing.T) {
	var result int

	incDef := build.Task("inc", func(n int) int { return n + 1 },
		build.Params(dtype.Param{Name: "n", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)
	sum2Def := build.Task("sum2", func(a, b int) int { result = a + b; return result },
		build.Params(dtype.Param{Name: "a", Annotation: "int"}, dtype.Param{Name: "b", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)

	graph := build.App("fanin", dag.DirectPortKind{}, func(rec *build.Recorder) {
		a, err := incDef.Call(rec, 1)
		require.NoError(t, err)
		b, err := incDef.Call(rec, 2)
		require.NoError(t, err)
		_, err = sum2Def.Call(rec, a, b)
		require.NoError(t, err)
	})

	runGraph(t, graph)
	assert.Equal(t, 5, result)
}

// TestTupleFanOut covers a tuple-returning task split into two Tasklet
// handles, each fed to its own downstream task.
func TestTupleFanOut(t *testing.T) {
	var left, right int

	splitDef := build.Task("split", func(n int) (int, int) { return n - 1, n + 1 },
		build.Params(dtype.Param{Name: "n", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}, dtype.Param{Annotation: "int"}),
	)
	takeLeft := build.Task("takeLeft", func(n int) int { left = n; return n },
		build.Params(dtype.Param{Name: "n", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)
	takeRight := build.Task("takeRight", func(n int) int { right = n; return n },
		build.Params(dtype.Param{Name: "n", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)

	graph := build.App("tuplefanout", dag.DirectPortKind{}, func(rec *build.Recorder) {
		outs, err := splitDef.Call(rec, 10)
		require.NoError(t, err)
		tasklets, ok := outs.([]*dag.Tasklet)
		require.True(t, ok)
		require.Len(t, tasklets, 2)

		_, err = takeLeft.Call(rec, tasklets[0])
		require.NoError(t, err)
		_, err = takeRight.Call(rec, tasklets[1])
		require.NoError(t, err)
	})

	runGraph(t, graph)
	assert.Equal(t, 9, left)
	assert.Equal(t, 11, right)
}

// TestCallArityMismatch checks the definition-error path: calling a
// TaskDef with the wrong argument count returns an error instead of
// panicking.
func TestCallArityMismatch(t *testing.T) {
	addDef := build.Task("add", func(a, b int) int { return a + b },
		build.Params(dtype.Param{Name: "a", Annotation: "int"}, dtype.Param{Name: "b", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)
	rec := build.NewRecorder("bad", dag.DirectPortKind{})
	_, err := addDef.Call(rec, 1)
	assert.Error(t, err)
}

// TestTaskPanicsOnNonFunc checks Task()'s definition-time validation.
func TestTaskPanicsOnNonFunc(t *testing.T) {
	assert.Panics(t, func() {
		build.Task("bad", 42)
	})
}

// TestCallOutputCap checks the ten-output ceiling: a ten-slot tuple
// return records fine, an eleventh slot is a definition error.
func TestCallOutputCap(t *testing.T) {
	ten := make([]dtype.Param, 10)
	for i := range ten {
		ten[i] = dtype.Param{Annotation: "int"}
	}

	wide := build.Task("wide", func() any { return nil }, build.Returns(ten...))
	outs, err := wide.Call(build.NewRecorder("cap", dag.DirectPortKind{}))
	require.NoError(t, err)
	require.Len(t, outs.([]*dag.Tasklet), 10)

	tooWide := build.Task("toowide", func() any { return nil },
		build.Returns(append(ten, dtype.Param{Annotation: "int"})...))
	_, err = tooWide.Call(build.NewRecorder("cap", dag.DirectPortKind{}))
	assert.Error(t, err)
}
