package compiler

import (
	"os"
	"testing"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotGraphGenerator_RendersSourceAndSinkStyling(t *testing.T) {
	g := dag.NewTaskGraph("pipeline")
	intType := dtype.Global().Lookup("int")

	producer := dag.NewTask("producer", func(args map[string]any) any { return 1 })
	out := dag.NewPort(intType, "0", 0, producer, dag.DirectPortKind{})
	producer.AddOutput(out)
	g.AddTask(producer)

	consumer := dag.NewTask("consumer", func(args map[string]any) any { return nil })
	in := dag.NewPort(intType, "v", -1, consumer, dag.DirectPortKind{})
	consumer.AddInput(in)
	g.AddTask(consumer)
	producer.Edges = append(producer.Edges, dag.NewEdge(out, in))

	PreProcess{}.Run(g, NewContext(dag.DirectPortKind{}))

	ctx := NewContext(dag.DirectPortKind{})
	gen := DotGraphGenerator{Tag: "pre"}
	result := gen.Run(g, ctx)
	require.Equal(t, Continue, result)

	dot, ok := ctx.Property(dotGraphProperty).(map[string]string)
	require.True(t, ok)
	source := dot["pre"]
	assert.Contains(t, source, "digraph pipeline {")
	assert.Contains(t, source, "peripheries=2")  // producer is a source
	assert.Contains(t, source, "fillcolor=orange") // consumer is a sink
	assert.Contains(t, source, "producer -> consumer;")
}

func TestDotGraphGenerator_PostRunWritesTaggedFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	g := dag.NewTaskGraph("mygraph")
	ctx := NewContext(dag.DirectPortKind{})
	gen := DotGraphGenerator{Tag: "post"}
	gen.Run(g, ctx)
	gen.PostRun(g, ctx)

	data, err := os.ReadFile("mygraph-post.dot")
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph mygraph")
}
