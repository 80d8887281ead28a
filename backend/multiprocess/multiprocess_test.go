package multiprocess

import (
	"context"
	"testing"
	"time"

	"github.com/viant/afs"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_RunFlowHandsValueOffThroughFile(t *testing.T) {
	b, err := backend.New(backend.Config{Type: backend.LocalMultiProcess, RunDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", b.Name())

	g := dag.NewTaskGraph("pipeline")
	intType := dtype.Global().Lookup("int")

	producer := dag.NewTask("producer", func(args map[string]any) any { return 21 })
	out := dag.NewPort(intType, "0", 0, producer, b.GetPort())
	producer.AddOutput(out)
	g.AddTask(producer)
	g.SetSource(producer)

	done := make(chan any, 1)
	consumer := dag.NewTask("consumer", func(args map[string]any) any { done <- args["v"]; return nil })
	in := dag.NewPort(intType, "v", -1, consumer, b.GetPort())
	consumer.AddInput(in)
	in.FlipImmediate()
	g.AddTask(consumer)

	producer.Edges = append(producer.Edges, dag.NewEdge(out, in))

	require.NoError(t, b.RunFlow(g))

	select {
	case v := <-done:
		assert.Equal(t, 21, v)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never ran")
	}

	b.Cleanup()
}

func TestHandoff_MissingFileIsNotAnError(t *testing.T) {
	fs := afs.New()
	_, ok, err := readHandoff(context.Background(), fs, handoffPath(t.TempDir(), "task1", "v"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandoff_RoundTrip(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()
	path := handoffPath(t.TempDir(), "task1", "v")
	require.NoError(t, writeHandoff(ctx, fs, path, 42))

	val, ok, err := readHandoff(ctx, fs, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, val)
}
