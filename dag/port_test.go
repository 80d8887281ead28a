package dag

import (
	"testing"

	"github.com/kisseru-go/kisseru/dtype"
	"github.com/stretchr/testify/assert"
)

func TestDirectPortKind_SendDeliversAndNotifies(t *testing.T) {
	var ran bool
	consumer := NewTask("consumer", func(args map[string]any) any {
		ran = true
		assert.Equal(t, 42, args["n"])
		return nil
	})
	in := NewPort(dtype.Global().Lookup("int"), "n", -1, consumer, DirectPortKind{})
	consumer.AddInput(in)
	in.FlipImmediate()
	assert.Equal(t, int32(1), consumer.Latch)

	producer := NewTask("producer", func(args map[string]any) any { return nil })
	out := NewPort(dtype.Global().Lookup("int"), "0", 0, producer, DirectPortKind{})
	producer.AddOutput(out)
	edge := NewEdge(out, in)
	producer.Edges = append(producer.Edges, edge)

	assert.NoError(t, edge.Send(42))
	consumer.Wait()
	assert.True(t, ran)
	assert.Equal(t, int32(0), consumer.Latch)
}

func TestPort_FlipImmediateTogglesLatch(t *testing.T) {
	task := NewTask("t", func(args map[string]any) any { return nil })
	p := NewPort(dtype.Global().Lookup("int"), "n", -1, task, DirectPortKind{})
	task.AddInput(p)

	assert.True(t, p.IsImmediate)
	p.FlipImmediate()
	assert.False(t, p.IsImmediate)
	assert.Equal(t, int32(1), task.Latch)

	p.FlipImmediate()
	assert.True(t, p.IsImmediate)
	assert.Equal(t, int32(0), task.Latch)
}
