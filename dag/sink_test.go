package dag

import (
	"testing"

	"github.com/kisseru-go/kisseru/dtype"
	"github.com/stretchr/testify/assert"
)

func TestSink_AbsorbsFinalValueWithoutPanicking(t *testing.T) {
	producer := NewTask("producer", func(args map[string]any) any { return "done" })
	out := NewPort(dtype.Global().Lookup("str"), "0", 0, producer, DirectPortKind{})
	producer.AddOutput(out)

	producer.Edges = append(producer.Edges, NewSinkEdge(out))

	assert.NotPanics(t, func() {
		producer.Run()
	})
}
