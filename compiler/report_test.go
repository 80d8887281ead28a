package compiler

import (
	"testing"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/stretchr/testify/assert"
)

func TestReport_Success(t *testing.T) {
	var ran, postRan []string
	m := NewManager()
	m.Register(recordingPass{name: "preprocess", result: Continue, ran: &ran, postRan: &postRan})

	g := dag.NewTaskGraph("pipeline")
	ctx := NewContext(dag.DirectPortKind{})
	failedPass, ok := m.Run(g, ctx)
	assert.True(t, ok)

	out := Report(m, failedPass, ctx)
	assert.Contains(t, out, "preprocess")
	assert.Contains(t, out, "compilation succeeded")
}

func TestReport_Failure(t *testing.T) {
	var ran, postRan []string
	m := NewManager()
	m.Register(recordingPass{name: "typecheck", result: Error, ran: &ran, postRan: &postRan, errOnRun: true})

	g := dag.NewTaskGraph("pipeline")
	ctx := NewContext(dag.DirectPortKind{})
	failedPass, ok := m.Run(g, ctx)
	assert.False(t, ok)

	out := Report(m, failedPass, ctx)
	assert.Contains(t, out, "typecheck")
	assert.Contains(t, out, "compilation aborted")
}
