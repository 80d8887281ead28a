package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/examples"
	"github.com/kisseru-go/kisseru/runner"
)

func TestBackendType(t *testing.T) {
	assert.Equal(t, backend.Sequential, backendType("serial"))
	assert.Equal(t, backend.Sequential, backendType("sequential"))
	assert.Equal(t, backend.Batch, backendType("slurm"))
	assert.Equal(t, backend.Batch, backendType("batch"))
	assert.Equal(t, backend.LocalMultiProcess, backendType("local"))
	assert.Equal(t, backend.LocalMultiProcess, backendType(""))
}

func TestRenderMarkdown_ListsExecutableUnits(t *testing.T) {
	r, err := runner.New("series", examples.Series, runner.Config{Type: backend.Sequential})
	assert.NoError(t, err)
	graph, err := r.Compile()
	assert.NoError(t, err)

	out := renderMarkdown(graph)
	assert.Contains(t, out, "series")
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "succ")
}
