package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/build"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/kisseru-go/kisseru/runner"
)

func TestAppRunner_CompileAndRun(t *testing.T) {
	var result int

	addDef := build.Task("add", func(a, b int) int { return a + b },
		build.Params(dtype.Param{Name: "a", Annotation: "int"}, dtype.Param{Name: "b", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)
	succDef := build.Task("succ", func(n int) int { result = n + 1; return result },
		build.Params(dtype.Param{Name: "n", Annotation: "int"}),
		build.Returns(dtype.Param{Annotation: "int"}),
	)

	r, err := runner.New("series", func(rec *build.Recorder) {
		sum, err := addDef.Call(rec, 1, 2)
		require.NoError(t, err)
		_, err = succDef.Call(rec, sum)
		require.NoError(t, err)
	}, runner.Config{Type: backend.Sequential})
	require.NoError(t, err)

	require.NoError(t, r.Run())
	assert.Equal(t, 4, result)
}

func TestAppRunner_PackageUnsupportedOnSequential(t *testing.T) {
	r, err := runner.New("noop", func(rec *build.Recorder) {}, runner.Config{Type: backend.Sequential})
	require.NoError(t, err)

	err = r.Package(t.TempDir(), t.TempDir()+"/out.tar.gz")
	assert.Error(t, err)
}

func TestNew_DefaultsToLocalMultiProcess(t *testing.T) {
	r, err := runner.New("defaulted", func(rec *build.Recorder) {}, runner.Config{})
	require.NoError(t, err)
	assert.Equal(t, "local", r.Backend().Name())
}
