package multiprocess_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/backend/multiprocess"
	"github.com/kisseru-go/kisseru/examples"
	"github.com/kisseru-go/kisseru/runner"
)

// TestDriveTask_WaitsOnAllFanInInputs exercises the one path spawnUnit's
// re-exec actually drives: a unit compiled fresh in its own process, with
// its parents' handoff files written by other, independently-running
// compiles of the same graph. sum2 has two parents, so this is also the
// regression case for the double-execution bug a naive per-edge spawn would
// hit: DriveTask is called for t2 exactly once, after both of its inputs are
// already on disk.
func TestDriveTask_WaitsOnAllFanInInputs(t *testing.T) {
	runDir := t.TempDir()

	r1, err := runner.New("fanin", examples.FanIn, runner.Config{Type: backend.LocalMultiProcess, RunDir: runDir})
	require.NoError(t, err)
	g1, err := r1.Compile()
	require.NoError(t, err)

	r2, err := runner.New("fanin", examples.FanIn, runner.Config{Type: backend.LocalMultiProcess, RunDir: runDir})
	require.NoError(t, err)
	g2, err := r2.Compile()
	require.NoError(t, err)

	r3, err := runner.New("fanin", examples.FanIn, runner.Config{Type: backend.LocalMultiProcess, RunDir: runDir})
	require.NoError(t, err)
	g3, err := r3.Compile()
	require.NoError(t, err)

	// inc(1) and inc(2) are t0 and t1, the graph's two sources; each is
	// "driven" by its own independent compile, the way two separate
	// spawnUnit-launched processes would never collide on the same task.
	require.NoError(t, multiprocess.DriveTask(g1, "t0"))
	require.NoError(t, multiprocess.DriveTask(g2, "t1"))

	// sum2 (t2) depends on both; its own compile waits out both handoff
	// files before running exactly once.
	require.NoError(t, multiprocess.DriveTask(g3, "t2"))
}

// TestDriveTask_UnknownTaskId rejects a task id that isn't in the graph.
func TestDriveTask_UnknownTaskId(t *testing.T) {
	r, err := runner.New("fanin", examples.FanIn, runner.Config{Type: backend.LocalMultiProcess, RunDir: t.TempDir()})
	require.NoError(t, err)
	graph, err := r.Compile()
	require.NoError(t, err)

	err = multiprocess.DriveTask(graph, "does-not-exist")
	require.Error(t, err)
}
