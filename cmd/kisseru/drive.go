package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/backend/batch"
	"github.com/kisseru-go/kisseru/backend/multiprocess"
	"github.com/kisseru-go/kisseru/examples"
	"github.com/kisseru-go/kisseru/runner"
)

// newDriveCmd builds the subcommand never run by hand: a packaged archive's
// job scripts invoke it as `kisseru drive --graph graph.yaml --task <id>`,
// and the local multi-process backend's spawnUnit re-execs this same binary
// as `kisseru drive --app <name> --rundir <dir> --backend local --task
// <id>`. Either way it recompiles the same app from scratch (recovering the
// same task ids the parent compile assigned, since TaskGraph.AddTask is
// deterministic), then runs the one unit --task names, pulling its inputs
// from the handoff files upstream units left behind and leaving its own
// outputs for whatever reads them next.
func newDriveCmd() *cobra.Command {
	var (
		graphPath   string
		appName     string
		runDir      string
		backendName string
		taskID      string
	)

	cmd := &cobra.Command{
		Use:   "drive",
		Short: "run one executable unit of a compiled graph (invoked by a job script or a re-exec'd child process)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if taskID == "" {
				return fmt.Errorf("drive: --task is required")
			}

			name, typ, dir := appName, backendType(backendName), runDir
			if graphPath != "" {
				var err error
				name, dir, err = batch.LoadManifestApp(graphPath)
				if err != nil {
					return err
				}
				typ = backend.Batch
			}
			if name == "" {
				return fmt.Errorf("drive: --graph or --app is required")
			}

			fn, ok := examples.Apps[name]
			if !ok {
				return fmt.Errorf("drive: unknown app %q", name)
			}

			r, err := runner.New(name, fn, runner.Config{Type: typ, RunDir: dir})
			if err != nil {
				return err
			}
			graph, err := r.Compile()
			if err != nil {
				return err
			}

			if typ == backend.Batch {
				return batch.DriveTask(graph, taskID)
			}
			return multiprocess.DriveTask(graph, taskID)
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "path to a packaged batch graph manifest (graph.yaml)")
	cmd.Flags().StringVar(&appName, "app", "", "registered app name to recompile (multi-process re-exec form)")
	cmd.Flags().StringVar(&runDir, "rundir", "", "run directory to poll handoff files in (multi-process re-exec form)")
	cmd.Flags().StringVar(&backendName, "backend", "local", "backend the recompiled graph should use (multi-process re-exec form)")
	cmd.Flags().StringVar(&taskID, "task", "", "id of the executable unit to run")
	cmd.MarkFlagRequired("task")
	return cmd
}
