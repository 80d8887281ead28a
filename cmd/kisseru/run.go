package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/examples"
	"github.com/kisseru-go/kisseru/runner"
)

func newRunCmd() *cobra.Command {
	var (
		backendName string
		storeDriver string
		storeDSN    string
	)

	cmd := &cobra.Command{
		Use:   "run <app>",
		Short: "load an app, compile its pipeline, and run it locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			fn, ok := examples.Apps[name]
			if !ok {
				return fmt.Errorf("run: unknown app %q", name)
			}

			st, err := openStore(storeDriver, storeDSN)
			if err != nil {
				return err
			}

			cfg := runner.Config{Type: backendType(backendName), Store: st}
			r, err := runner.New(name, fn, cfg)
			if err != nil {
				return err
			}
			return r.Run()
		},
	}
	cmd.Flags().StringVarP(&backendName, "backend", "b", "local", "execution backend: sequential|local|batch")
	cmd.Flags().StringVar(&storeDriver, "store", "", "run ledger backend: sqlite|postgres|redis (default: none)")
	cmd.Flags().StringVar(&storeDSN, "store-dsn", "", "run ledger connection string: sqlite path, postgres conn string, or redis addr")
	return cmd
}

// backendType maps the CLI's short backend names (`-b {slurm|local|serial}`)
// onto backend.Type.
func backendType(name string) backend.Type {
	switch name {
	case "serial", "sequential":
		return backend.Sequential
	case "slurm", "batch":
		return backend.Batch
	default:
		return backend.LocalMultiProcess
	}
}
