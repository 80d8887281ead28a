package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kisseru-go/kisseru/examples"
	"github.com/kisseru-go/kisseru/runner"
)

func newPackageCmd() *cobra.Command {
	var (
		backendName string
		appDir      string
		outDir      string
		storeDriver string
		storeDSN    string
	)

	cmd := &cobra.Command{
		Use:   "package <app>",
		Short: "compile an app and emit a deployable archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			fn, ok := examples.Apps[name]
			if !ok {
				return fmt.Errorf("package: unknown app %q", name)
			}

			st, err := openStore(storeDriver, storeDSN)
			if err != nil {
				return err
			}

			r, err := runner.New(name, fn, runner.Config{Type: backendType(backendName), Store: st})
			if err != nil {
				return err
			}

			outFile := filepath.Join(outDir, name+".tar.gz")
			if err := r.Package(appDir, outFile); err != nil {
				return err
			}
			fmt.Println(outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&backendName, "backend", "b", "slurm", "packaging backend: slurm|local|serial")
	cmd.Flags().StringVarP(&appDir, "app-dir", "a", ".", "scratch directory for the unpacked archive contents")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the archive into")
	cmd.Flags().StringVar(&storeDriver, "store", "", "run ledger backend: sqlite|postgres|redis (default: none)")
	cmd.Flags().StringVar(&storeDSN, "store-dsn", "", "run ledger connection string: sqlite path, postgres conn string, or redis addr")
	return cmd
}
