// Command kisseru is the CLI front end: run, package, deploy, report and
// drive subcommands over the apps registered in package examples.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kisseru-go/kisseru/handler"
	"github.com/kisseru-go/kisseru/log"
	"github.com/kisseru-go/kisseru/trace"
)

func main() {
	var (
		logLevel string
		color    bool
		traced   bool
	)

	root := &cobra.Command{
		Use:   "kisseru",
		Short: "dataflow workflow compiler and runtime",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			if color {
				log.SetDefaultLogger(log.NewColorLogger(level))
			} else {
				log.SetDefaultLogger(log.NewDefaultLogger(level))
			}

			// The rewrite seam always runs at task-definition time; the
			// entry/exit tracer and profiler only when asked for, since
			// they log per task execution.
			handler.Global().RegisterInit(handler.NoOpASTOps{})
			if traced {
				handler.Global().RegisterPre(trace.EntryTracer{})
				handler.Global().RegisterPre(trace.ProfilerEntry{})
				handler.Global().RegisterPost(trace.ProfilerExit{})
				handler.Global().RegisterPost(trace.ExitTracer{})
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error|none")
	root.PersistentFlags().BoolVar(&color, "color", false, "color log output (kataras/golog) instead of the plain stdlib logger")
	root.PersistentFlags().BoolVar(&traced, "trace", false, "log every task's entry, arguments, result, and elapsed time (at debug level)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newPackageCmd())
	root.AddCommand(newDeployCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newDriveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseLogLevel maps the --log-level flag onto log.LogLevel.
func parseLogLevel(name string) (log.LogLevel, error) {
	switch name {
	case "debug":
		return log.LogLevelDebug, nil
	case "info":
		return log.LogLevelInfo, nil
	case "warn":
		return log.LogLevelWarn, nil
	case "error":
		return log.LogLevelError, nil
	case "none":
		return log.LogLevelNone, nil
	default:
		return 0, fmt.Errorf("unknown --log-level %q: want debug, info, warn, error, or none", name)
	}
}
