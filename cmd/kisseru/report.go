package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/spf13/cobra"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/examples"
	"github.com/kisseru-go/kisseru/runner"
	"github.com/kisseru-go/kisseru/store"
)

func newReportCmd() *cobra.Command {
	var (
		backendName string
		htmlOut     string
		storeDriver string
		storeDSN    string
		runID       string
	)

	cmd := &cobra.Command{
		Use:   "report <app>",
		Short: "compile an app and print its task inventory as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			fn, ok := examples.Apps[name]
			if !ok {
				return fmt.Errorf("report: unknown app %q", name)
			}

			st, err := openStore(storeDriver, storeDSN)
			if err != nil {
				return err
			}

			r, err := runner.New(name, fn, runner.Config{Type: backendType(backendName), Store: st})
			if err != nil {
				return err
			}
			graph, err := r.Compile()
			if err != nil {
				return err
			}

			md := renderMarkdown(graph)
			if st != nil && runID != "" {
				ledger, err := renderLedger(st, runID)
				if err != nil {
					return err
				}
				md += ledger
			}
			fmt.Print(md)

			if htmlOut != "" {
				html := markdown.ToHTML([]byte(md), nil, nil)
				if err := os.WriteFile(htmlOut, html, 0o644); err != nil {
					return fmt.Errorf("report: writing %s: %w", htmlOut, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&backendName, "backend", "b", "local", "execution backend: sequential|local|batch")
	cmd.Flags().StringVar(&htmlOut, "html", "", "also render the report to this HTML file")
	cmd.Flags().StringVar(&storeDriver, "store", "", "run ledger backend: sqlite|postgres|redis (default: none)")
	cmd.Flags().StringVar(&storeDSN, "store-dsn", "", "run ledger connection string: sqlite path, postgres conn string, or redis addr")
	cmd.Flags().StringVar(&runID, "run-id", "", "print this run's ledger (the id `kisseru package` logged when it recorded queued jobs)")
	return cmd
}

// renderLedger looks up every record a batch or multiprocess run saved
// under runID and appends them to the report as a second table, so
// `kisseru report --store ... --run-id ...` can show what `kisseru
// package`'s recordQueued pending entries turned into as job scripts ran.
func renderLedger(st store.RunStore, runID string) (string, error) {
	records, err := st.List(context.Background(), runID)
	if err != nil {
		return "", fmt.Errorf("report: listing run %s: %w", runID, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n## Run %s\n\n", runID)
	if len(records) == 0 {
		fmt.Fprintln(&b, "No ledger entries recorded for this run id.")
		return b.String(), nil
	}
	fmt.Fprintln(&b, "| Task | Status | Timestamp |")
	fmt.Fprintln(&b, "|---|---|---|")
	for _, rec := range records {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", rec.TaskName, rec.Status, rec.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	}
	return b.String(), nil
}

// renderMarkdown writes a graph's task inventory as a Markdown document:
// one table row per executable unit, plus its fused members if any.
// gomarkdown then turns this into HTML for --html, same document either
// way.
func renderMarkdown(graph *dag.TaskGraph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", graph.Name)
	fmt.Fprintf(&b, "%d executable units, %d recorded tasks.\n\n", graph.NumTasks, len(graph.Tasks))
	fmt.Fprintln(&b, "| Task | Source | Sink | Fused |")
	fmt.Fprintln(&b, "|---|---|---|---|")

	ids := make([]string, 0, len(graph.Tasks))
	for id := range graph.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// A fused unit is registered under its head's id; render it as the
	// ordered member chain so absorbed tasks still show up in the report.
	fusedByHead := make(map[string]*dag.FusedTask)
	for _, ft := range graph.FuseeMap {
		fusedByHead[ft.Head.Id] = ft
	}

	for _, id := range ids {
		t := graph.Tasks[id]
		if _, absorbed := graph.FuseeMap[id]; absorbed {
			continue
		}
		name := t.Name
		if ft, ok := fusedByHead[id]; ok {
			members := make([]string, len(ft.Tasks))
			for i, member := range ft.Tasks {
				members[i] = member.Name
			}
			name = strings.Join(members, " + ")
		}
		fmt.Fprintf(&b, "| %s | %v | %v | %v |\n", name, t.IsSource, t.IsSink, t.IsFused)
	}
	return b.String()
}
