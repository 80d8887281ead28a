package compiler

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kisseru-go/kisseru/dag"
)

// dotGraphProperty is the Context property key the generated dot sources
// are stashed under between Run and PostRun.
const dotGraphProperty = "__dot_graph__"

// DotGraphGenerator renders graph to Graphviz DOT, once per invocation
// (the runner registers it twice: once immediately before Fusion with tag
// "before", once after with tag "after").
type DotGraphGenerator struct {
	// Tag distinguishes multiple DotGraphGenerator runs in one compile
	// (e.g. "before"/"after" fusion). Empty means the only dot file is
	// named after the graph itself.
	Tag string
}

// Name identifies the pass in diagnostics.
func (d DotGraphGenerator) Name() string {
	if d.Tag == "" {
		return "dotgraph"
	}
	return fmt.Sprintf("dotgraph-%s", d.Tag)
}

// Run walks every source's reachable subgraph and renders it to DOT,
// stashing the result under ctx.Properties for PostRun to write out.
func (d DotGraphGenerator) Run(graph *dag.TaskGraph, ctx *Context) Result {
	dot := renderDot(graph)

	graphs, _ := ctx.Property(dotGraphProperty).(map[string]string)
	if graphs == nil {
		graphs = make(map[string]string)
	}
	graphs[d.Tag] = dot
	ctx.SetProperty(dotGraphProperty, graphs)

	return Continue
}

// PostRun writes every accumulated tag's dot source to "<graph>.dot" (or
// "<graph>-<tag>.dot" when tagged), one file per tag.
func (d DotGraphGenerator) PostRun(graph *dag.TaskGraph, ctx *Context) {
	graphs, _ := ctx.Property(dotGraphProperty).(map[string]string)
	for tag, dot := range graphs {
		filename := graph.Name
		if tag != "" {
			filename = fmt.Sprintf("%s-%s", graph.Name, tag)
		}
		if err := os.WriteFile(filename+".dot", []byte(dot), 0o644); err != nil {
			ctx.AddWarning(fmt.Sprintf("dotgraph: writing %s.dot: %v", filename, err))
		}
	}
}

// nodeAttrs returns a task's DOT style attributes: double border for a
// source, orange fill for a sink, red box for a compiler-synthesized
// staging/transform task.
func nodeAttrs(t *dag.Task) string {
	attrs := "fillcolor=lightcyan"
	if t.IsSource {
		attrs += " peripheries=2"
	}
	if t.IsSink {
		attrs += " fillcolor=orange"
	}
	if t.IsStaging || t.IsTransform {
		attrs += " shape=box fillcolor=red style=\"filled,dashed\" color=red"
	}
	return attrs + " style=filled"
}

// renderDot performs a DFS from every graph source, emitting one node
// declaration per visited task and one edge per traversed edge. Fused
// chains are rendered as a single subgraph cluster around their members.
func renderDot(graph *dag.TaskGraph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %s {\n", dotIdentifier(graph.Name))

	visited := make(map[string]bool)
	var nodeOrder []string
	var edgeLines []string

	var dfs func(t *dag.Task)
	dfs = func(t *dag.Task) {
		if t == nil || visited[t.Id] {
			return
		}
		visited[t.Id] = true
		nodeOrder = append(nodeOrder, t.Id)

		for _, edge := range t.Edges {
			// A Sink's Dest port shares its owning task's TaskRef (it has
			// no consumer task of its own), which would otherwise read as
			// a self-loop; IsInport is false for both a Sink port and any
			// other non-task destination, so it doubles as "has no
			// further node to draw".
			if !edge.Dest.IsInport {
				continue
			}
			child := edge.Dest.TaskRef
			if child == nil {
				continue
			}
			edgeLines = append(edgeLines, fmt.Sprintf("  %s -> %s;", dotIdentifier(t.Name), dotIdentifier(child.Name)))
			dfs(child)
		}
	}

	sourceIds := make([]string, 0, len(graph.Sources))
	for id := range graph.Sources {
		sourceIds = append(sourceIds, id)
	}
	sort.Strings(sourceIds)
	for _, id := range sourceIds {
		dfs(graph.Sources[id])
	}

	clustered := make(map[string]bool)
	for _, id := range nodeOrder {
		task := graph.Tasks[id]
		if task == nil {
			continue
		}
		if task.IsFused {
			fused, ok := asFusedTask(task)
			if ok {
				writeCluster(&sb, fused)
				for _, member := range fused.Tasks {
					clustered[member.Id] = true
				}
				continue
			}
		}
		if clustered[id] {
			continue
		}
		fmt.Fprintf(&sb, "  %s [label=%q %s];\n", dotIdentifier(task.Name), task.Name, nodeAttrs(task))
	}

	for _, line := range edgeLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

// asFusedTask recovers the FusedTask a task flagged IsFused belongs to.
// Fusion registers a FusedTask under its Head's id (sharing its identity),
// so Head itself never appears as a key in FuseeMap; every other member
// does, mapped to the same FusedTask, so this scans the map's values for
// the one whose Head is t.
func asFusedTask(t *dag.Task) (*dag.FusedTask, bool) {
	for _, fused := range t.Graph.FuseeMap {
		if fused.Head.Id == t.Id {
			return fused, true
		}
	}
	return nil, false
}

func writeCluster(sb *strings.Builder, fused *dag.FusedTask) {
	fmt.Fprintf(sb, "  subgraph cluster_%s {\n", dotIdentifier(fused.Head.Id))
	sb.WriteString("    style=dashed;\n")
	fmt.Fprintf(sb, "    label=%q;\n", "fused")
	for _, member := range fused.Tasks {
		fmt.Fprintf(sb, "    %s [label=%q %s];\n", dotIdentifier(member.Name), member.Name, nodeAttrs(member))
	}
	sb.WriteString("  }\n")
}

// dotIdentifier sanitizes a task/graph name into a bare DOT identifier.
func dotIdentifier(name string) string {
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_")
	return replacer.Replace(name)
}
