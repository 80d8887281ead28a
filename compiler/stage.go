package compiler

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/kisseru-go/kisseru/log"
	"github.com/viant/afs"
)

// remoteSchemes are the URL schemes Stage recognizes as needing download,
// extensible to anything afs can fetch.
var remoteSchemes = []string{"ftp:", "http:", "https:"}

// Stage synthesizes a download task for every source's immediate input
// whose literal argument is a remote URL, so the rest of the graph only
// ever sees local filenames.
type Stage struct {
	// FS fetches the remote resource. Defaults to afs.New() when nil.
	FS afs.Service
}

// Name identifies the pass in diagnostics.
func (Stage) Name() string { return "stage" }

// Run replaces every remote-URL source input with a staging task.
func (s Stage) Run(graph *dag.TaskGraph, ctx *Context) Result {
	fs := s.FS
	if fs == nil {
		fs = afs.New()
	}

	var newSources []*dag.Task
	var deletedSources []*dag.Task
	for _, source := range graph.Sources {
		for name, inPort := range source.Inputs {
			if !inPort.IsImmediate {
				continue
			}
			arg, ok := source.Args[name].(string)
			if !ok || !isRemoteURL(arg) {
				continue
			}

			task := newStagingTask(fs, arg, ctx.PortKind)
			inPort.FlipImmediate()
			task.Edges = append(task.Edges, dag.NewEdge(task.Outputs["0"], inPort))

			newSources = append(newSources, task)
			deletedSources = append(deletedSources, source)
			graph.AddTask(task)
		}
	}

	for _, source := range deletedSources {
		graph.UnsetSource(source)
	}
	for _, source := range newSources {
		graph.SetSource(source)
	}

	return Continue
}

// PostRun does nothing for Stage.
func (Stage) PostRun(graph *dag.TaskGraph, ctx *Context) {}

func isRemoteURL(arg string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(arg, scheme) {
			return true
		}
	}
	return false
}

func newStagingTask(fs afs.Service, url string, kind dag.PortKind) *dag.Task {
	task := dag.NewTask(fmt.Sprintf("stage_%s", path.Base(url)), stagingRunner(fs))
	task.IsStaging = true
	task.Args["url"] = url

	in := dag.NewPort(dtype.Global().Lookup("str"), "url", -1, task, kind)
	task.AddInput(in)

	out := dag.NewPort(dtype.Global().Lookup("anyfile"), "0", 0, task, kind)
	task.AddOutput(out)

	return task
}

// stagingRunner downloads the url argument to a local file sharing its
// basename and returns that filename.
func stagingRunner(fs afs.Service) dag.Runner {
	return func(args map[string]any) any {
		url, _ := args["url"].(string)
		if url == "" {
			log.Error("stage: missing url argument")
			return nil
		}
		filename := path.Base(url)

		ctx := context.Background()
		content, err := fs.DownloadWithURL(ctx, url)
		if err != nil {
			log.Error("stage: downloading %s: %v", url, err)
			return nil
		}
		if err := os.WriteFile(filename, content, 0o644); err != nil {
			log.Error("stage: writing %s: %v", filename, err)
			return nil
		}
		return filename
	}
}
