package compiler

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/kisseru-go/kisseru/log"
	"github.com/viant/afs"
)

// Transform inserts a synthetic conversion task for every edge TypeCheck
// flagged NeedsTransform, and for source-side mismatches between a
// source's immediate string argument's inferred file extension and its
// in-port's declared type.
type Transform struct {
	// FS accesses the on-disk (or remote) files being converted. Defaults
	// to afs.New() when left nil.
	FS afs.Service
}

// Name identifies the pass in diagnostics.
func (Transform) Name() string { return "transform" }

// Run splices a transform task into every edge needing one, and into every
// source whose literal file argument's extension mismatches its in-port.
func (t Transform) Run(graph *dag.TaskGraph, ctx *Context) Result {
	fs := t.FS
	if fs == nil {
		fs = afs.New()
	}

	for _, task := range graph.Tasks {
		for i := 0; i < len(task.Edges); i++ {
			edge := task.Edges[i]
			if !edge.NeedsTransform {
				continue
			}
			intype, outtype := edge.Source.Type, edge.Dest.Type
			newTask := newTransformTask(fs, intype, outtype, ctx.PortKind)

			oldDest := edge.Dest
			task.Edges = append(task.Edges[:i], task.Edges[i+1:]...)
			i--

			inPort := newTask.Inputs["infile"]
			inEdge := dag.NewEdge(edge.Source, inPort)
			inPort.FlipImmediate()
			task.Edges = append(task.Edges, inEdge)

			outPort := newTask.Outputs["0"]
			newTask.Edges = append(newTask.Edges, dag.NewEdge(outPort, oldDest))

			graph.AddTask(newTask)
		}
	}

	var newSources []*dag.Task
	var deletedSources []*dag.Task
	for _, source := range graph.Sources {
		for name, inPort := range source.Inputs {
			if !inPort.IsImmediate {
				continue
			}
			arg, ok := source.Args[name].(string)
			if !ok {
				continue
			}
			inferred := dtype.Global().InferFileType(arg)
			if inferred == nil || inferred.Id == inPort.Type.Id {
				continue
			}
			newTask := newLiteralTransformTask(fs, arg, inferred, inPort.Type, ctx.PortKind)
			inPort.FlipImmediate()
			newTask.Edges = append(newTask.Edges, dag.NewEdge(newTask.Outputs["0"], inPort))

			newSources = append(newSources, newTask)
			deletedSources = append(deletedSources, source)
			graph.AddTask(newTask)
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

// PostRun does nothing for Transform.
func (Transform) PostRun(graph *dag.TaskGraph, ctx *Context) {}

// newTransformTask builds the synthetic task converting a value already
// flowing on an edge from intype to outtype.
func newTransformTask(fs afs.Service, intype, outtype *dtype.Type, kind dag.PortKind) *dag.Task {
	name := fmt.Sprintf("transform_%s_to_%s", intype.Id, outtype.Id)
	task := dag.NewTask(name, transformRunner(fs, outtype.Ext))
	task.IsTransform = true

	in := dag.NewPort(intype, "infile", -1, task, kind)
	task.AddInput(in)

	out := dag.NewPort(outtype, "0", 0, task, kind)
	task.AddOutput(out)

	return task
}

// newLiteralTransformTask builds a synthetic source-side transform task
// that consumes the literal file argument directly (no upstream task) and
// produces a value of the source's declared type.
func newLiteralTransformTask(fs afs.Service, literal string, intype, outtype *dtype.Type, kind dag.PortKind) *dag.Task {
	name := fmt.Sprintf("transform_%s_to_%s", intype.Id, outtype.Id)
	task := dag.NewTask(name, transformRunner(fs, outtype.Ext))
	task.IsTransform = true

	in := dag.NewPort(intype, "infile", -1, task, kind)
	task.AddInput(in)
	task.Args["infile"] = literal

	out := dag.NewPort(outtype, "0", 0, task, kind)
	task.AddOutput(out)

	return task
}

// transformRunner downloads the infile argument and re-uploads its bytes
// under the target extension, inflating gzip input along the way.
// Data-science libraries are out of scope for
// user tasks, but this is the compiler's own synthesized task, not a user
// task, so it uses afs directly.
func transformRunner(fs afs.Service, outExt string) dag.Runner {
	return func(args map[string]any) any {
		infile, _ := args["infile"].(string)
		if infile == "" {
			log.Error("transform: missing infile argument")
			return nil
		}
		outfile := strings.TrimSuffix(infile, filepath.Ext(infile))
		if !strings.HasSuffix(outfile, outExt) {
			outfile += outExt
		}

		ctx := context.Background()
		data, err := fs.DownloadWithURL(ctx, infile)
		if err != nil {
			log.Error("transform: downloading %s: %v", infile, err)
			return nil
		}
		if strings.HasSuffix(infile, ".gz") {
			if data, err = gunzip(data); err != nil {
				log.Error("transform: decompressing %s: %v", infile, err)
				return nil
			}
		}
		if err := fs.Upload(ctx, outfile, os.FileMode(0o644), bytes.NewReader(data)); err != nil {
			log.Error("transform: uploading %s: %v", outfile, err)
			return nil
		}
		return outfile
	}
}

// gunzip inflates a gzip-compressed byte slice in memory; transform inputs
// are single staged files, small enough not to need streaming.
func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
