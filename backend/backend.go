package backend

import (
	"fmt"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/store"
	"github.com/viant/afs"
)

// Type names the three execution strategies.
type Type string

const (
	// Sequential runs the whole graph on one goroutine via DirectPortKind.
	Sequential Type = "sequential"
	// LocalMultiProcess runs each non-fused, non-source task in its own OS
	// process re-exec'ing `kisseru drive` (falling back to a goroutine when
	// the graph has no registered app name to recompile from — see
	// backend/multiprocess), handing values off through files.
	LocalMultiProcess Type = "local"
	// Batch packages the graph as a Slurm-style job archive instead of
	// executing it directly.
	Batch Type = "batch"
)

// Config selects and parametrizes a backend. RunDir is the value-handoff
// directory for LocalMultiProcess and the archive staging directory for
// Batch; Store is optional run-ledger persistence, unused by Sequential.
// AppName is the examples.Apps registry key the graph was (or will be)
// recorded from; LocalMultiProcess uses it to re-exec this binary's own
// `drive` subcommand per task. It is empty for a graph built by hand
// rather than through runner.New, which falls that backend back to an
// in-process goroutine per task instead.
type Config struct {
	Type    Type
	RunDir  string
	AppName string
	FS      afs.Service
	Store   store.RunStore
}

// Backend is the capability set every execution strategy implements: a
// port factory, a task-launch strategy, and lifecycle hooks.
type Backend interface {
	// Name identifies the backend for diagnostics and archive naming.
	Name() string

	// GetPort returns the PortKind new ports on this backend should use,
	// so the compiler's Transform/Stage passes and the task recorder wire
	// synthetic and user tasks identically.
	GetPort() dag.PortKind

	// RunTask launches a single task (already latch-satisfied) according
	// to this backend's scheduling model.
	RunTask(task *dag.Task)

	// RunFlow fires every source task in graph and blocks until
	// graph.NumTasks executable units have completed.
	RunFlow(graph *dag.TaskGraph) error

	// Package writes graph as a deployable archive under outFile, using
	// appDir as scratch space. Sequential and LocalMultiProcess backends
	// return an error — packaging is Batch-only.
	Package(graph *dag.TaskGraph, appDir, outFile string) error

	// Cleanup releases any resources (goroutines, handoff files, store
	// connections) this backend acquired for a run.
	Cleanup()
}

// factory constructs a Backend from a Config, registered by Type.
type factory func(cfg Config) (Backend, error)

var registry = make(map[Type]factory)

// Register associates a backend constructor with a Type, called from each
// backend subpackage's init().
func Register(t Type, f factory) {
	registry[t] = f
}

// New builds the backend named by cfg.Type, defaulting Sequential when
// Type is empty.
func New(cfg Config) (Backend, error) {
	t := cfg.Type
	if t == "" {
		t = Sequential
	}
	f, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("backend: unknown type %q", t)
	}
	return f(cfg)
}
