// Package runner orchestrates one app from source to execution: select a
// backend, record the task graph, run the compiler pass pipeline over it,
// then either execute it directly or package it as a deployable archive.
package runner

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/build"
	"github.com/kisseru-go/kisseru/compiler"
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/log"
	"github.com/kisseru-go/kisseru/store"

	_ "github.com/kisseru-go/kisseru/backend/batch"
	_ "github.com/kisseru-go/kisseru/backend/multiprocess"
	_ "github.com/kisseru-go/kisseru/backend/sequential"
)

// Config selects the backend an AppRunner compiles and runs against.
type Config struct {
	Type   backend.Type
	RunDir string
	// Store is the optional run ledger the multiprocess and batch backends
	// record task status into. Unused by Sequential.
	Store store.RunStore
}

// defaultConfig picks the local multi-process backend when none is given.
func defaultConfig() Config {
	return Config{Type: backend.LocalMultiProcess}
}

// AppRunner ties one app's recording function to a selected backend and
// drives it through compile, run and package.
type AppRunner struct {
	name    string
	record  func(rec *build.Recorder)
	backend backend.Backend
	graph   *dag.TaskGraph
}

// New constructs an AppRunner for the app named name, whose pipeline is
// built by record. cfg selects the backend; the zero Config selects
// LocalMultiProcess.
//
// name is threaded into backend.Config.AppName, which is what lets
// backend/multiprocess re-exec this binary's own `drive` subcommand one
// task at a time instead of a goroutine per task: the child process looks
// name up in examples.Apps and recompiles the same pipeline rather than
// inheriting any in-process state.
func New(name string, record func(rec *build.Recorder), cfg Config) (*AppRunner, error) {
	if cfg.Type == "" {
		cfg = defaultConfig()
	}
	be, err := backend.New(backend.Config{Type: cfg.Type, RunDir: cfg.RunDir, AppName: name, Store: cfg.Store})
	if err != nil {
		return nil, fmt.Errorf("runner: selecting backend: %w", err)
	}
	log.Info("using %q backend (%s/%s)", be.Name(), runtime.GOOS, runtime.GOARCH)
	return &AppRunner{name: name, record: record, backend: be}, nil
}

// Compile records the app's graph against the selected backend's port kind,
// then runs the full compiler pass pipeline over it. It fails fast on the
// first pass that returns compiler.Error.
func (r *AppRunner) Compile() (*dag.TaskGraph, error) {
	log.Info("compiling pipeline %q", r.name)
	rec := build.NewRecorder(r.name, r.backend.GetPort())
	r.record(rec)
	graph := rec.Graph

	// The "before" snapshot sits after Stage so it captures the staging
	// and transform tasks those passes synthesize: it is the graph as
	// Fusion finds it, not as the recorder left it.
	mgr := compiler.NewManager()
	mgr.Register(compiler.PreProcess{})
	mgr.Register(compiler.TypeCheck{})
	mgr.Register(compiler.Transform{})
	mgr.Register(compiler.Stage{})
	mgr.Register(compiler.DotGraphGenerator{Tag: "before"})
	mgr.Register(compiler.Fusion{})
	mgr.Register(compiler.DotGraphGenerator{Tag: "after"})
	mgr.Register(compiler.PostProcess{})

	ctx := compiler.NewContext(r.backend.GetPort())
	failedPass, ok := mgr.Run(graph, ctx)
	fmt.Print(compiler.Report(mgr, failedPass, ctx))
	if !ok {
		return nil, fmt.Errorf("runner: compilation aborted at pass %q: %w", failedPass, ctx.Errors)
	}

	r.graph = graph
	log.Info("running pipeline %q", r.name)
	return graph, nil
}

// Run compiles the app (if not already compiled) and executes it on the
// selected backend.
func (r *AppRunner) Run() error {
	graph := r.graph
	if graph == nil {
		var err error
		if graph, err = r.Compile(); err != nil {
			return err
		}
	}
	defer r.backend.Cleanup()
	return r.backend.RunFlow(graph)
}

// Package compiles the app and hands the resulting graph to the backend's
// packaging routine, writing a deployable archive to outFile. Only the
// batch backend implements this; other backends return an error.
func (r *AppRunner) Package(appDir, outFile string) error {
	graph, err := r.Compile()
	if err != nil {
		return err
	}
	return r.backend.Package(graph, appDir, outFile)
}

// Backend returns the selected backend, for callers (the CLI's `report`
// command) that need its name without driving a full run.
func (r *AppRunner) Backend() backend.Backend { return r.backend }

// Deploy uploads a batch archive built by Package to url and triggers its
// submission: the "deploy -u <url> <archive>" CLI surface. Upload uses
// go-cleanhttp's hardened client (connection-pool defaults tuned against
// http.DefaultTransport's well-known keep-alive leak) rather than
// http.DefaultClient.
func Deploy(archive, url string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("runner: opening archive %s: %w", archive, err)
	}
	defer f.Close()

	client := cleanhttp.DefaultClient()
	req, err := http.NewRequest(http.MethodPost, url, f)
	if err != nil {
		return fmt.Errorf("runner: building deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/gzip")
	req.Header.Set("X-Kisseru-Archive", filepath.Base(archive))

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("runner: deploying %s to %s: %w", archive, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("runner: deploy to %s: server returned %s", url, resp.Status)
	}
	log.Info("deployed %s to %s (%s)", archive, url, resp.Status)
	return nil
}
