package multiprocess

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"

	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/log"
	"github.com/kisseru-go/kisseru/store"
)

func init() {
	backend.Register(backend.LocalMultiProcess, New)
}

// Backend runs each executable unit in its own OS process when it knows
// the examples.Apps name the graph was recorded from (appName), re-exec'ing
// this same binary's `drive` subcommand once per unit. A graph built by
// hand, with no registered app to recompile from — as this package's own
// unit tests do, to exercise the port/handoff protocol in isolation — has
// no appName, and falls back to a goroutine per task instead, since there
// is no way to hand an arbitrary Go closure to a freshly exec'd process.
type Backend struct {
	runDir  string
	runID   string
	appName string
	fs      afs.Service
	store   store.RunStore
}

// New constructs the local multi-process backend. cfg.RunDir defaults to a
// fresh temp directory when empty; cfg.FS defaults to afs.New().
func New(cfg backend.Config) (backend.Backend, error) {
	runDir := cfg.RunDir
	if runDir == "" {
		dir, err := os.MkdirTemp("", "kisseru-run-*")
		if err != nil {
			return nil, fmt.Errorf("multiprocess: creating run directory: %w", err)
		}
		runDir = dir
	} else if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("multiprocess: preparing run directory %s: %w", runDir, err)
	}

	fs := cfg.FS
	if fs == nil {
		fs = afs.New()
	}

	return &Backend{runDir: runDir, runID: uuid.NewString(), appName: cfg.AppName, fs: fs, store: cfg.Store}, nil
}

// Name identifies the backend for diagnostics and archive naming.
func (b *Backend) Name() string { return "local" }

// GetPort returns a PortKind backed by this backend's run directory.
func (b *Backend) GetPort() dag.PortKind {
	return PortKind{backend: b}
}

// RunTask runs task on its own goroutine, standing in for the original's
// multiprocessing.Process spawn where no appName is available to recompile
// from (this package's own tests, which hand-build graphs out of inline
// closures with nothing registered in examples.Apps).
func (b *Backend) RunTask(task *dag.Task) {
	b.record(task, store.StatusRunning)
	go func() {
		task.Run()
		b.record(task, store.StatusDone)
	}()
}

// RunFlow fires every source task and blocks until the whole graph has
// finished.
//
// With an appName, RunFlow enumerates every executable unit up front
// (executableUnits, same notion batch's Package uses) and gives each one
// exactly one OS process: a source unit runs inline in this process since
// it has no inputs to wait on, every other unit is handed to spawnUnit. A unit
// is spawned exactly once regardless of how many in-edges it has, which is
// what keeps a fan-in task from being driven — and its function run — by
// more than one process: PortKind.Send never spawns, it only ever writes a
// handoff file for whichever process is already polling it.
//
// Without an appName, every source runs via RunTask's goroutine and the
// goroutine cascade each downstream Send kicks off runs entirely in this
// process, reporting back through TaskGraph.TaskCompleted, so the usual
// fire-sources-then-graph.Wait() applies.
func (b *Backend) RunFlow(graph *dag.TaskGraph) error {
	if b.appName == "" {
		for _, source := range graph.Sources {
			b.RunTask(source)
		}
		graph.Wait()
		return nil
	}

	units := executableUnits(graph)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	for _, unit := range units {
		wg.Add(1)
		go func(unit *dag.Task) {
			defer wg.Done()
			var err error
			if unit.IsSource {
				b.record(unit, store.StatusRunning)
				unit.Run()
				b.record(unit, store.StatusDone)
			} else {
				err = b.spawnUnit(unit)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(unit)
	}
	wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("multiprocess: %d task process(es) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// spawnUnit re-execs this binary's `drive` subcommand for unit and blocks
// until that process exits. The child recompiles b.appName from scratch,
// recovering the same task ids this process's graph holds (TaskGraph.AddTask
// assigns ids in deterministic recording order), and DriveTask polls unit's
// own input handoff files until every one has arrived before running it —
// so a fan-in unit's single process waits out all of its parents, however
// many processes those parents are running in.
func (b *Backend) spawnUnit(unit *dag.Task) error {
	b.record(unit, store.StatusRunning)

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("multiprocess: resolving this binary's path: %w", err)
	}
	cmd := exec.Command(exe, "drive",
		"--app", b.appName,
		"--rundir", b.runDir,
		"--backend", "local",
		"--task", unit.Id,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("multiprocess: task %s (%s) process: %w", unit.Name, unit.Id, err)
	}

	b.record(unit, store.StatusDone)
	return nil
}

// executableUnits returns every task in graph that is not itself absorbed
// into a FusedTask, mirroring backend/batch's helper of the same name: the
// set graph.NumTasks counts, and the set RunFlow gives exactly one process.
func executableUnits(graph *dag.TaskGraph) []*dag.Task {
	var units []*dag.Task
	for id, task := range graph.Tasks {
		if _, absorbed := graph.FuseeMap[id]; absorbed {
			continue
		}
		units = append(units, task)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Id < units[j].Id })
	return units
}

// Package is unsupported on the local multi-process backend: packaging an
// archive is batch-only.
func (b *Backend) Package(graph *dag.TaskGraph, appDir, outFile string) error {
	return fmt.Errorf("multiprocess: package is not supported, use the batch backend")
}

// Cleanup removes this run's handoff directory.
func (b *Backend) Cleanup() {
	if err := os.RemoveAll(b.runDir); err != nil {
		log.Warn("multiprocess: cleaning up run directory %s: %v", b.runDir, err)
	}
}

// record best-effort persists a task's status if a store.RunStore was
// configured; the multiprocess and batch backends are the ones whose tasks
// run outside the compiling process, so this is where run history is worth
// keeping. The sequential backend has no need of one.
func (b *Backend) record(task *dag.Task, status store.Status) {
	if b.store == nil {
		return
	}
	rec := &store.RunRecord{
		ID:        fmt.Sprintf("%s-%s", b.runID, task.Id),
		RunID:     b.runID,
		TaskName:  task.Name,
		Status:    status,
		Timestamp: time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.store.Save(ctx, rec); err != nil {
		log.Warn("multiprocess: recording %s status for task %s: %v", status, task.Name, err)
	}
}

// PortKind hands a value off through a file named after its destination
// task and port instead of writing straight into the destination task's
// argument map, and pulls it back the same way on notify.
type PortKind struct {
	dag.BasePortKind
	backend *Backend
}

// Send writes value to the destination's handoff file. With an appName,
// the destination unit already has its own process running (spawned up
// front by RunFlow) and polling for exactly this file, so Send never
// spawns anything itself — that is what keeps a fan-in destination from
// being driven twice. Without an appName, it spawns the one-sided goroutine
// receive backend/multiprocess has always used for its hand-built test
// graphs.
func (k PortKind) Send(from *dag.Port, value any, to *dag.Port) error {
	path := handoffPath(k.backend.runDir, to.TaskRef.Id, to.Name)
	if err := writeHandoff(context.Background(), k.backend.fs, path, value); err != nil {
		return err
	}
	if k.backend.appName != "" {
		return nil
	}
	go func() {
		if err := to.Receive(nil); err != nil {
			log.Error("multiprocess: task %s receiving on port %s: %v", to.TaskRef.Name, to.Name, err)
		}
	}()
	return nil
}

// Receive deposits value directly when called with one (the FusedTask
// internal-edge shortcut never applies here since those always use
// DirectPortKind, but a backend-synthesized literal delivery might), or
// otherwise polls this port's handoff file at a 200ms interval until it
// appears, for the "pull" half of a push/pull transfer.
func (k PortKind) Receive(p *dag.Port, value any) error {
	if value != nil {
		p.TaskRef.Deposit(p.Name, value)
		k.NotifyTask(p)
		return nil
	}

	ctx := context.Background()
	path := handoffPath(k.backend.runDir, p.TaskRef.Id, p.Name)
	for {
		val, ok, err := readHandoff(ctx, k.backend.fs, path)
		if err != nil {
			return err
		}
		if ok {
			p.TaskRef.Deposit(p.Name, val)
			k.NotifyTask(p)
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
