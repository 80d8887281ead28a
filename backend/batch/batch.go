package batch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kisseru-go/kisseru/backend"
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/log"
	"github.com/kisseru-go/kisseru/store"
)

func init() {
	backend.Register(backend.Batch, New)
}

// Backend packages a graph for Slurm submission; it never runs a graph
// in-process. runDir is where a submitted job script's PortKind reads and
// writes handoff files once `kisseru drive` actually executes a unit.
type Backend struct {
	runDir string
	store  store.RunStore
}

// New constructs the batch backend. cfg.RunDir defaults to the current
// working directory, matching a submitted job script running from the
// unpacked archive root.
func New(cfg backend.Config) (backend.Backend, error) {
	runDir := cfg.RunDir
	if runDir == "" {
		runDir = "."
	}
	return &Backend{runDir: runDir, store: cfg.Store}, nil
}

// Name identifies the backend for diagnostics and archive naming.
func (b *Backend) Name() string { return "batch" }

// GetPort returns a PortKind whose Send/Receive mirror the job scripts'
// own file handoff protocol, so synthetic tasks the compiler wires against
// this backend behave like real submitted jobs would.
func (b *Backend) GetPort() dag.PortKind {
	return PortKind{backend: b}
}

// RunTask is unsupported: batch jobs run only once submitted by Package's
// run.sh, never inside the compiling process.
func (b *Backend) RunTask(task *dag.Task) {}

// RunFlow is unsupported on the batch backend: use Package then submit
// run.sh.
func (b *Backend) RunFlow(graph *dag.TaskGraph) error {
	return fmt.Errorf("batch: run_flow is not supported, call Package and submit run.sh")
}

// Package writes a submittable archive layout into appDir and tars it to
// outFile: the graph manifest, one job script per executable unit, and a
// topologically ordered run.sh.
func (b *Backend) Package(graph *dag.TaskGraph, appDir, outFile string) error {
	units := executableUnits(graph)
	deps := dependents(graph, units)

	sorted, err := topoSort(units, deps)
	if err != nil {
		return err
	}

	root := filepath.Join(appDir, graph.Name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("batch: creating %s: %w", root, err)
	}

	manifest, err := buildManifest(graph)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, "graph.yaml"), manifest, 0o644); err != nil {
		return fmt.Errorf("batch: writing manifest: %w", err)
	}

	var jobs []unitJob
	for _, unit := range sorted {
		name := jobScriptName(unit.Name, unit.Id)
		script := jobScript(unit.Name, unit.Id)
		if err := os.WriteFile(filepath.Join(root, name), []byte(script), 0o755); err != nil {
			return fmt.Errorf("batch: writing job script for %s: %w", unit.Name, err)
		}
		jobs = append(jobs, unitJob{id: unit.Id, name: unit.Name, dependsOn: deps[unit.Id], scriptName: name})
	}

	if err := os.WriteFile(filepath.Join(root, "run.sh"), []byte(runScript(jobs)), 0o755); err != nil {
		return fmt.Errorf("batch: writing run.sh: %w", err)
	}

	b.recordQueued(sorted)

	return archiveDir(appDir, outFile)
}

// recordQueued best-effort persists every unit's pending status under a
// fresh run id, so a store-backed deployment can already list a packaged
// run before any job script is submitted.
func (b *Backend) recordQueued(units []*dag.Task) {
	if b.store == nil {
		return
	}
	runID := uuid.NewString()
	log.Info("batch: recorded run %s as pending (%d units)", runID, len(units))
	for _, unit := range units {
		rec := &store.RunRecord{
			ID:        fmt.Sprintf("%s-%s", runID, unit.Id),
			RunID:     runID,
			TaskName:  unit.Name,
			Status:    store.StatusPending,
			Timestamp: time.Now(),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := b.store.Save(ctx, rec)
		cancel()
		if err != nil {
			log.Warn("batch: recording queued status for task %s: %v", unit.Name, err)
		}
	}
}

// Cleanup does nothing: Package's scratch directory is left for the caller
// to inspect or remove. Batch never creates local handoff files to clean up.
func (b *Backend) Cleanup() {}

// archiveDir tars and gzips src into outFile with the standard library,
// in the style of opentofu's internal/oci/compression.go.
func archiveDir(src, outFile string) error {
	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("batch: creating archive %s: %w", outFile, err)
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	return filepath.Walk(src, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(fi, fi.Name())
		if err != nil {
			return fmt.Errorf("batch: building tar header for %s: %w", file, err)
		}
		rel, err := filepath.Rel(src, file)
		if err != nil {
			return fmt.Errorf("batch: relative path for %s: %w", file, err)
		}
		header.Name = rel
		header.ModTime = time.Now()
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("batch: writing tar header for %s: %w", file, err)
		}
		if fi.IsDir() {
			return nil
		}
		data, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("batch: opening %s: %w", file, err)
		}
		defer data.Close()
		if _, err := io.Copy(tw, data); err != nil {
			return fmt.Errorf("batch: copying %s into archive: %w", file, err)
		}
		return nil
	})
}
