package multiprocess

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// handoffEnvelope wraps a value for the file-based transfer between tasks.
type handoffEnvelope struct {
	Value any `yaml:"value"`
}

// handoffPath returns the file a value from an edge into (taskID, portName)
// is written to: "<dest_task_id>_<dest_port_name>".
func handoffPath(runDir, taskID, portName string) string {
	return filepath.Join(runDir, fmt.Sprintf("%s_%s", taskID, portName))
}

// writeHandoff serializes value and uploads it through fs to path, via an
// upload to a temp name followed by a move, so a concurrent reader polling
// path never observes a partially written file. fs is scheme-pluggable
// (afs.Service) rather than the bare os package so a run directory could
// just as well live on a networked mount a sibling process reaches over
// ftp/http, not only the local disk the default afs.New() talks to.
func writeHandoff(ctx context.Context, fs afs.Service, path string, value any) error {
	data, err := yaml.Marshal(handoffEnvelope{Value: value})
	if err != nil {
		return fmt.Errorf("multiprocess: encoding value: %w", err)
	}
	tmp := path + ".tmp"
	if err := fs.Upload(ctx, tmp, 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("multiprocess: writing %s: %w", tmp, err)
	}
	if err := fs.Move(ctx, tmp, path); err != nil {
		return fmt.Errorf("multiprocess: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

// readHandoff reads and decodes a value previously written by writeHandoff
// through fs. A missing file means "not yet available" rather than an
// error: consumers treat non-existence as a poll-again signal.
func readHandoff(ctx context.Context, fs afs.Service, path string) (any, bool, error) {
	exists, err := fs.Exists(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("multiprocess: checking %s: %w", path, err)
	}
	if !exists {
		return nil, false, nil
	}

	data, err := fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("multiprocess: reading %s: %w", path, err)
	}
	var envelope handoffEnvelope
	if err := yaml.Unmarshal(data, &envelope); err != nil {
		return nil, false, fmt.Errorf("multiprocess: decoding %s: %w", path, err)
	}
	return envelope.Value, true, nil
}
