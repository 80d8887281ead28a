package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// handoffEnvelope wraps a transferred value the same way backend/multiprocess
// does, so a value round-trips through yaml regardless of its concrete type.
type handoffEnvelope struct {
	Value any `yaml:"value"`
}

// handoffPath names the file a submitted job writes its output to, or polls
// to read its input from: "<dest_task_id>_<dest_port_name>" under the run
// directory.
func handoffPath(runDir, taskID, portName string) string {
	return filepath.Join(runDir, fmt.Sprintf("%s_%s", taskID, portName))
}

func writeHandoff(path string, value any) error {
	data, err := yaml.Marshal(handoffEnvelope{Value: value})
	if err != nil {
		return fmt.Errorf("batch: encoding handoff value for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("batch: writing handoff file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("batch: publishing handoff file %s: %w", path, err)
	}
	return nil
}

func readHandoff(path string) (any, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("batch: reading handoff file %s: %w", path, err)
	}
	var envelope handoffEnvelope
	if err := yaml.Unmarshal(data, &envelope); err != nil {
		return nil, false, fmt.Errorf("batch: decoding handoff file %s: %w", path, err)
	}
	return envelope.Value, true, nil
}
