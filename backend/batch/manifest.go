package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kisseru-go/kisseru/dag"
	"gopkg.in/yaml.v3"
)

// taskManifest is the serialized form of one executable unit: either a
// plain Task or the head of a FusedTask, named by the head's id.
type taskManifest struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	IsSource  bool     `yaml:"is_source"`
	IsSink    bool     `yaml:"is_sink"`
	DependsOn []string `yaml:"depends_on"`
}

// graphManifest is the archive's serialized graph: <graph_name>/graph.
type graphManifest struct {
	Name  string         `yaml:"name"`
	Tasks []taskManifest `yaml:"tasks"`
}

// executableUnits returns every task in graph that is not itself absorbed
// into a FusedTask, i.e. the set graph.num_tasks counts.
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

// dependents returns, for every executable unit, the ids of the units that
// must finish before it starts, derived from its in-edges.
func dependents(graph *dag.TaskGraph, units []*dag.Task) map[string][]string {
	// canonical maps a task id to the id of the executable unit it belongs
	// to: itself if not absorbed, else the FusedTask's head.
	canonical := func(id string) string {
		if fused, ok := graph.FuseeMap[id]; ok {
			return fused.Head.Id
		}
		return id
	}

	deps := make(map[string]map[string]bool, len(units))
	for _, unit := range units {
		deps[unit.Id] = make(map[string]bool)
	}
	for _, task := range graph.Tasks {
		from := canonical(task.Id)
		for _, edge := range task.Edges {
			if edge.Dest.TaskRef == nil {
				continue
			}
			to := canonical(edge.Dest.TaskRef.Id)
			if to == from {
				continue // intra-fusion edge, not a job dependency
			}
			if deps[to] != nil {
				deps[to][from] = true
			}
		}
	}

	out := make(map[string][]string, len(deps))
	for id, set := range deps {
		list := make([]string, 0, len(set))
		for dep := range set {
			list = append(list, dep)
		}
		sort.Strings(list)
		out[id] = list
	}
	return out
}

// buildManifest assembles the serialized graph description for the
// archive, including each unit's job dependencies.
func buildManifest(graph *dag.TaskGraph) ([]byte, error) {
	units := executableUnits(graph)
	deps := dependents(graph, units)

	manifest := graphManifest{Name: graph.Name}
	for _, unit := range units {
		manifest.Tasks = append(manifest.Tasks, taskManifest{
			ID:        unit.Id,
			Name:      unit.Name,
			IsSource:  unit.IsSource,
			IsSink:    unit.IsSink,
			DependsOn: deps[unit.Id],
		})
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("batch: encoding manifest: %w", err)
	}
	return data, nil
}

// LoadManifestApp reads a packaged graph.yaml far enough to recover the
// app name it was built from (examples.Apps' registry key, since
// Package writes graph.Name straight out as graphManifest.Name) and the
// run directory a recompiled graph's batch PortKind should poll its
// handoff files in: the directory graph.yaml itself lives in, which is
// also where Package wrote every job script. `kisseru drive` uses this
// to rebuild the same graph `kisseru package` built before looking a
// single unit up in it by id.
func LoadManifestApp(path string) (name, runDir string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("batch: reading manifest %s: %w", path, err)
	}
	var manifest graphManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return "", "", fmt.Errorf("batch: decoding manifest %s: %w", path, err)
	}
	return manifest.Name, filepath.Dir(path), nil
}

// topoSort orders units so every unit appears after everything it depends
// on, erroring if the dependency graph has a cycle.
func topoSort(units []*dag.Task, deps map[string][]string) ([]*dag.Task, error) {
	byID := make(map[string]*dag.Task, len(units))
	for _, u := range units {
		byID[u.Id] = u
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(units))
	var order []*dag.Task

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("batch: dependency cycle detected at task %s", id)
		}
		state[id] = visiting
		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = visited
		order = append(order, byID[id])
		return nil
	}

	for _, u := range units {
		if err := visit(u.Id); err != nil {
			return nil, err
		}
	}
	return order, nil
}
