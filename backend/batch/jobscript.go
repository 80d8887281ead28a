package batch

import "fmt"

// jobScriptName is the filename for an executable unit's job script: one
// "job_<taskname>_<taskid>.sh" per unit.
func jobScriptName(taskName, taskID string) string {
	return fmt.Sprintf("job_%s_%s.sh", taskName, taskID)
}

// jobScript renders the sbatch-ready script for one executable unit: it
// invokes the drive subcommand with the graph manifest and this unit's id,
// which loads the manifest, resolves the task, and calls task.receive() to
// pull its inputs (polling the handoff files this package's PortKind
// writes), run it, and push its outputs. graph.yaml sits alongside the job
// scripts in the archive root, so the reference is relative: sbatch runs a
// job script with the submission directory as its working directory, and
// run.sh always submits from the unpacked archive root.
func jobScript(taskName, taskID string) string {
	return fmt.Sprintf(`#!/bin/sh
#SBATCH --job-name=%s
set -eu
kisseru drive --graph graph.yaml --task %s
`, taskName, taskID)
}

// runScript renders the top-level submit script: one sbatch call per
// executable unit in topological order, each depending on its own
// dependencies via --dependency=afterany:$jidN.
func runScript(units []unitJob) string {
	out := "#!/bin/sh\nset -eu\n"
	jobVar := make(map[string]string, len(units))
	for i, u := range units {
		jobVar[u.id] = fmt.Sprintf("jid%d", i)
	}
	for _, u := range units {
		line := fmt.Sprintf("%s=$(sbatch", jobVar[u.id])
		if len(u.dependsOn) > 0 {
			line += " --dependency=afterany"
			for _, dep := range u.dependsOn {
				line += ":$" + jobVar[dep]
			}
		}
		line += fmt.Sprintf(" --parsable %s)\n", u.scriptName)
		out += line
	}
	return out
}

// unitJob is the minimal per-unit data runScript needs, decoupled from
// *dag.Task so it can be built once from the topologically sorted order.
type unitJob struct {
	id         string
	name       string
	dependsOn  []string
	scriptName string
}
