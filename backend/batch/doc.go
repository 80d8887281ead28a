// Package batch implements the Slurm-style backend: it never executes a
// graph directly, only packages it as a deployable archive — a serialized
// manifest, one job script per executable unit, and a top-level submit
// script whose --dependency=afterany edges follow a topological sort of
// the task graph.
package batch
