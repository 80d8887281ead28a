// Package backend supplies the pluggable execution strategies a compiled
// graph runs under: in-process sequential, local multi-process, and batch
// (Slurm-style archive packaging). Every backend exposes the same
// capability set — GetPort, RunTask, RunFlow, Package, Cleanup — so the
// runner package can treat them interchangeably once a graph is compiled.
package backend
