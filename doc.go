// Kisseru is a dataflow workflow compiler and runtime.
//
// A workflow is built by calling annotated task functions; rather than
// running immediately, each call records a vertex and wires its arguments
// to upstream outputs, producing a task graph. The graph is then compiled
// through a fixed sequence of passes (preprocessing, type checking,
// transform synthesis, staging synthesis, dot-graph generation,
// linear-chain fusion, dot-graph generation again, post-processing) and
// handed to a backend for execution:
//
//   - sequential: everything runs inline in a single goroutine.
//   - multiprocess: each task runs in its own spawned OS process, with
//     inputs and outputs handed off through the filesystem.
//   - batch: the graph is packaged into a job archive submitted to a
//     Slurm-style scheduler, one job per (fused) task, wired together with
//     afterany dependencies.
//
// See package build for the recording front end, package compiler for the
// pass pipeline, and package backend for the three execution strategies.
package kisseru
