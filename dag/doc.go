// Package dag holds the in-memory task-graph data model: Port, Edge, Task,
// Tasklet, FusedTask and TaskGraph. Construction (build) and compilation
// (compiler) live in their own packages; dag only describes the shape and
// the runtime wiring (latch, edges, send/receive) a compiled graph relies
// on to execute.
package dag
