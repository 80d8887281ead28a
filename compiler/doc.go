// Package compiler implements the graph-compiler pass manager and the
// seven passes that turn a recorded dag.TaskGraph into an executable one:
// PreProcess, TypeCheck, Transform, Stage, Fusion, DotGraphGenerator and
// PostProcess. The runner registers them with a PassManager in the order
// PreProcess, TypeCheck, Transform, Stage, DotGraphGenerator ("before"),
// Fusion, DotGraphGenerator ("after"), PostProcess, and they run in that
// order.
package compiler
