// Package build is the task-building front end. Calling a TaskDef does not
// run the wrapped function — it records a vertex on the active Recorder's
// graph, wires edges from any argument that is itself a task handle, and
// returns a symbolic handle (a *dag.Task for a scalar return, or a
// []*dag.Tasklet for a tuple return) that later calls can pass back in as
// arguments.
//
// Go has no runtime annotation strings to read off a function's
// parameters, so a TaskDef's parameter and return types are supplied
// explicitly via dtype.Param descriptors at registration
// (build.Params/build.Returns).
package build
