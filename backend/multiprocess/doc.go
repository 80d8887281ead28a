// Package multiprocess implements the local multi-process backend: a real
// OS process per executable unit, with values handed off through files.
//
// A generic Go closure cannot be serialized and handed to
// a freshly exec'd process, but a task recorded through
// runner.New is always reachable by name, through examples.Apps, from a
// fresh process that recompiles the same app from scratch and gets the same
// task back (dag.TaskGraph.AddTask assigns ids in deterministic recording
// order). So when a graph carries that name (backend.Config.AppName), this
// package re-execs its own binary's `drive` subcommand once per executable
// unit instead of pickling anything: spawnUnit launches the child and
// blocks until it exits, and the child's own call into DriveTask is what
// polls that unit's input handoff files and runs it. That is a real OS
// process per non-fused, non-source task; sources run inline in the parent
// since they have no inputs to wait on.
//
// A graph with no registered app name — this package's own tests build
// theirs from inline closures, with nothing in examples.Apps to recompile —
// has nothing a child process could look up, so it falls back to a
// goroutine per task instead, the same file-based handoff protocol running
// entirely within one process.
package multiprocess
