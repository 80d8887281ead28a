package compiler

import (
	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
)

// TypeCheck validates that every edge's source type may flow into its
// destination's declared type, unifying dynamic endpoints against a
// concrete counterpart and flagging edges between two different concrete
// file types as needing a Transform pass conversion, grounded on the
// original's typed.py TypeCheck.
type TypeCheck struct{}

// Name identifies the pass in diagnostics.
func (TypeCheck) Name() string { return "typecheck" }

// Run walks every task's out-edges, checking castability.
func (TypeCheck) Run(graph *dag.TaskGraph, ctx *Context) Result {
	hadError := false
	for _, task := range graph.Tasks {
		for _, edge := range task.Edges {
			src, dst := edge.Source.Type, edge.Dest.Type
			if !dtype.IsCastable(src, dst) {
				ctx.AddError("%s expected a %s got a %s from %s",
					edge.Dest.TaskRef.Name, src.Id, dst.Id, edge.Source.TaskRef.Name)
				hadError = true
				continue
			}
			if isFileLike(src) && isFileLike(dst) {
				switch {
				case src.IsDynamic() && !dst.IsDynamic():
					dtype.Unify(src, dst)
				case !src.IsDynamic() && dst.IsDynamic():
					dtype.Unify(dst, src)
				case src.Id != dst.Id:
					edge.NeedsTransform = true
				}
			}
		}
	}
	if hadError {
		return Error
	}
	return Continue
}

// PostRun does nothing for TypeCheck.
func (TypeCheck) PostRun(graph *dag.TaskGraph, ctx *Context) {}

// isFileLike reports whether t participates in the file side of the
// castability table: a concrete file format, or the anyfile dynamic
// placeholder (which, unlike the builtin "any", only ever unifies with
// file types).
func isFileLike(t *dtype.Type) bool {
	return t.IsFile() || t.Id == "anyfile"
}
