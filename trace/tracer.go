package trace

import (
	"github.com/kisseru-go/kisseru/handler"
	"github.com/kisseru-go/kisseru/log"
)

// EntryTracer is a pre-handler logging a task's name and bound arguments
// just before its function runs.
type EntryTracer struct{}

// Name identifies the handler in registration-order diagnostics.
func (EntryTracer) Name() string { return "trace-entry" }

// Run logs ctx's task name and argument map at debug level.
func (EntryTracer) Run(ctx *handler.Context) {
	log.Debug("running %v with inputs %v", ctx.Get("__name__"), ctx.Args)
}

// ExitTracer is a post-handler logging a task's return value right after
// its function runs.
type ExitTracer struct{}

// Name identifies the handler in registration-order diagnostics.
func (ExitTracer) Name() string { return "trace-exit" }

// Run logs ctx's task name and return value at debug level.
func (ExitTracer) Run(ctx *handler.Context) {
	log.Debug("%v output: %v", ctx.Get("__name__"), ctx.Ret)
}
