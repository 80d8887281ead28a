package compiler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/kisseru-go/kisseru/dag"
)

// Result is a pass's verdict.
type Result int

const (
	// Continue means the pass found nothing blocking; the manager runs
	// the next pass.
	Continue Result = iota
	// Warn means the pass recorded a non-fatal diagnostic in ctx.Warnings
	// but compilation may proceed.
	Warn
	// Error means the pass found a condition that must abort compilation;
	// the manager stops and surfaces ctx.Errors.
	Error
)

// Context is the value threaded through every pass: accumulated
// diagnostics plus a shared property bag later passes (and the runner)
// can read. Errors uses *multierror.Error so a caller can test the result
// with errors.As while every pass still just appends.
type Context struct {
	Errors     *multierror.Error
	Warnings   []string
	Properties map[string]any

	// PortKind is the active backend's port implementation. Passes that
	// synthesize new tasks (Transform, Stage) create their ports with it,
	// so a synthetic task behaves like every other task on the selected
	// backend.
	PortKind dag.PortKind
}

// NewContext returns an empty Context ready for a PassManager run.
func NewContext(kind dag.PortKind) *Context {
	return &Context{Properties: make(map[string]any), PortKind: kind}
}

// AddError appends a formatted error to the accumulated diagnostics.
func (c *Context) AddError(format string, args ...any) {
	c.Errors = multierror.Append(c.Errors, fmt.Errorf(format, args...))
}

// AddWarning appends a warning message.
func (c *Context) AddWarning(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

// Property returns a previously stored property, or nil if absent.
func (c *Context) Property(key string) any {
	return c.Properties[key]
}

// SetProperty stores a property for a later pass (or PostRun) to read.
func (c *Context) SetProperty(key string, value any) {
	c.Properties[key] = value
}

// Pass is one step of the graph compiler.
type Pass interface {
	// Name identifies the pass in diagnostics.
	Name() string

	// Run executes the pass over graph, returning Continue, Warn or Error.
	Run(graph *dag.TaskGraph, ctx *Context) Result

	// PostRun runs once the Manager stops running passes, for every pass
	// that ran (including one that returned Error), for passes with
	// teardown or emission work — DotGraphGenerator writes its accumulated
	// .dot files here.
	PostRun(graph *dag.TaskGraph, ctx *Context)
}

// Manager runs a fixed, ordered list of passes, aborting at the first
// Error.
type Manager struct {
	passes []Pass
}

// NewManager returns a Manager with no passes registered.
func NewManager() *Manager { return &Manager{} }

// Register appends p to the end of the pass list.
func (m *Manager) Register(p Pass) { m.passes = append(m.passes, p) }

// Passes returns the registered passes in run order.
func (m *Manager) Passes() []Pass { return m.passes }

// Run executes every registered pass over graph in order. The first pass
// to return Error stops the run; Run then returns the pass's Name and ctx
// so the caller can report ctx.Errors. PostRun is invoked, in registration
// order, for every pass that ran, including the one that errored, as a
// best-effort teardown.
func (m *Manager) Run(graph *dag.TaskGraph, ctx *Context) (failedPass string, ok bool) {
	var ran []Pass
	for _, p := range m.passes {
		res := p.Run(graph, ctx)
		ran = append(ran, p)
		if res == Error {
			runPostPasses(ran, graph, ctx)
			return p.Name(), false
		}
	}
	runPostPasses(ran, graph, ctx)
	return "", true
}

func runPostPasses(passes []Pass, graph *dag.TaskGraph, ctx *Context) {
	for _, p := range passes {
		p.PostRun(graph, ctx)
	}
}
