package dag

import (
	"sync/atomic"

	"github.com/kisseru-go/kisseru/dtype"
)

// PortKind supplies the backend-specific half of a Port's behavior: how a
// value physically crosses from one task to another. Sequential, local
// multi-process and batch backends each provide their own PortKind;
// NotifyTask and FlipImmediate are latch bookkeeping common to every
// backend, so concrete kinds embed BasePortKind instead of reimplementing
// them.
type PortKind interface {
	// Send transfers value from this port to the destination port. It may
	// be synchronous (direct call), asynchronous (spawn a carrier), or
	// out-of-band (persist value at a rendezvous location for the
	// destination to poll).
	Send(from *Port, value any, to *Port) error

	// Receive delivers value to this port's task. When value is non-nil it
	// was pushed by an upstream Send; when nil the port's own task is
	// asking to fetch a previously deposited value (file or network poll).
	Receive(p *Port, value any) error

	// NotifyTask signals the owning task that this port has a value
	// available, decrementing the task's latch.
	NotifyTask(p *Port)

	// FlipImmediate toggles whether this port's value is a build-time
	// literal (true) or a piped value awaiting an upstream task (false),
	// adjusting the owning task's latch to match.
	FlipImmediate(p *Port)
}

// BasePortKind implements the latch bookkeeping shared by every backend.
// Backend PortKind implementations embed it and only supply Send/Receive.
type BasePortKind struct{}

// NotifyTask decrements the owning task's latch and runs it once every
// non-immediate in-port has delivered its value.
func (BasePortKind) NotifyTask(p *Port) {
	if atomic.AddInt32(&p.TaskRef.Latch, -1) == 0 {
		p.TaskRef.Run()
	}
}

// FlipImmediate atomically increments the owning task's latch when a port
// becomes non-immediate, and decrements it when a port reverts to
// immediate, per the task-latch invariant: latch counts non-immediate
// in-ports not yet satisfied.
func (BasePortKind) FlipImmediate(p *Port) {
	if p.IsImmediate {
		p.IsImmediate = false
		atomic.AddInt32(&p.TaskRef.Latch, 1)
	} else {
		p.IsImmediate = true
		atomic.AddInt32(&p.TaskRef.Latch, -1)
	}
}

// Port is one named, typed slot on a Task: an in-port bound to a parameter,
// or an out-port bound to a return value.
type Port struct {
	Type    *dtype.Type
	Name    string
	Index   int
	TaskRef *Task

	// InportEdge is the single incoming edge for an in-port, or nil until
	// the recorder wires one. An in-port has at most one incoming edge.
	InportEdge *Edge

	IsInport          bool
	IsImmediate       bool
	IsOneSidedReceive bool

	Kind PortKind
}

// NewPort constructs a port bound to task, defaulting to immediate (a
// build-time literal) until FlipImmediate says otherwise.
//
// typ is cloned rather than stored by reference: dtype.Registry interns
// builtin/file/dynamic types as shared singletons (so two lookups of the
// same id are the same pointer), but TypeCheck's dynamic-endpoint
// unification (dtype.Unify) mutates a Type's Id in place. Sharing the
// singleton pointer across every port of that id would let one edge's
// unification silently rewrite every other port's declared type process-
// wide. Cloning at construction time gives each port its own Type value to
// mutate, while Registry.Lookup/GetType keep returning a stable pointer for
// callers that only need identity comparison.
func NewPort(typ *dtype.Type, name string, index int, task *Task, kind PortKind) *Port {
	owned := *typ
	return &Port{
		Type:        &owned,
		Name:        name,
		Index:       index,
		TaskRef:     task,
		IsImmediate: true,
		Kind:        kind,
	}
}

// Send transfers value to the destination port via this port's backend.
func (p *Port) Send(value any, to *Port) error {
	return p.Kind.Send(p, value, to)
}

// Receive delivers value to this port's owning task.
func (p *Port) Receive(value any) error {
	return p.Kind.Receive(p, value)
}

// FlipImmediate toggles the port's immediacy and the owning task's latch.
func (p *Port) FlipImmediate() {
	p.Kind.FlipImmediate(p)
}

// DirectPortKind sends by pushing the value straight into the destination
// task's argument map on the caller's own goroutine. It is the kind used
// for in-process wiring: the sequential backend uses it for every edge, and
// every backend uses it for the internal edges of a FusedTask, which must
// run in one call chain regardless of the outer backend.
type DirectPortKind struct {
	BasePortKind
}

// Send stores value into the destination port and notifies its task.
func (k DirectPortKind) Send(from *Port, value any, to *Port) error {
	return to.Receive(value)
}

// Receive stores value into the owning task's argument map keyed by the
// port name, then notifies the task.
func (k DirectPortKind) Receive(p *Port, value any) error {
	p.TaskRef.deposit(p.Name, value)
	k.NotifyTask(p)
	return nil
}
