package dag

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/kisseru-go/kisseru/log"
)

// outputKey is the positional string index outputs are keyed by ("0", "1",
// ...), matching a task's return-tuple position.
func outputKey(index int) string {
	return strconv.Itoa(index)
}

// Runner invokes the underlying user function with the task's bound
// arguments and returns its result: a single value, or a []any when the
// task has multiple out-ports. build.Task supplies this, wrapping the raw
// function with the init/pre/post handler chain.
type Runner func(args map[string]any) any

// Task is one executable unit of the graph: a function, its bound
// arguments, its in/out ports, and the out-edges wired from its out-ports.
type Task struct {
	Id      string
	Name    string
	Graph   *TaskGraph
	Runner  Runner
	Args    map[string]any
	Inputs  map[string]*Port
	Outputs map[string]*Port
	Edges   []*Edge

	// Latch counts non-immediate in-ports not yet satisfied; the task runs
	// the instant it reaches zero.
	Latch int32

	IsSource    bool
	IsSink      bool
	IsStaging   bool
	IsTransform bool
	IsFusee     bool
	IsFused     bool

	mu   sync.Mutex
	done chan struct{}
}

// NewTask constructs a task bound to name and runner, with empty port maps
// ready for the recorder to populate.
func NewTask(name string, runner Runner) *Task {
	return &Task{
		Name:    name,
		Runner:  runner,
		Args:    make(map[string]any),
		Inputs:  make(map[string]*Port),
		Outputs: make(map[string]*Port),
		done:    make(chan struct{}),
	}
}

// deposit records value under name in the task's argument map, guarded
// against concurrent in-ports delivering at once.
func (t *Task) deposit(name string, value any) {
	t.mu.Lock()
	t.Args[name] = value
	t.mu.Unlock()
}

// Deposit is deposit exported for PortKind implementations outside this
// package: every backend's Receive needs to record an in-port's arriving
// value into the owning task's argument map the same way DirectPortKind
// does.
func (t *Task) Deposit(name string, value any) {
	t.deposit(name, value)
}

// Run invokes the task's function with its bound arguments, then fans the
// result out over its out-edges. Run is called by the last in-port to
// satisfy the latch; a source task (latch starts at zero) runs as soon as
// the graph executor kicks it off.
//
// A fused chain counts as one executable unit, so only its head reports a
// completion (after send has already cascaded through the whole chain);
// the absorbed members stay silent or the counter would reach NumTasks
// with units still outstanding. The head is the one member carrying both
// IsFusee and IsFused.
func (t *Task) Run() {
	defer close(t.done)
	ret := t.Runner(t.Args)
	t.send(ret)
	if t.Graph != nil && (!t.IsFusee || t.IsFused) {
		t.Graph.TaskCompleted()
	}
}

// Wait blocks until the task has run to completion.
func (t *Task) Wait() {
	<-t.done
}

// send distributes a task's return value over its out-edges. A []any
// result is a multi-return tuple, routed by each edge's source port index;
// anything else is a single value fanned out to every out-edge.
func (t *Task) send(ret any) {
	if tup, ok := ret.([]any); ok {
		for _, edge := range t.Edges {
			if err := edge.Send(tup[edge.Source.Index]); err != nil {
				log.Error("task %s: sending output %d: %v", t.Name, edge.Source.Index, err)
			}
		}
		return
	}
	for _, edge := range t.Edges {
		if err := edge.Send(ret); err != nil {
			log.Error("task %s: sending output: %v", t.Name, err)
		}
	}
}

// AddInput registers an in-port under its parameter name.
func (t *Task) AddInput(p *Port) {
	p.IsInport = true
	t.Inputs[p.Name] = p
}

// AddOutput registers an out-port under its positional index.
func (t *Task) AddOutput(p *Port) {
	t.Outputs[outputKey(p.Index)] = p
}

// String renders a one-line summary, used by diagnostics and the
// DotGraphGenerator pass.
func (t *Task) String() string {
	return fmt.Sprintf("Task(%s, in=%d, out=%d, edges=%d)", t.Name, len(t.Inputs), len(t.Outputs), len(t.Edges))
}
