package dag

import "github.com/kisseru-go/kisseru/log"

// Sink is the synthetic terminal port PreProcess attaches to every out-port
// of a task with no out-edges, so every out-port in the compiled graph has
// somewhere to send its value.
type Sink struct {
	*Port
}

// NewSink wraps port as a terminal destination sharing its type, name,
// index and owning task.
func NewSink(port *Port) *Sink {
	return &Sink{Port: NewPort(port.Type, port.Name, port.Index, port.TaskRef, sinkPortKind{})}
}

// NewSinkEdge wires a synthetic terminal edge onto out. The edge's source
// is an in-process twin of out, not out itself: a transfer runs through
// the source port's kind, and a sink must log on the producer's own
// goroutine no matter which PortKind the outer backend gave the real
// out-port — a multiprocess or batch source kind would write a handoff
// file nothing ever reads.
func NewSinkEdge(out *Port) *Edge {
	src := NewPort(out.Type, out.Name, out.Index, out.TaskRef, DirectPortKind{})
	return NewEdge(src, NewSink(out).Port)
}

type sinkPortKind struct {
	BasePortKind
}

func (sinkPortKind) Send(from *Port, value any, to *Port) error {
	return to.Receive(value)
}

// Receive logs the final value instead of storing it anywhere: a sink has
// no owning consumer task to deposit into.
func (sinkPortKind) Receive(p *Port, value any) error {
	log.Info("pipeline output [%s]: %v", p.Name, value)
	return nil
}
