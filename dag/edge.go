package dag

// Edge is a directed wire from one task's out-port to another's in-port.
// NeedsTransform is set by the TypeCheck pass when the source and
// destination types are castable but not identical, and consumed by the
// Transform pass to splice in a conversion step.
type Edge struct {
	Source *Port
	Dest   *Port

	NeedsTransform bool
}

// NewEdge links source to dest, wiring dest's back-reference so the
// at-most-one-incoming-edge invariant is checkable by inspection.
func NewEdge(source, dest *Port) *Edge {
	e := &Edge{Source: source, Dest: dest}
	dest.InportEdge = e
	return e
}

// Send delegates to the source port, which carries the backend-specific
// transfer logic.
func (e *Edge) Send(value any) error {
	return e.Source.Send(value, e.Dest)
}
