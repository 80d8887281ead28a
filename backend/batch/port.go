package batch

import (
	"time"

	"github.com/kisseru-go/kisseru/dag"
)

// PortKind hands a value off through a file the same way
// backend/multiprocess does, except the pull side polls once a second
// instead of every 200ms: a submitted job is expected to wait
// on another job's sbatch queue time, not a sibling goroutine.
type PortKind struct {
	dag.BasePortKind
	backend *Backend
}

// Send writes value to the destination's handoff file. Unlike
// backend/multiprocess, it does not also spawn the pull side: the
// destination is a separate submitted job, launched by Slurm once its
// --dependency=afterany condition is satisfied, not a goroutine in this
// process.
func (k PortKind) Send(from *dag.Port, value any, to *dag.Port) error {
	path := handoffPath(k.backend.runDir, to.TaskRef.Id, to.Name)
	return writeHandoff(path, value)
}

// Receive deposits value directly when handed one, or polls this port's
// handoff file once a second until it appears.
func (k PortKind) Receive(p *dag.Port, value any) error {
	if value != nil {
		p.TaskRef.Deposit(p.Name, value)
		k.NotifyTask(p)
		return nil
	}

	path := handoffPath(k.backend.runDir, p.TaskRef.Id, p.Name)
	for {
		val, ok, err := readHandoff(path)
		if err != nil {
			return err
		}
		if ok {
			p.TaskRef.Deposit(p.Name, val)
			k.NotifyTask(p)
			return nil
		}
		time.Sleep(time.Second)
	}
}
