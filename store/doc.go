// Package store provides run-ledger persistence for backends that execute
// tasks outside the compiling process.
//
// The sequential backend runs every task inline and needs no ledger. The
// multiprocess backend spawns real OS processes and the batch backend emits
// a Slurm job archive; both report task status asynchronously, so they
// write RunRecord entries through a RunStore as tasks start, finish, or
// fail. A run can then be inspected (`kisseru report`) independently of the
// process that launched it.
//
// Three implementations are provided:
//   - sqlite: single-machine, zero-configuration. No backend uses a ledger
//     unless one is chosen (the CLI's --store flag defaults to none).
//   - postgres: shared, queryable ledger for a batch backend submitting to
//     a cluster many users can inspect.
//   - redis: low-latency ledger, useful when many short-lived tasks update
//     status in quick succession.
package store
