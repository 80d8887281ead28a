// Package trace supplies the pre/post handlers that log task entry, exit
// and elapsed time. EntryTracer and ExitTracer log at Debug level for
// general visibility; ProfilerEntry and ProfilerExit additionally time
// each task and report its duration.
package trace
