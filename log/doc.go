// Package log provides a small leveled logging interface used by the
// compiler passes, backends, and CLI.
//
// Two implementations are provided: DefaultLogger, built on the standard
// library's log package, and GologLogger, which wraps
// github.com/kataras/golog for colorized terminal output. AnsiStrippingWriter
// wraps any io.Writer and strips ANSI escape codes before writing, so the
// same colorized logger can be pointed at a log file (e.g. a batch job's
// stdout capture) without leaving escape garbage in it.
package log
