// Package sequential implements the in-process, single-goroutine backend:
// every send is a direct call into the destination port's receive, so the
// whole graph runs to completion on the caller's own goroutine in reverse-
// post-order.
package sequential
