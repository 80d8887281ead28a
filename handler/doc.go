// Package handler is the task-recorder's hook seam: ordered init handlers
// run once per task at registration time (the AST-ops rewrite point), pre
// handlers run immediately before a task's function body executes, post
// handlers immediately after. All three lists are process-wide and
// registered once at startup.
package handler
