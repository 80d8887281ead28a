package handler

// NoOpASTOps is a placeholder for a source-to-source rewriter: a handler
// invoked once per task at registration time that could scan a function's
// source for embedded shell-script blocks and recompile the function body
// with those blocks inlined.
//
// A compiled Go function has no source text to rewrite at runtime, so
// this stays an external collaborator's interface rather than something
// this package can implement: NoOpASTOps satisfies the init-handler
// contract and does nothing, so build.Task can install a real
// implementation later without changing its own code.
type NoOpASTOps struct{}

// Name identifies the handler in registration-order diagnostics.
func (NoOpASTOps) Name() string { return "ast-ops" }

// Run performs no rewriting.
func (NoOpASTOps) Run(ctx *Context) {}
