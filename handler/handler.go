package handler

import "reflect"

// Context is the value a Handler is given to inspect or annotate. It
// carries the task function under scrutiny, its preserved signature, the
// arguments it is about to run (or has just run) with, its result, and a
// free-form property bag handlers can use to pass information to later
// handlers in the chain.
type Context struct {
	Fn         any
	Sig        reflect.Type
	Args       map[string]any
	Ret        any
	properties map[string]any
}

// NewContext builds a Context for fn, seeding the property bag with the
// function's name.
func NewContext(name string, fn any, sig reflect.Type) *Context {
	return &Context{
		Fn:         fn,
		Sig:        sig,
		properties: map[string]any{"__name__": name},
	}
}

// Get returns a property previously set by a handler, or nil if absent.
func (c *Context) Get(prop string) any {
	return c.properties[prop]
}

// Set records a property for later handlers (or the recorder) to read.
func (c *Context) Set(prop string, value any) {
	if c.properties == nil {
		c.properties = make(map[string]any)
	}
	c.properties[prop] = value
}

// Handler is one step in the init/pre/post chain. Run inspects or mutates
// ctx; it never returns a value because a handler's effect is entirely
// through ctx's property bag or its side effects (logging, tracing).
type Handler interface {
	Name() string
	Run(ctx *Context)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc struct {
	FuncName string
	Fn       func(ctx *Context)
}

// Name returns the handler's registered name.
func (h HandlerFunc) Name() string { return h.FuncName }

// Run invokes the wrapped function.
func (h HandlerFunc) Run(ctx *Context) { h.Fn(ctx) }

// Registry holds the process-wide init/pre/post handler chains, run in
// registration order by the task recorder and the generated task runner.
type Registry struct {
	init []Handler
	pre  []Handler
	post []Handler
}

// global is the single process-wide registry.
var global = &Registry{}

// Global returns the process-wide Registry.
func Global() *Registry { return global }

// RegisterInit appends a handler run once per task at registration time
// (the AST-ops rewrite point).
func (r *Registry) RegisterInit(h Handler) { r.init = append(r.init, h) }

// RegisterPre appends a handler run immediately before a task's function
// body executes.
func (r *Registry) RegisterPre(h Handler) { r.pre = append(r.pre, h) }

// RegisterPost appends a handler run immediately after a task's function
// body executes.
func (r *Registry) RegisterPost(h Handler) { r.post = append(r.post, h) }

// RunInit runs every registered init handler over ctx, in registration order.
func (r *Registry) RunInit(ctx *Context) {
	for _, h := range r.init {
		h.Run(ctx)
	}
}

// RunPre runs every registered pre handler over ctx, in registration order.
func (r *Registry) RunPre(ctx *Context) {
	for _, h := range r.pre {
		h.Run(ctx)
	}
}

// RunPost runs every registered post handler over ctx, in registration order.
func (r *Registry) RunPost(ctx *Context) {
	for _, h := range r.post {
		h.Run(ctx)
	}
}
