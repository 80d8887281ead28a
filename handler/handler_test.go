package handler

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_GetSetProperty(t *testing.T) {
	ctx := NewContext("add", func() {}, reflect.TypeOf(func() {}))
	assert.Equal(t, "add", ctx.Get("__name__"))
	assert.Nil(t, ctx.Get("missing"))

	ctx.Set("k", "v")
	assert.Equal(t, "v", ctx.Get("k"))
}

func TestRegistry_RunsHandlersInRegistrationOrder(t *testing.T) {
	r := &Registry{}
	var order []string
	r.RegisterPre(HandlerFunc{FuncName: "a", Fn: func(ctx *Context) { order = append(order, "a") }})
	r.RegisterPre(HandlerFunc{FuncName: "b", Fn: func(ctx *Context) { order = append(order, "b") }})

	ctx := NewContext("t", nil, nil)
	r.RunPre(ctx)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRegistry_InitPreAndPostAreIndependentLists(t *testing.T) {
	r := &Registry{}
	var ran []string
	r.RegisterInit(HandlerFunc{FuncName: "init", Fn: func(ctx *Context) { ran = append(ran, "init") }})
	r.RegisterPost(HandlerFunc{FuncName: "post", Fn: func(ctx *Context) { ran = append(ran, "post") }})

	ctx := NewContext("t", nil, nil)
	r.RunInit(ctx)
	r.RunPre(ctx)
	r.RunPost(ctx)
	assert.Equal(t, []string{"init", "post"}, ran)
}

func TestNoOpASTOps_DoesNothing(t *testing.T) {
	ctx := NewContext("t", nil, nil)
	var h Handler = NoOpASTOps{}
	assert.Equal(t, "ast-ops", h.Name())
	assert.NotPanics(t, func() { h.Run(ctx) })
}
