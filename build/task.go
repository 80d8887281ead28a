package build

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/kisseru-go/kisseru/dag"
	"github.com/kisseru-go/kisseru/dtype"
	"github.com/kisseru-go/kisseru/handler"
	"github.com/kisseru-go/kisseru/log"
)

// maxOutputs is the hard cap on a task's output count.
const maxOutputs = 10

// TaskDef describes one task function's shape: its callable, the
// parameters it accepts in positional order, and the shape of its return
// value. It is built once by Task and then Call-ed once per invocation at
// recording time: one TaskDef can record many tasks into many graphs.
type TaskDef struct {
	Name    string
	Fn      reflect.Value
	Params  []dtype.Param
	Returns []dtype.Param
}

// TaskOption configures a TaskDef at registration time.
type TaskOption func(*TaskDef)

// Params declares a task's parameters in positional order. An
// unannotated Param (empty Annotation) defers its port's type to the
// linked upstream out-port, or to the reflected Go type of a literal
// argument.
func Params(params ...dtype.Param) TaskOption {
	return func(td *TaskDef) { td.Params = params }
}

// Returns declares a task's return shape. Zero Params means an implicit
// single anyfile output; one means a scalar return; more than one means a
// tuple return, one out-port per element. A Param's Annotation may be the
// dependent `@argsN.field` form.
func Returns(returns ...dtype.Param) TaskOption {
	return func(td *TaskDef) { td.Returns = returns }
}

// Task builds a TaskDef wrapping fn. fn must be a function value; a
// non-function fn is a programming mistake caught here rather than at
// recording time, since Go can inspect fn's kind immediately.
func Task(name string, fn any, opts ...TaskOption) *TaskDef {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("build: Task %q: fn must be a function, got %T", name, fn))
	}
	td := &TaskDef{Name: name, Fn: v}
	for _, opt := range opts {
		opt(td)
	}
	return td
}

// Call records one invocation of td against rec's graph: it binds args
// positionally against td.Params, wires an edge from every argument that is
// a *dag.Task or *dag.Tasklet handle, creates the task's out-ports per
// td.Returns, and registers the task on rec.Graph. It returns a *dag.Task
// for a scalar return, or a []*dag.Tasklet for a tuple return — the two
// are distinguished by dynamic type at the call site, and the returned
// value is an opaque handle downstream tasks accept as an argument.
//
// Definition errors (arity mismatch, more than maxOutputs outputs) return
// an error instead of panicking: a Go caller cannot recover from a panic
// raised inside an argument expression without unwinding the whole call,
// so these are reported through the ordinary error return instead.
func (td *TaskDef) Call(rec *Recorder, args ...any) (any, error) {
	if len(args) != len(td.Params) {
		return nil, fmt.Errorf("build: %s accepts %d arguments, %d given", td.Name, len(td.Params), len(args))
	}
	if len(td.Returns) > maxOutputs {
		return nil, fmt.Errorf("build: %s returning more than %d outputs", td.Name, maxOutputs)
	}

	ctx := handler.NewContext(td.Name, td.Fn.Interface(), td.Fn.Type())
	handler.Global().RunInit(ctx)

	task := dag.NewTask(td.Name, genRunner(td.Name, td.Fn, td.Params))

	for i, p := range td.Params {
		value := args[i]
		port := dag.NewPort(paramType(p, value), paramName(p, i), -1, task, rec.PortKind)
		task.AddInput(port)

		switch v := value.(type) {
		case *dag.Task:
			wireEdge(v, v.Outputs["0"], port)
		case *dag.Tasklet:
			wireEdge(v.Parent, v.Port(), port)
		default:
			task.Args[port.Name] = value
		}
	}

	outCount := len(td.Returns)
	isTuple := outCount > 1
	if outCount == 0 {
		outCount = 1
	}

	var tasklets []*dag.Tasklet
	for i := 0; i < outCount; i++ {
		retType := returnType(td.Returns, i, args)
		out := dag.NewPort(retType, strconv.Itoa(i), i, task, rec.PortKind)
		task.AddOutput(out)
		if isTuple {
			tasklets = append(tasklets, &dag.Tasklet{Parent: task, OutSlotInParent: i})
		}
	}

	rec.Graph.AddTask(task)

	if isTuple {
		return tasklets, nil
	}
	return task, nil
}

// wireEdge links parent's parentOut to childIn, flipping childIn's
// immediacy (which increments the consuming task's latch) the moment an
// argument turns out to be a task handle rather than a literal.
func wireEdge(parent *dag.Task, parentOut, childIn *dag.Port) {
	childIn.FlipImmediate()
	parent.Edges = append(parent.Edges, dag.NewEdge(parentOut, childIn))
}

// paramName falls back to a positional name when a Param was declared
// without one, so every in-port still has a usable map key.
func paramName(p dtype.Param, index int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("arg%d", index)
}

// paramType resolves an in-port's type: an explicit annotation wins;
// otherwise a linked argument inherits its source out-port's type, and a
// literal argument's type is reflected off its Go value.
func paramType(p dtype.Param, value any) *dtype.Type {
	if p.Annotation != "" {
		return dtype.Global().GetType(p.Annotation)
	}
	switch v := value.(type) {
	case *dag.Task:
		return v.Outputs["0"].Type
	case *dag.Tasklet:
		return v.Port().Type
	default:
		return dtype.Global().GetTypeFor(reflect.ValueOf(value))
	}
}

// returnType resolves the i'th out-port's type: an empty Returns list means
// a single implicit anyfile output; a dependent `@argsN.field` annotation
// is resolved against the actual bound arguments at construction time.
func returnType(returns []dtype.Param, i int, args []any) *dtype.Type {
	if len(returns) == 0 {
		return dtype.Global().Lookup("anyfile")
	}
	annotation := returns[i].Annotation
	if annotation == "" {
		return dtype.Global().Lookup("anyfile")
	}
	if dtype.IsDependentReturn(annotation) {
		argIndex, field, err := dtype.ResolveDependentReturn(annotation)
		if err == nil && argIndex >= 0 && argIndex < len(args) {
			if id := structOrMapField(args[argIndex], field); id != "" {
				return dtype.Global().GetType(id)
			}
		}
		return dtype.Global().Lookup("anyfile")
	}
	return dtype.Global().GetType(annotation)
}

// structOrMapField reads field off arg, whether arg is a struct (by field
// name) or a map[string]any (by key).
func structOrMapField(arg any, field string) string {
	v := reflect.ValueOf(arg)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		fv := v.FieldByName(field)
		if fv.IsValid() && fv.Kind() == reflect.String {
			return fv.String()
		}
	case reflect.Map:
		mv := v.MapIndex(reflect.ValueOf(field))
		if mv.IsValid() {
			if s, ok := mv.Interface().(string); ok {
				return s
			}
		}
	}
	return ""
}

// genRunner builds the dag.Runner invoked when task's latch reaches zero:
// it runs the pre-handler chain, calls fn by reflection with args bound in
// param order, runs the post-handler chain, and recovers from a panic
// inside fn so one failing task does not take down the whole run.
func genRunner(name string, fn reflect.Value, params []dtype.Param) dag.Runner {
	order := make([]string, len(params))
	for i, p := range params {
		order[i] = paramName(p, i)
	}
	fnType := fn.Type()

	return func(args map[string]any) any {
		ctx := handler.NewContext(name, fn.Interface(), fnType)
		ctx.Args = args
		handler.Global().RunPre(ctx)

		ret := invoke(fn, fnType, order, args, name)
		ctx.Ret = ret

		handler.Global().RunPost(ctx)
		return ret
	}
}

// invoke calls fn with args bound in order, recovering from any panic
// raised inside the user function: logged, with the task's output treated
// as absent rather than propagating the panic to the rest of the run.
func invoke(fn reflect.Value, fnType reflect.Type, order []string, args map[string]any, name string) (result any) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task %s: recovered from panic: %v", name, r)
			result = nil
		}
	}()

	in := make([]reflect.Value, len(order))
	for i, pname := range order {
		want := fnType.In(i)
		val := args[pname]
		if val == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		rv := reflect.ValueOf(val)
		if !rv.Type().AssignableTo(want) && rv.Type().ConvertibleTo(want) {
			rv = rv.Convert(want)
		}
		in[i] = rv
	}

	out := fn.Call(in)
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0].Interface()
	default:
		vals := make([]any, len(out))
		for i, o := range out {
			vals[i] = o.Interface()
		}
		return vals
	}
}
