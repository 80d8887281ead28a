package dtype

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Registry interns Type values by id, so that "two type objects are equal
// iff their ids match" can be implemented as a map lookup rather than a
// deep comparison. GetType always returns the same *Type pointer for a
// given id once it has been interned.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

var global = newRegistry()

func newRegistry() *Registry {
	r := &Registry{types: make(map[string]*Type)}
	for _, t := range []*Type{
		{Id: "int", Kind: Builtin, Go: reflect.TypeOf(int(0))},
		{Id: "str", Kind: Builtin, Go: reflect.TypeOf("")},
		{Id: "bool", Kind: Builtin, Go: reflect.TypeOf(false)},
		{Id: "dict", Kind: Builtin, Go: reflect.TypeOf(map[string]any{})},
		{Id: "float", Kind: Builtin, Go: reflect.TypeOf(float64(0))},
		{Id: "csv", Kind: File, Ext: ".csv"},
		{Id: "xls", Kind: File, Ext: ".xls"},
		{Id: "png", Kind: File, Ext: ".png"},
		{Id: "gz", Kind: File, Ext: ".gz"},
		{Id: "any", Kind: Dynamic},
		{Id: "anyfile", Kind: Dynamic},
	} {
		r.types[t.Id] = t
	}
	return r
}

// Global returns the process-wide Registry singleton.
func Global() *Registry { return global }

// Register interns a type, returning the existing entry if one with the
// same id is already present.
func (r *Registry) Register(t *Type) *Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[t.Id]; ok {
		return existing
	}
	r.types[t.Id] = t
	return t
}

// Lookup returns the interned Type for an id, or nil if none is registered.
func (r *Registry) Lookup(id string) *Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types[id]
}

// dependentReturn matches the `@argsN.field` dependent return annotation
// form: N is a 1-based positional argument index,
// field is the struct/map field read off that argument's bound value.
var dependentReturn = regexp.MustCompile(`^@args(\d+)\.(\w+)$`)

// IsDependentReturn reports whether annotation has the `@argsN.field` shape.
func IsDependentReturn(annotation string) bool {
	return dependentReturn.MatchString(annotation)
}

// ResolveDependentReturn parses `@argsN.field` into a zero-based argument
// index and a field name, for the caller to read off the Nth positional
// argument's bound value at task-construction time.
func ResolveDependentReturn(annotation string) (argIndex int, field string, err error) {
	m := dependentReturn.FindStringSubmatch(annotation)
	if m == nil {
		return 0, "", fmt.Errorf("dtype: %q is not a dependent return annotation", annotation)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("dtype: bad argument index in %q: %w", annotation, err)
	}
	return n - 1, m[2], nil
}

// GetType maps a raw annotation string to its canonical Type. An unknown
// annotation never fails: it returns the dynamic "any" type.
func (r *Registry) GetType(annotation string) *Type {
	if t := r.Lookup(annotation); t != nil {
		return t
	}
	if IsDependentReturn(annotation) {
		// Resolved later against the actual bound argument; until then it
		// behaves like the dynamic file placeholder.
		return r.Lookup("anyfile")
	}
	return r.Lookup("any")
}

// GetTypeFor derives a Type from a reflected Go value, for literal
// arguments with no explicit annotation.
func (r *Registry) GetTypeFor(v reflect.Value) *Type {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return r.Lookup("int")
	case reflect.Float32, reflect.Float64:
		return r.Lookup("float")
	case reflect.String:
		return r.Lookup("str")
	case reflect.Bool:
		return r.Lookup("bool")
	case reflect.Map:
		return r.Lookup("dict")
	default:
		return r.Lookup("any")
	}
}

// InferFileType guesses a file Type from a filename's extension, used by
// the Transform pass to detect source-side format mismatches.
func (r *Registry) InferFileType(filename string) *Type {
	ext := strings.ToLower(filename)
	if i := strings.LastIndexByte(ext, '.'); i >= 0 {
		ext = ext[i+1:]
	} else {
		return nil
	}
	return r.Lookup(ext)
}
