// Package dtype implements the type system: type identity, the castability
// relation between builtin, file, and dynamic types, and resolution of
// annotations (including the dependent `@argsN.field` return form) to Type
// values.
//
// Registry interns a canonical Type value per id so two lookups of the same
// id are equal in the usual Go sense; two Type values are equal iff their
// ids match. Dynamic types (any, anyfile) unify with a concrete type by
// overwriting the dynamic endpoint's Type id in place, which is why Type carries a
// settable id rather than being an immutable value — callers that hand a
// Type to something that may mutate it (dag.NewPort does, on every port it
// builds) must own a private copy rather than share the interned pointer.
package dtype
