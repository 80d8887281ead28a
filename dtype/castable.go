package dtype

// castMap is the fixed castability table: numeric widening,
// inter-file format conversion, and the *file → anyfile escape hatch.
var castMap = map[string][]string{
	"int":     {"float", "any"},
	"csv":     {"xls", "anyfile"},
	"xls":     {"csv", "anyfile"},
	"png":     {"anyfile"},
	"gz":      {"csv", "xls", "anyfile"},
	"anyfile": {},
}

// IsCastable reports whether a value of type a may flow into a port typed b.
// Reflexive cases (a.Id == b.Id) always succeed; dynamic-id unification is
// the caller's responsibility (see Unify).
func IsCastable(a, b *Type) bool {
	if a.Id == b.Id {
		return true
	}
	if a.IsDynamic() || b.IsDynamic() {
		return true
	}
	for _, castable := range castMap[a.Id] {
		if castable == b.Id {
			return true
		}
	}
	return false
}

// Unify resolves a dynamic endpoint against a concrete one by overwriting
// the dynamic Type's Id in place with the concrete id, so every later pass
// sees the concrete id on both ends of the edge. When both endpoints are dynamic, neither is
// mutated and the edge stays dynamic. Reports whether a mutation occurred.
func Unify(src, dst *Type) bool {
	srcDynamic, dstDynamic := src.IsDynamic(), dst.IsDynamic()
	switch {
	case srcDynamic && !dstDynamic:
		src.Id = dst.Id
		return true
	case !srcDynamic && dstDynamic:
		dst.Id = src.Id
		return true
	default:
		return false
	}
}
