package typeinfo

// Compatible reports whether candidate is acceptable where declared is declared.
//
// In exact mode only the identical descriptor matches. Otherwise declared must
// accept an instance of candidate or, when either side is primitive, both must
// share the same canonical primitive form (int32 and *int32 are compatible).
func Compatible(declared, candidate *Type, exact bool) bool {
	if declared == nil || candidate == nil {
		return declared == candidate
	}
	if exact {
		return declared == candidate
	}
	if declared.AcceptsInstanceOf(candidate) {
		return true
	}
	if declared.IsPrimitive() || candidate.IsPrimitive() {
		dc := declared.Canonical()
		return dc != nil && dc == candidate.Canonical()
	}
	return false
}

// ParamsCompatible compares parameter lists position by position.
// Lists of different length never match; two empty lists always do.
func ParamsCompatible(declared, candidate []*Type, exact bool) bool {
	if len(declared) != len(candidate) {
		return false
	}
	for i := range declared {
		if !Compatible(declared[i], candidate[i], exact) {
			return false
		}
	}
	return true
}

// TypesOf maps runtime argument values to their types, nil to Unknown.
func TypesOf(args ...any) []*Type {
	types := make([]*Type, len(args))
	for i, a := range args {
		types[i] = Of(a)
	}
	return types
}

// Names renders a parameter list for diagnostics.
func Names(types []*Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = t.Name()
	}
	return names
}
