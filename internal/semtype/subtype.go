package semtype

// IsSubtype implements the rules of spec.md §4.1, checked in declaration
// order: reflexive identity, bottom, structural rules per-kind, then
// union membership in both directions.
func IsSubtype(a, b Type) bool {
	if Equals(a, b) {
		return true
	}
	if _, ok := a.(SNothing); ok {
		return true
	}

	switch av := a.(type) {
	case *SRecord:
		bv, ok := b.(*SRecord)
		if !ok {
			break
		}
		for name, bt := range bv.Fields {
			at, ok := av.Fields[name]
			if !ok || !IsSubtype(at, bt) {
				return false
			}
		}
		return true

	case *SList:
		bv, ok := b.(*SList)
		if !ok {
			break
		}
		return IsSubtype(av.Elem, bv.Elem)

	case *SOptional:
		bv, ok := b.(*SOptional)
		if !ok {
			break
		}
		return IsSubtype(av.Inner, bv.Inner)

	case *SMap:
		bv, ok := b.(*SMap)
		if !ok {
			break
		}
		return Equals(av.Key, bv.Key) && IsSubtype(av.Value, bv.Value)

	case *SFunction:
		bv, ok := b.(*SFunction)
		if !ok {
			break
		}
		if len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			// contravariant: super's param must accept sub's param
			if !IsSubtype(bv.Params[i], av.Params[i]) {
				return false
			}
		}
		return IsSubtype(av.Returns, bv.Returns)
	}

	if bu, ok := b.(*SUnion); ok {
		for _, m := range bu.Members {
			if IsSubtype(a, m) {
				return true
			}
		}
	}

	if au, ok := a.(*SUnion); ok {
		for _, m := range au.Members {
			if !IsSubtype(m, b) {
				return false
			}
		}
		return len(au.Members) > 0
	}

	return false
}

// Lub returns the least upper bound of a and b: the super if one subtypes
// the other, otherwise a flattened union of both.
func Lub(a, b Type) Type {
	if IsSubtype(a, b) {
		return b
	}
	if IsSubtype(b, a) {
		return a
	}
	return NewUnion(a, b)
}

// Glb returns the greatest lower bound: the sub if one subtypes the
// other, otherwise SNothing{} (no intersection types in this language).
func Glb(a, b Type) Type {
	if IsSubtype(a, b) {
		return a
	}
	if IsSubtype(b, a) {
		return b
	}
	return SNothing{}
}

// CommonType left-folds Lub over a non-empty list of types.
func CommonType(types []Type) Type {
	if len(types) == 0 {
		return SNothing{}
	}
	acc := types[0]
	for _, t := range types[1:] {
		acc = Lub(acc, t)
	}
	return acc
}
