package semtype

import "fmt"

// MergeError reports that two types cannot be combined by the `+`
// operator at the type level.
type MergeError struct {
	Left, Right Type
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cannot merge %s with %s", e.Left.String(), e.Right.String())
}

// MergeTypes implements the `+` operator at the type level (spec.md
// §4.1): right-biased record field union, with Candidates(record)
// recursing through the list/element shape.
func MergeTypes(l, r Type) (Type, error) {
	lr, lIsRecord := l.(*SRecord)
	rr, rIsRecord := r.(*SRecord)
	if lIsRecord && rIsRecord {
		return mergeRecords(lr, rr), nil
	}

	ll, lIsList := l.(*SList)
	rl, rIsList := r.(*SList)
	if lIsList && rIsList {
		merged, err := MergeTypes(ll.Elem, rl.Elem)
		if err != nil {
			return nil, err
		}
		return &SList{Elem: merged}, nil
	}
	if lIsList && rIsRecord {
		merged, err := MergeTypes(ll.Elem, r)
		if err != nil {
			return nil, err
		}
		return &SList{Elem: merged}, nil
	}
	if lIsRecord && rIsList {
		merged, err := MergeTypes(l, rl.Elem)
		if err != nil {
			return nil, err
		}
		return &SList{Elem: merged}, nil
	}

	return nil, &MergeError{Left: l, Right: r}
}

func mergeRecords(l, r *SRecord) *SRecord {
	fields := make(map[string]Type, len(l.Fields)+len(r.Fields))
	order := make([]string, 0, len(l.Names)+len(r.Names))
	seen := map[string]bool{}
	for _, n := range l.Names {
		fields[n] = l.Fields[n]
		order = append(order, n)
		seen[n] = true
	}
	for _, n := range r.Names {
		fields[n] = r.Fields[n] // right-biased overwrite
		if !seen[n] {
			order = append(order, n)
			seen[n] = true
		}
	}
	return NewRecord(order, fields)
}

// Project implements record projection (spec.md §4.4 Projection rule):
// source must be SRecord or SList(SRecord); every requested field must
// exist; the outer shape (record vs list) is preserved.
func Project(source Type, fields []string) (Type, error) {
	switch s := source.(type) {
	case *SRecord:
		return projectRecord(s, fields)
	case *SList:
		inner, ok := s.Elem.(*SRecord)
		if !ok {
			return nil, fmt.Errorf("cannot project fields from %s", source.String())
		}
		projected, err := projectRecord(inner, fields)
		if err != nil {
			return nil, err
		}
		return &SList{Elem: projected}, nil
	default:
		return nil, fmt.Errorf("cannot project fields from %s", source.String())
	}
}

func projectRecord(r *SRecord, fields []string) (*SRecord, error) {
	out := make(map[string]Type, len(fields))
	for _, f := range fields {
		t, ok := r.Fields[f]
		if !ok {
			return nil, fmt.Errorf("field %q not found in %s", f, r.String())
		}
		out[f] = t
	}
	return NewRecord(fields, out), nil
}

// FieldAccess returns the type of a single field of an SRecord.
func FieldAccess(source Type, field string) (Type, error) {
	r, ok := source.(*SRecord)
	if !ok {
		return nil, fmt.Errorf("cannot access field %q of non-record type %s", field, source.String())
	}
	t, ok := r.Fields[field]
	if !ok {
		return nil, fmt.Errorf("field %q not found in %s", field, r.String())
	}
	return t, nil
}

// ExplainFailure produces a human-readable reason an IsSubtype check
// failed, used by the error taxonomy (spec.md §4.1) to build precise
// diagnostics instead of a bare "type mismatch".
func ExplainFailure(a, b Type) string {
	if IsSubtype(a, b) {
		return ""
	}
	ar, aIsRecord := a.(*SRecord)
	br, bIsRecord := b.(*SRecord)
	if aIsRecord && bIsRecord {
		for name, bt := range br.Fields {
			at, ok := ar.Fields[name]
			if !ok {
				return fmt.Sprintf("missing required field %q", name)
			}
			if !IsSubtype(at, bt) {
				return fmt.Sprintf("field %q has type %s, expected a subtype of %s", name, at.String(), bt.String())
			}
		}
	}
	if bu, ok := b.(*SUnion); ok {
		return fmt.Sprintf("%s is not a member of union %s", a.String(), bu.String())
	}
	if af, ok := a.(*SFunction); ok {
		if bf, ok := b.(*SFunction); ok && len(af.Params) != len(bf.Params) {
			return fmt.Sprintf("function arity mismatch: %d vs %d", len(af.Params), len(bf.Params))
		}
	}
	return fmt.Sprintf("%s is not a subtype of %s", a.String(), b.String())
}
