// Package semtype defines the compiler's internal semantic type language
// and the algebra (subtyping, lub/glb, merge) that governs it.
package semtype

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags the variant of a SemanticType without requiring a type switch
// at every call site that only cares about the shape.
type Kind int

const (
	KString Kind = iota
	KInt
	KFloat
	KBoolean
	KNothing
	KRecord
	KList
	KMap
	KOptional
	KUnion
	KFunction
)

// Type is the compiler's semantic type. All variants are immutable once
// constructed; algebra functions always return new values.
type Type interface {
	Kind() Kind
	String() string
}

// SString, SInt, SFloat, SBoolean are the primitive scalar types.
type (
	SString  struct{}
	SInt     struct{}
	SFloat   struct{}
	SBoolean struct{}
	// SNothing is the bottom type: a subtype of every other type.
	SNothing struct{}
)

func (SString) Kind() Kind  { return KString }
func (SInt) Kind() Kind     { return KInt }
func (SFloat) Kind() Kind   { return KFloat }
func (SBoolean) Kind() Kind { return KBoolean }
func (SNothing) Kind() Kind { return KNothing }

func (SString) String() string  { return "String" }
func (SInt) String() string     { return "Int" }
func (SFloat) String() string   { return "Float" }
func (SBoolean) String() string { return "Boolean" }
func (SNothing) String() string { return "Nothing" }

// SRecord is a structural record type. Names holds the field order
// (declaration order matters for printing and for deterministic hashing
// upstream); Fields maps each name to its type.
type SRecord struct {
	Names  []string
	Fields map[string]Type
}

// NewRecord builds an SRecord preserving the given field order.
func NewRecord(order []string, fields map[string]Type) *SRecord {
	names := make([]string, len(order))
	copy(names, order)
	f := make(map[string]Type, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	return &SRecord{Names: names, Fields: f}
}

func (r *SRecord) Kind() Kind { return KRecord }

func (r *SRecord) String() string {
	parts := make([]string, 0, len(r.Names))
	for _, n := range r.Names {
		parts = append(parts, fmt.Sprintf("%s: %s", n, r.Fields[n].String()))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// Has reports whether the record declares the named field.
func (r *SRecord) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// SList is `List<Elem>` (and the source-level `Candidates<T>` alias,
// which the checker folds into SList before any other phase sees it).
type SList struct {
	Elem Type
}

func (l *SList) Kind() Kind      { return KList }
func (l *SList) String() string  { return fmt.Sprintf("List<%s>", l.Elem.String()) }

// SMap is `Map<Key,Value>`.
type SMap struct {
	Key   Type
	Value Type
}

func (m *SMap) Kind() Kind { return KMap }
func (m *SMap) String() string {
	return fmt.Sprintf("Map<%s,%s>", m.Key.String(), m.Value.String())
}

// SOptional is `Optional<Inner>`.
type SOptional struct {
	Inner Type
}

func (o *SOptional) Kind() Kind     { return KOptional }
func (o *SOptional) String() string { return fmt.Sprintf("Optional<%s>", o.Inner.String()) }

// SUnion is a disjunction of types, normalized to a set (no nested unions,
// no duplicate members) by NewUnion.
type SUnion struct {
	Members []Type
}

// NewUnion flattens nested unions and de-duplicates members by String().
// A union of exactly one member collapses to that member.
func NewUnion(members ...Type) Type {
	seen := map[string]Type{}
	order := []string{}
	var flatten func(Type)
	flatten = func(t Type) {
		if u, ok := t.(*SUnion); ok {
			for _, m := range u.Members {
				flatten(m)
			}
			return
		}
		key := t.String()
		if _, ok := seen[key]; !ok {
			seen[key] = t
			order = append(order, key)
		}
	}
	for _, m := range members {
		flatten(m)
	}
	if len(order) == 1 {
		return seen[order[0]]
	}
	sort.Strings(order)
	out := make([]Type, len(order))
	for i, k := range order {
		out[i] = seen[k]
	}
	return &SUnion{Members: out}
}

func (u *SUnion) Kind() Kind { return KUnion }
func (u *SUnion) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// SFunction is a function signature: contravariant in Params, covariant
// in Returns (see Subtype rule).
type SFunction struct {
	Params  []Type
	Returns Type
}

func (f *SFunction) Kind() Kind { return KFunction }
func (f *SFunction) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Returns.String())
}

// Equals reports structural equality after normalization (SUnion member
// order is already normalized by NewUnion, so string comparison suffices
// for unions; other variants recurse field-by-field).
func Equals(a, b Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case SString, SInt, SFloat, SBoolean, SNothing:
		return true
	case *SRecord:
		bv := b.(*SRecord)
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, t := range av.Fields {
			bt, ok := bv.Fields[name]
			if !ok || !Equals(t, bt) {
				return false
			}
		}
		return true
	case *SList:
		return Equals(av.Elem, b.(*SList).Elem)
	case *SMap:
		bv := b.(*SMap)
		return Equals(av.Key, bv.Key) && Equals(av.Value, bv.Value)
	case *SOptional:
		return Equals(av.Inner, b.(*SOptional).Inner)
	case *SUnion:
		return a.String() == b.String()
	case *SFunction:
		bv := b.(*SFunction)
		if len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !Equals(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return Equals(av.Returns, bv.Returns)
	}
	return false
}

// AsCandidates is the source-level `Candidates<T>` alias; it is never
// retained as a distinct runtime variant, only as a parser/printer
// convenience. Callers that need to print "Candidates<T>" instead of
// "List<T>" should track that at the AST layer, not here.
func AsCandidates(elem Type) *SList {
	return &SList{Elem: elem}
}
