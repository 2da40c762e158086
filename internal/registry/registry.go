// Package registry stores externally registered function signatures
// that the type checker and DAG builder resolve module calls against.
// It is the single mechanism for stdlib, user-module, and external (RPC)
// module signatures (spec.md §6).
package registry

import (
	"strings"
	"sync/atomic"

	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// HOFPrefix marks a registered module as higher-order by convention: a
// Signature whose ModuleName starts with this prefix takes a lambda
// argument (detected by the type checker) and becomes a HigherOrder IR
// node (spec.md §4.4, §4.5) instead of an ordinary ModuleCall.
const HOFPrefix = "hof."

// IsHigherOrder reports whether sig was registered under the
// higher-order naming convention.
func IsHigherOrder(sig Signature) bool {
	return len(sig.ModuleName) >= len(HOFPrefix) && sig.ModuleName[:len(HOFPrefix)] == HOFPrefix
}

// Param is a single named, typed function parameter.
type Param struct {
	Name string
	Type semtype.Type
}

// Signature describes one registered callable: a module's name, its
// parameter list, return type, the module it resolves to at runtime,
// and an optional namespace for `use`-qualified lookup.
type Signature struct {
	Name       string
	Params     []Param
	Returns    semtype.Type
	ModuleName string
	Namespace  string // empty for unqualified/global signatures
}

// QualifiedName returns "namespace.Name", or just "Name" if unqualified.
func (s Signature) QualifiedName() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}

// snapshot is the immutable backing store swapped atomically on mutation.
type snapshot struct {
	byQualified map[string]Signature   // "ns.Name" or "Name" -> sig
	bySimple    map[string][]Signature // "Name" -> all sigs with that simple name, any namespace
	namespaces  map[string]bool
}

func newSnapshot() *snapshot {
	return &snapshot{
		byQualified: map[string]Signature{},
		bySimple:    map[string][]Signature{},
		namespaces:  map[string]bool{},
	}
}

func (s *snapshot) clone() *snapshot {
	out := newSnapshot()
	for k, v := range s.byQualified {
		out.byQualified[k] = v
	}
	for k, v := range s.bySimple {
		cp := make([]Signature, len(v))
		copy(cp, v)
		out.bySimple[k] = cp
	}
	for k, v := range s.namespaces {
		out.namespaces[k] = v
	}
	return out
}

// Registry is a thread-safe function-signature store. All mutations do a
// copy-on-write swap of an atomic.Value holding *snapshot, so concurrent
// Lookup calls never observe a partially updated map (spec.md §5).
type Registry struct {
	v atomic.Value // *snapshot
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{}
	r.v.Store(newSnapshot())
	return r
}

func (r *Registry) load() *snapshot {
	return r.v.Load().(*snapshot)
}

// Register adds or replaces a signature under its qualified name. It
// retries the copy-on-write swap against the live snapshot until no
// concurrent mutation raced it, so two simultaneous Register calls never
// silently discard one another (spec.md §4.2).
func (r *Registry) Register(sig Signature) {
	for {
		cur := r.load()
		next := cur.clone()
		next.byQualified[sig.QualifiedName()] = sig
		next.bySimple[sig.Name] = appendReplacing(next.bySimple[sig.Name], sig)
		if sig.Namespace != "" {
			next.namespaces[sig.Namespace] = true
		}
		if r.v.CompareAndSwap(cur, next) {
			return
		}
	}
}

func appendReplacing(list []Signature, sig Signature) []Signature {
	for i, s := range list {
		if s.Namespace == sig.Namespace {
			list[i] = sig
			return list
		}
	}
	return append(list, sig)
}

// Deregister removes the signature for qualifiedName. It is a no-op if
// the name is unknown. If removing the last signature in a namespace
// empties it, the namespace itself is removed. Like Register, it retries
// the copy-on-write swap until it wins against the live snapshot.
func (r *Registry) Deregister(qualifiedName string) {
	for {
		cur := r.load()
		sig, ok := cur.byQualified[qualifiedName]
		if !ok {
			return
		}
		next := cur.clone()
		delete(next.byQualified, qualifiedName)

		filtered := next.bySimple[sig.Name][:0:0]
		for _, s := range next.bySimple[sig.Name] {
			if s.Namespace != sig.Namespace || s.Name != sig.Name {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			delete(next.bySimple, sig.Name)
		} else {
			next.bySimple[sig.Name] = filtered
		}

		if sig.Namespace != "" {
			stillUsed := false
			for _, sigs := range next.bySimple {
				for _, s := range sigs {
					if s.Namespace == sig.Namespace {
						stillUsed = true
						break
					}
				}
			}
			for _, s := range next.byQualified {
				if s.Namespace == sig.Namespace {
					stillUsed = true
				}
			}
			if !stillUsed {
				delete(next.namespaces, sig.Namespace)
			}
		}
		if r.v.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Lookup resolves a possibly-qualified name ("ns.Name" or "Name")
// exactly as registered.
func (r *Registry) Lookup(name string) (Signature, bool) {
	sig, ok := r.load().byQualified[name]
	return sig, ok
}

// LookupQualified is an alias of Lookup kept for API-surface parity with
// spec.md §6 (`lookupQualified`).
func (r *Registry) LookupQualified(name string) (Signature, bool) {
	return r.Lookup(name)
}

// LookupSimple returns every signature registered under the given simple
// (unqualified) name, across all namespaces.
func (r *Registry) LookupSimple(name string) []Signature {
	list := r.load().bySimple[name]
	out := make([]Signature, len(list))
	copy(out, list)
	return out
}

// All returns every registered signature, in no particular order.
func (r *Registry) All() []Signature {
	cur := r.load()
	out := make([]Signature, 0, len(cur.byQualified))
	for _, s := range cur.byQualified {
		out = append(out, s)
	}
	return out
}

// Namespaces returns the set of known `use`-able namespace names.
func (r *Registry) Namespaces() []string {
	cur := r.load()
	out := make([]string, 0, len(cur.namespaces))
	for ns := range cur.namespaces {
		out = append(out, ns)
	}
	return out
}

// LookupInNamespaces resolves an unqualified name within a caller-supplied
// set of imported namespaces (the `use` mechanism of spec.md §4.4). It
// returns the matching signatures so the caller can detect ambiguity.
func (r *Registry) LookupInNamespaces(name string, namespaces []string) []Signature {
	wanted := map[string]bool{}
	for _, ns := range namespaces {
		wanted[ns] = true
	}
	var out []Signature
	for _, sig := range r.LookupSimple(name) {
		if wanted[sig.Namespace] {
			out = append(out, sig)
		}
	}
	return out
}

// HasNamespaceCaseInsensitive reports whether any registered namespace
// matches name, ignoring case — used by the suggestion engine.
func (r *Registry) HasNamespaceCaseInsensitive(name string) (string, bool) {
	for _, ns := range r.Namespaces() {
		if strings.EqualFold(ns, name) {
			return ns, true
		}
	}
	return "", false
}
