// Package typecheck walks a parsed ast.Pipeline and produces a
// typedast.TypedPipeline, accumulating cerrors.Report diagnostics
// rather than stopping at the first problem (spec.md §4.4, §7).
package typecheck

import (
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// Env threads declared types, bound variables, and imported namespaces
// through a single left-to-right walk of the declarations.
type Env struct {
	Types     map[string]semtype.Type
	Variables map[string]semtype.Type
	Functions *registry.Registry
	Imports   map[string]bool
	// used tracks variables referenced by any expression (`with`
	// fallbacks included) or named by an output declaration, for the
	// unused-variable warning policy.
	used map[string]bool
}

// NewEnv returns an environment seeded with the primitive type names
// and backed by the given function registry.
func NewEnv(functions *registry.Registry) *Env {
	return &Env{
		Types: map[string]semtype.Type{
			"String":  semtype.SString{},
			"Int":     semtype.SInt{},
			"Float":   semtype.SFloat{},
			"Boolean": semtype.SBoolean{},
			"Nothing": semtype.SNothing{},
		},
		Variables: map[string]semtype.Type{},
		Functions: functions,
		Imports:   map[string]bool{},
		used:      map[string]bool{},
	}
}

func (e *Env) markUsed(name string) { e.used[name] = true }

func (e *Env) isUsed(name string) bool { return e.used[name] }

// KnownTypeNames returns every currently known type name (builtins plus
// user `type` declarations), for the suggestion engine.
func (e *Env) KnownTypeNames() []string {
	out := make([]string, 0, len(e.Types))
	for name := range e.Types {
		out = append(out, name)
	}
	return out
}

// KnownVariableNames returns every currently bound variable name.
func (e *Env) KnownVariableNames() []string {
	out := make([]string, 0, len(e.Variables))
	for name := range e.Variables {
		out = append(out, name)
	}
	return out
}

// ImportedNamespaces returns the set of namespaces brought in by `use`.
func (e *Env) ImportedNamespaces() []string {
	out := make([]string, 0, len(e.Imports))
	for ns := range e.Imports {
		out = append(out, ns)
	}
	return out
}
