// Package compiler is the facade orchestrating parse, type-check,
// IR-build, optimize, and DAG-build into a single compile operation,
// optionally wrapped by a compilation cache (spec.md §4, §6).
package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/vledicfranco/constellation-compiler/internal/cerrors"
	"github.com/vledicfranco/constellation-compiler/internal/dag"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// PipelineImage is the content-addressed, serializable shape of one
// compiled pipeline: its DAG, its options table, and the three hashes a
// cache or a collaborator uses to detect staleness (spec.md §3, §6).
type PipelineImage struct {
	DagSpec        *dag.DagSpec
	ModuleOptions  map[string]*ir.ModuleCallOptions
	StructuralHash string
	SyntacticHash  string
	SourceHash     string
	CompiledAt     int64 // unix millis; stamped by the caller, never by the compiler (spec.md: no wall-clock access in core)
}

// LoadedPipeline wraps an image the way a runtime would load it.
type LoadedPipeline struct {
	Image PipelineImage
}

// CompilationOutput is the compiler's success-path return value
// (spec.md §3, §6).
type CompilationOutput struct {
	Pipeline         LoadedPipeline
	SyntheticModules map[string]dag.UninitializedModule
	Warnings         []*cerrors.Warning
}

// sourceHash is a SHA-256 over the raw source bytes.
func sourceHash(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// syntacticHash is a SHA-256 over a normalized form of the source: here,
// source with insignificant whitespace runs collapsed, so two programs
// differing only in formatting hash identically.
func syntacticHash(src string) string {
	normalized := normalizeWhitespace(src)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeWhitespace(src string) string {
	out := make([]byte, 0, len(src))
	lastWasSpace := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if !lastWasSpace {
				out = append(out, ' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		out = append(out, c)
	}
	return string(out)
}

// structuralHash is a SHA-256 over the DAG's shape alone: each module's
// name with its consumed and produced field types, each data node's type
// and inline-transform kind, and each output binding's name and type.
// Edges and data node names are not hashed. The lines are sorted
// deterministically so two structurally-identical
// DAGs hash identically regardless of the (UUID-derived) node IDs
// allocated during IR build (spec.md §5: "the structural hash... depends
// only on shape, not IDs").
func structuralHash(spec *dag.DagSpec) string {
	var lines []string
	for _, m := range spec.ModuleNodes {
		lines = append(lines, fmt.Sprintf("module|%s|%s|%s", m.Name, typeMapSig(m.Consumes), typeMapSig(m.Produces)))
	}
	for _, d := range spec.DataNodes {
		kind := "plain"
		if d.InlineTransform != nil {
			kind = fmt.Sprintf("%T", d.InlineTransform)
		}
		lines = append(lines, fmt.Sprintf("data|%s|%s", d.Type.String(), kind))
	}
	for name, id := range spec.OutputBindings {
		lines = append(lines, fmt.Sprintf("output|%s|%s", name, spec.DataNodes[id].Type.String()))
	}
	sort.Strings(lines)
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func typeMapSig(m map[string]semtype.Type) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s:%s,", name, m[name].String())
	}
	return sb.String()
}

// registryHash is a SHA-256 over the sorted list of registered function
// signatures, used as one component of the cache key (spec.md §4.10).
func registryHash(r *registry.Registry) string {
	sigs := r.All()
	lines := make([]string, 0, len(sigs))
	for _, s := range sigs {
		lines = append(lines, fmt.Sprintf("%s|%s|%s", s.QualifiedName(), s.Returns.String(), paramsSig(s.Params)))
	}
	sort.Strings(lines)
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func paramsSig(params []registry.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + ":" + p.Type.String()
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
