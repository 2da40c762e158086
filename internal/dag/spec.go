// Package dag converts an optimized internal/ir.Pipeline into a DagSpec:
// the runtime-consumable description of data nodes, module nodes, their
// edges, inline transforms, and synthetic modules for branch/match
// (spec.md §4.7).
package dag

import "github.com/vledicfranco/constellation-compiler/internal/semtype"

// UninitializedModule describes one externally registered module's shape
// (its param/return names and types) plus an implementation stub the
// runtime is responsible for resolving. The compiler never calls into
// this stub; it only copies the shape into a ModuleNodeSpec.
type UninitializedModule struct {
	Name        string
	Consumes    map[string]semtype.Type
	Produces    map[string]semtype.Type
	OutputField string // the single entry of Produces this module's result binds to
}

// ModuleNodeSpec is one module invocation in the compiled DAG.
type ModuleNodeSpec struct {
	ID       string
	Name     string // "{dagName}.{moduleName}"
	Consumes map[string]semtype.Type
	Produces map[string]semtype.Type
}

// DataNodeSpec is one value flowing through the DAG: either produced by
// a module (InlineTransform is nil), or computed in place by an inline
// transform from other data nodes (TransformInputs).
type DataNodeSpec struct {
	ID   string
	Name string
	Type semtype.Type

	// Nicknames records, for every module this data node feeds, the
	// parameter name it is bound to under that module.
	Nicknames map[string]string

	InlineTransform Transform
	TransformInputs map[string]string // param name -> producer data node ID
}

// Edge is a directed data-to-module or module-to-data connection.
type Edge struct {
	DataID   string
	ModuleID string
}

// DagSpec is the compiler's final output: a flat description of data and
// module nodes plus their wiring, consumable by a runtime without any
// further reference to the IR or typed AST.
type DagSpec struct {
	Name           string
	DataNodes      map[string]*DataNodeSpec
	ModuleNodes    map[string]*ModuleNodeSpec
	InEdges        []Edge // data -> module
	OutEdges       []Edge // module -> data
	Outputs        []string
	OutputBindings map[string]string // output name -> data node ID
}
