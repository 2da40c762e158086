// Package ir defines the compiler's intermediate representation: a
// directed graph of typed nodes with stable (UUID) identities, built
// from a typedast.TypedPipeline and consumed by internal/optimizer and
// internal/dag (spec.md §4.5).
package ir

import (
	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// Node is implemented by every IR node variant. Producers returns the
// IDs of every node this one directly consumes, for topological
// ordering and DCE reachability.
type Node interface {
	ID() string
	OutputType() semtype.Type
	Producers() []string
}

type base struct {
	IDVal   string
	TypeVal semtype.Type
}

func (b base) ID() string               { return b.IDVal }
func (b base) OutputType() semtype.Type { return b.TypeVal }

// Input is a pipeline `in` declaration, a lambda-parameter /
// captured-free-variable binding inside a HigherOrder sub-graph, or a
// match-case pattern binding. DependsOn is empty except for the last
// case, where it names the Match node's scrutinee so topological order
// and CSE both see the real data dependency a bare Input wouldn't
// otherwise expose.
type Input struct {
	base
	Name      string
	DependsOn string
}

func (n *Input) Producers() []string {
	if n.DependsOn == "" {
		return nil
	}
	return []string{n.DependsOn}
}

// Literal is a constant value carried unchanged from the typed AST, or a
// composite value folded by internal/optimizer from a ListLiteral or
// RecordLiteral whose every element/field producer was itself already a
// Literal. List and RecordNames/Record are only populated when Kind is
// ast.LitList or ast.LitRecord respectively.
type Literal struct {
	base
	Kind  ast.LiteralKind
	Str   string
	Int   int64
	Float float64
	Bool  bool

	List        []*Literal
	RecordNames []string // declaration order, mirrors RecordLiteral.Names
	Record      map[string]*Literal
}

func (n *Literal) Producers() []string { return nil }

// ModuleCall invokes an externally registered module. Args is
// positional, parallel to Signature.Params; raw with-clause options are
// normalized by internal/options at DAG-build time. FallbackID is the
// node ID of an IR-generated fallback expression in the *same* graph,
// if a `fallback` option was present.
type ModuleCall struct {
	base
	ModuleName string
	Signature  registry.Signature
	Args       []string
	Options    []ast.Option
	FallbackID string
}

func (n *ModuleCall) Producers() []string {
	p := append([]string{}, n.Args...)
	if n.FallbackID != "" {
		p = append(p, n.FallbackID)
	}
	return p
}

// Merge, Projection, FieldAccess mirror the typed-AST inline ops.
type Merge struct {
	base
	Left, Right string
}

func (n *Merge) Producers() []string { return []string{n.Left, n.Right} }

type Projection struct {
	base
	Source string
	Fields []string
}

func (n *Projection) Producers() []string { return []string{n.Source} }

type FieldAccess struct {
	base
	Source string
	Field  string
}

func (n *FieldAccess) Producers() []string { return []string{n.Source} }

type Conditional struct {
	base
	Cond, Then, Else string
}

func (n *Conditional) Producers() []string { return []string{n.Cond, n.Then, n.Else} }

type BoolBinary struct {
	base
	Op          ast.BoolOp
	Left, Right string
}

func (n *BoolBinary) Producers() []string { return []string{n.Left, n.Right} }

type Not struct {
	base
	Operand string
}

func (n *Not) Producers() []string { return []string{n.Operand} }

type Compare struct {
	base
	Op          ast.CompareOp
	Left, Right string
}

func (n *Compare) Producers() []string { return []string{n.Left, n.Right} }

type Guard struct {
	base
	Expr, Condition string
}

func (n *Guard) Producers() []string { return []string{n.Expr, n.Condition} }

type Coalesce struct {
	base
	Left, Right string
}

func (n *Coalesce) Producers() []string { return []string{n.Left, n.Right} }

// BranchCase is one `cond -> expr` arm of a Branch node.
type BranchCase struct {
	Cond, Body string
}

type Branch struct {
	base
	Cases     []BranchCase
	Otherwise string
}

func (n *Branch) Producers() []string {
	p := make([]string, 0, len(n.Cases)*2+1)
	for _, c := range n.Cases {
		p = append(p, c.Cond, c.Body)
	}
	return append(p, n.Otherwise)
}

type StringInterpolation struct {
	base
	Parts []string
	Exprs []string
}

func (n *StringInterpolation) Producers() []string { return n.Exprs }

type ListLiteral struct {
	base
	Elements []string
}

func (n *ListLiteral) Producers() []string { return n.Elements }

type RecordLiteral struct {
	base
	Names  []string
	Fields map[string]string // field name -> producer ID
}

func (n *RecordLiteral) Producers() []string {
	p := make([]string, 0, len(n.Names))
	for _, name := range n.Names {
		p = append(p, n.Fields[name])
	}
	return p
}

// MatchPattern mirrors typedast.TPattern but by value, for the IR/DAG
// layers that no longer have access to the typedast package.
type MatchPattern struct {
	Kind    MatchPatternKind
	Fields  []string // Kind == PatternRecord
	Binding string   // Kind == PatternTypeTest
	Type    semtype.Type
}

type MatchPatternKind int

const (
	PatternRecord MatchPatternKind = iota
	PatternTypeTest
	PatternWildcard
)

// MatchCase is one arm of a Match node: a pattern plus the node ID of
// its (already-built, bindings-aware) body.
type MatchCase struct {
	Pattern  MatchPattern
	Bindings map[string]string // binding name -> Input node ID created for it
	Body     string
}

type Match struct {
	base
	Scrutinee string
	Cases     []MatchCase
}

func (n *Match) Producers() []string {
	p := []string{n.Scrutinee}
	for _, c := range n.Cases {
		for _, id := range c.Bindings {
			p = append(p, id)
		}
		p = append(p, c.Body)
	}
	return p
}

// LambdaGraph is a self-contained IR sub-graph compiled from a lambda
// body: its own node map, its own parameter Input nodes (in parameter
// order), any captured free-variable Input nodes, and the ID of the
// node producing the body's result.
type LambdaGraph struct {
	Nodes      map[string]Node
	ParamNames []string
	ParamIDs   []string // Input node IDs, parallel to ParamNames
	Body       string
	// CapturedInputs maps a free variable name to the outer graph's node
	// ID that supplies its value; the DAG builder wires a real data
	// dependency from that ID to the internal Input node of the same name.
	CapturedInputs map[string]string
}

// HigherOrder is a call to a registered higher-order module (Filter,
// Map, All, Any, SortBy — detected via the HOFPrefix signature
// convention in internal/registry). Source is the producer of the
// list being operated over; Lambda is compiled into its own sub-graph.
type HigherOrder struct {
	base
	Operation string
	Source    string
	Lambda    *LambdaGraph
}

func (n *HigherOrder) Producers() []string {
	p := []string{n.Source}
	for _, id := range n.Lambda.CapturedInputs {
		p = append(p, id)
	}
	return p
}

// Pipeline is the IR builder's full output: every node keyed by ID, the
// IDs of `in`-declaration nodes, the declared output names, and the
// binding from variable name to the node producing its current value.
type Pipeline struct {
	Nodes    map[string]Node
	Inputs   []string
	Outputs  []string
	Bindings map[string]string // variable name -> node ID

	// OutputBindings maps each declared output name to the node ID that
	// produces it, resolved once at the end of the build (spec.md §4.5).
	OutputBindings map[string]string
}
