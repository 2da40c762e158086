package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// buildScenarioB mirrors spec.md §8 scenario B: a = 2; b = 3; c =
// add(a, b); out c.
func buildScenarioB() *ir.Pipeline {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	a := &litNode{id: "a", kind: ast.LitInt, i: 2}
	b := &litNode{id: "b", kind: ast.LitInt, i: 3}
	p.Nodes["a"] = a.toIR()
	p.Nodes["b"] = b.toIR()
	p.Nodes["c"] = &ir.ModuleCall{
		Signature: registry.Signature{Name: "add", Returns: semtype.SInt{}},
		Args:      []string{"a", "b"},
	}
	setID(p.Nodes["c"], "c")
	p.Bindings = map[string]string{"a": "a", "b": "b", "c": "c"}
	p.OutputBindings = map[string]string{"c": "c"}
	p.Inputs = nil
	return p
}

type litNode struct {
	id   string
	kind ast.LiteralKind
	i    int64
}

func (l *litNode) toIR() ir.Node {
	n := &ir.Literal{Kind: l.kind, Int: l.i}
	setID(n, l.id)
	return n
}

func setID(n ir.Node, id string) {
	switch v := n.(type) {
	case *ir.Literal:
		v.IDVal = id
	case *ir.ModuleCall:
		v.IDVal = id
	case *ir.ListLiteral:
		v.IDVal = id
	case *ir.RecordLiteral:
		v.IDVal = id
	case *ir.Merge:
		v.IDVal = id
	}
}

func TestScenarioBConstantFoldsToSingleLiteral(t *testing.T) {
	p := buildScenarioB()
	stats := Run(p, Default)

	require.Len(t, p.Nodes, 1, "expected DCE+folding to leave 1 node: %+v", p.Nodes)
	c, ok := p.Nodes["c"].(*ir.Literal)
	require.True(t, ok, "expected c to fold to a Literal, got %T", p.Nodes["c"])
	assert.EqualValues(t, 5, c.Int)
	assert.EqualValues(t, 2, stats.NodesEliminated, "expected 2 nodes eliminated (a, b)")
}

func TestDeadCodeEliminationDropsUnreachable(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	kept := &ir.Literal{Kind: ast.LitInt, Int: 1}
	setID(kept, "kept")
	p.Nodes["kept"] = kept
	dropped := &ir.Literal{Kind: ast.LitInt, Int: 2}
	setID(dropped, "dropped")
	p.Nodes["dropped"] = dropped
	p.OutputBindings = map[string]string{"out": "kept"}

	Run(p, DCEOnly)

	_, ok := p.Nodes["dropped"]
	assert.False(t, ok, "expected unreachable node to be eliminated")
	_, ok = p.Nodes["kept"]
	assert.True(t, ok, "expected output-reachable node to survive")
}

func TestOptimizerIdempotentAfterFixpoint(t *testing.T) {
	p := buildScenarioB()
	Run(p, Default)
	before := len(p.Nodes)
	Run(p, Default)
	assert.Equal(t, before, len(p.Nodes), "expected a second run to be a no-op")
}

func TestConstantFoldingCollapsesListLiteral(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	one := &ir.Literal{Kind: ast.LitInt, Int: 1}
	setID(one, "one")
	two := &ir.Literal{Kind: ast.LitInt, Int: 2}
	setID(two, "two")
	list := &ir.ListLiteral{Elements: []string{"one", "two"}}
	setID(list, "list")
	p.Nodes["one"], p.Nodes["two"], p.Nodes["list"] = one, two, list
	p.OutputBindings = map[string]string{"out": "list"}

	Run(p, Default)

	folded, ok := p.Nodes["list"].(*ir.Literal)
	require.True(t, ok, "expected list to fold to a Literal, got %T", p.Nodes["list"])
	require.Equal(t, ast.LitList, folded.Kind)
	require.Len(t, folded.List, 2)
	assert.EqualValues(t, 1, folded.List[0].Int)
	assert.EqualValues(t, 2, folded.List[1].Int)
}

func TestConstantFoldingCollapsesRecordLiteral(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	name := &ir.Literal{Kind: ast.LitString, Str: "widget"}
	setID(name, "name")
	qty := &ir.Literal{Kind: ast.LitInt, Int: 4}
	setID(qty, "qty")
	rec := &ir.RecordLiteral{Names: []string{"name", "qty"}, Fields: map[string]string{"name": "name", "qty": "qty"}}
	setID(rec, "rec")
	p.Nodes["name"], p.Nodes["qty"], p.Nodes["rec"] = name, qty, rec
	p.OutputBindings = map[string]string{"out": "rec"}

	Run(p, Default)

	folded, ok := p.Nodes["rec"].(*ir.Literal)
	require.True(t, ok, "expected rec to fold to a Literal, got %T", p.Nodes["rec"])
	require.Equal(t, ast.LitRecord, folded.Kind)
	assert.Equal(t, "widget", folded.Record["name"].Str)
	assert.EqualValues(t, 4, folded.Record["qty"].Int)
}

func TestCSEMergesIdenticalFoldedListLiterals(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	mk := func(id string, i int64) *ir.Literal {
		l := &ir.Literal{Kind: ast.LitInt, Int: i}
		setID(l, id)
		return l
	}
	p.Nodes["a1"], p.Nodes["a2"] = mk("a1", 1), mk("a2", 1)
	l1 := &ir.ListLiteral{Elements: []string{"a1"}}
	setID(l1, "l1")
	l2 := &ir.ListLiteral{Elements: []string{"a2"}}
	setID(l2, "l2")
	p.Nodes["l1"], p.Nodes["l2"] = l1, l2
	sum := &ir.Merge{Left: "l1", Right: "l2"}
	sum.IDVal = "sum"
	p.Nodes["sum"] = sum
	p.OutputBindings = map[string]string{"out": "sum"}

	Run(p, Default)

	merged, ok := p.Nodes["sum"].(*ir.Merge)
	require.True(t, ok, "expected sum node to survive as Merge, got %T", p.Nodes["sum"])
	assert.Equal(t, merged.Right, merged.Left, "expected both folded list literals to be CSE'd to the same node")
}

func TestCSEMergesIdenticalLiterals(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	l1 := &ir.Literal{Kind: ast.LitInt, Int: 7}
	setID(l1, "l1")
	l2 := &ir.Literal{Kind: ast.LitInt, Int: 7}
	setID(l2, "l2")
	p.Nodes["l1"] = l1
	p.Nodes["l2"] = l2
	sum := &ir.Merge{Left: "l1", Right: "l2"}
	sum.IDVal = "sum"
	p.Nodes["sum"] = sum
	p.OutputBindings = map[string]string{"out": "sum"}

	Run(p, CSEOnly)

	merged, ok := p.Nodes["sum"].(*ir.Merge)
	require.True(t, ok, "expected sum node to survive as Merge, got %T", p.Nodes["sum"])
	assert.Equal(t, merged.Right, merged.Left, "expected both operands to be rewritten to the same canonical literal")
}
