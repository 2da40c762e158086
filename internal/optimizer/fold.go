package optimizer

import (
	"strconv"
	"strings"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
)

type constantFoldingPass struct{}

func (constantFoldingPass) Name() string { return "constant-folding" }

// Run replaces any node whose inputs are all Literal with a single
// Literal carrying the evaluated result, in place (the node keeps its
// ID, so no downstream reference needs rewriting). Covers arithmetic,
// boolean, comparison, string, list, and record construction, plus
// coalesce/conditional/branch folding when their literal operands make
// the outcome statically known (spec.md §4.6).
func (constantFoldingPass) Run(p *ir.Pipeline) bool {
	changed := false
	for id, n := range p.Nodes {
		if lit, ok := fold(p, n); ok {
			lit.IDVal = id
			p.Nodes[id] = lit
			changed = true
		}
	}
	return changed
}

func literalOf(p *ir.Pipeline, id string) (*ir.Literal, bool) {
	n, ok := p.Nodes[id]
	if !ok {
		return nil, false
	}
	lit, ok := n.(*ir.Literal)
	return lit, ok
}

func fold(p *ir.Pipeline, n ir.Node) (*ir.Literal, bool) {
	switch node := n.(type) {
	case *ir.BoolBinary:
		l, lok := literalOf(p, node.Left)
		r, rok := literalOf(p, node.Right)
		if !lok || !rok || l.Kind != ast.LitBool || r.Kind != ast.LitBool {
			return nil, false
		}
		var v bool
		if node.Op == ast.OpAnd {
			v = l.Bool && r.Bool
		} else {
			v = l.Bool || r.Bool
		}
		return &ir.Literal{Kind: ast.LitBool, Bool: v}, true

	case *ir.Not:
		o, ok := literalOf(p, node.Operand)
		if !ok || o.Kind != ast.LitBool {
			return nil, false
		}
		return &ir.Literal{Kind: ast.LitBool, Bool: !o.Bool}, true

	case *ir.Compare:
		return foldCompare(p, node)

	case *ir.Coalesce:
		l, ok := literalOf(p, node.Left)
		if ok {
			return l, true
		}
		return nil, false

	case *ir.Conditional:
		c, ok := literalOf(p, node.Cond)
		if !ok || c.Kind != ast.LitBool {
			return nil, false
		}
		branch := node.Then
		if !c.Bool {
			branch = node.Else
		}
		return literalOf(p, branch)

	case *ir.Branch:
		for _, cs := range node.Cases {
			c, ok := literalOf(p, cs.Cond)
			if !ok || c.Kind != ast.LitBool {
				return nil, false
			}
			if c.Bool {
				return literalOf(p, cs.Body)
			}
		}
		return literalOf(p, node.Otherwise)

	case *ir.StringInterpolation:
		var sb strings.Builder
		for i, part := range node.Parts {
			sb.WriteString(part)
			if i < len(node.Exprs) {
				lit, ok := literalOf(p, node.Exprs[i])
				if !ok {
					return nil, false
				}
				sb.WriteString(literalToString(lit))
			}
		}
		return &ir.Literal{Kind: ast.LitString, Str: sb.String()}, true

	case *ir.ModuleCall:
		return foldModuleCall(p, node)

	case *ir.ListLiteral:
		return foldListLiteral(p, node)

	case *ir.RecordLiteral:
		return foldRecordLiteral(p, node)
	}
	return nil, false
}

// foldListLiteral collapses a list construction into a single composite
// Literal once every element producer is itself already a Literal
// (spec.md §4.6).
func foldListLiteral(p *ir.Pipeline, node *ir.ListLiteral) (*ir.Literal, bool) {
	elems := make([]*ir.Literal, len(node.Elements))
	for i, eid := range node.Elements {
		lit, ok := literalOf(p, eid)
		if !ok {
			return nil, false
		}
		elems[i] = lit
	}
	return &ir.Literal{Kind: ast.LitList, List: elems}, true
}

// foldRecordLiteral collapses a record construction into a single
// composite Literal once every field producer is itself already a
// Literal (spec.md §4.6).
func foldRecordLiteral(p *ir.Pipeline, node *ir.RecordLiteral) (*ir.Literal, bool) {
	fields := make(map[string]*ir.Literal, len(node.Names))
	for _, name := range node.Names {
		lit, ok := literalOf(p, node.Fields[name])
		if !ok {
			return nil, false
		}
		fields[name] = lit
	}
	names := append([]string{}, node.Names...)
	return &ir.Literal{Kind: ast.LitRecord, RecordNames: names, Record: fields}, true
}

func literalToString(l *ir.Literal) string {
	switch l.Kind {
	case ast.LitString:
		return l.Str
	case ast.LitInt:
		return strconv.FormatInt(l.Int, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case ast.LitBool:
		if l.Bool {
			return "true"
		}
		return "false"
	}
	return ""
}

func foldCompare(p *ir.Pipeline, node *ir.Compare) (*ir.Literal, bool) {
	l, lok := literalOf(p, node.Left)
	r, rok := literalOf(p, node.Right)
	if !lok || !rok || l.Kind != r.Kind {
		return nil, false
	}
	var result bool
	switch l.Kind {
	case ast.LitInt:
		result = compareOrdered(node.Op, float64(l.Int), float64(r.Int))
	case ast.LitFloat:
		result = compareOrdered(node.Op, l.Float, r.Float)
	case ast.LitString:
		result = compareEquality(node.Op, l.Str == r.Str)
	case ast.LitBool:
		result = compareEquality(node.Op, l.Bool == r.Bool)
	default:
		return nil, false
	}
	return &ir.Literal{Kind: ast.LitBool, Bool: result}, true
}

func compareEquality(op ast.CompareOp, eq bool) bool {
	switch op {
	case ast.CmpEq:
		return eq
	case ast.CmpNeq:
		return !eq
	}
	return false
}

func compareOrdered(op ast.CompareOp, l, r float64) bool {
	switch op {
	case ast.CmpEq:
		return l == r
	case ast.CmpNeq:
		return l != r
	case ast.CmpLt:
		return l < r
	case ast.CmpGt:
		return l > r
	case ast.CmpLte:
		return l <= r
	case ast.CmpGte:
		return l >= r
	}
	return false
}

// foldableArithmetic is the fixed whitelist of pure, side-effect-free
// built-in arithmetic module names the optimizer is permitted to
// evaluate at compile time, matched case-insensitively against the
// module's simple (unqualified) name. Arbitrary registered modules are
// never folded: the compiler has no access to their implementation,
// only their signature.
var foldableArithmetic = map[string]func(a, b float64) float64{
	"add": func(a, b float64) float64 { return a + b },
	"sub": func(a, b float64) float64 { return a - b },
	"mul": func(a, b float64) float64 { return a * b },
	"div": func(a, b float64) float64 { return a / b },
}

func foldModuleCall(p *ir.Pipeline, node *ir.ModuleCall) (*ir.Literal, bool) {
	fn, ok := foldableArithmetic[strings.ToLower(node.Signature.Name)]
	if !ok || len(node.Args) != 2 {
		return nil, false
	}
	l, lok := literalOf(p, node.Args[0])
	r, rok := literalOf(p, node.Args[1])
	if !lok || !rok {
		return nil, false
	}
	if l.Kind == ast.LitInt && r.Kind == ast.LitInt {
		result := fn(float64(l.Int), float64(r.Int))
		return &ir.Literal{Kind: ast.LitInt, Int: int64(result)}, true
	}
	if (l.Kind == ast.LitInt || l.Kind == ast.LitFloat) && (r.Kind == ast.LitInt || r.Kind == ast.LitFloat) {
		lv, rv := asFloat(l), asFloat(r)
		return &ir.Literal{Kind: ast.LitFloat, Float: fn(lv, rv)}, true
	}
	return nil, false
}

func asFloat(l *ir.Literal) float64 {
	if l.Kind == ast.LitInt {
		return float64(l.Int)
	}
	return l.Float
}
