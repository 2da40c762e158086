package dag

import (
	"fmt"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
)

// LambdaValueKind tags the variant of a LambdaValue.
type LambdaValueKind int

const (
	LVInt LambdaValueKind = iota
	LVFloat
	LVStr
	LVBool
	LVRecord
	LVList
)

// LambdaValue is the small tagged-value type the lambda interpreter uses
// in place of the host language's dynamic typing (spec.md §9, "Dynamic
// typing inside the lambda interpreter"). It exists only inside
// internal/dag: everywhere else in the compiler values are static types,
// never runtime values.
type LambdaValue struct {
	Kind   LambdaValueKind
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Record map[string]LambdaValue
	List   []LambdaValue
}

// HasKind reports whether v is tagged with kind, used by type-test
// pattern matching.
func (v LambdaValue) HasKind(kind LambdaValueKind) bool { return v.Kind == kind }

func literalToLambdaValue(l *ir.Literal) LambdaValue {
	switch l.Kind {
	case ast.LitInt:
		return LambdaValue{Kind: LVInt, Int: l.Int}
	case ast.LitFloat:
		return LambdaValue{Kind: LVFloat, Float: l.Float}
	case ast.LitBool:
		return LambdaValue{Kind: LVBool, Bool: l.Bool}
	case ast.LitList:
		out := make([]LambdaValue, len(l.List))
		for i, e := range l.List {
			out[i] = literalToLambdaValue(e)
		}
		return LambdaValue{Kind: LVList, List: out}
	case ast.LitRecord:
		out := make(map[string]LambdaValue, len(l.Record))
		for name, f := range l.Record {
			out[name] = literalToLambdaValue(f)
		}
		return LambdaValue{Kind: LVRecord, Record: out}
	default:
		return LambdaValue{Kind: LVStr, Str: l.Str}
	}
}

// lambdaWhitelistedModules is the fixed set of pure arithmetic module
// names a lambda body may call (spec.md §4.7).
var lambdaWhitelistedModules = map[string]func(a, b LambdaValue) (LambdaValue, error){
	"add": func(a, b LambdaValue) (LambdaValue, error) { return numericOp(a, b, func(x, y float64) float64 { return x + y }) },
	"sub": func(a, b LambdaValue) (LambdaValue, error) { return numericOp(a, b, func(x, y float64) float64 { return x - y }) },
	"mul": func(a, b LambdaValue) (LambdaValue, error) { return numericOp(a, b, func(x, y float64) float64 { return x * y }) },
	"div": func(a, b LambdaValue) (LambdaValue, error) { return numericOp(a, b, func(x, y float64) float64 { return x / y }) },
}

func numericOp(a, b LambdaValue, op func(x, y float64) float64) (LambdaValue, error) {
	x, err := asFloatErr(a)
	if err != nil {
		return LambdaValue{}, err
	}
	y, err := asFloatErr(b)
	if err != nil {
		return LambdaValue{}, err
	}
	result := op(x, y)
	if a.Kind == LVInt && b.Kind == LVInt {
		return LambdaValue{Kind: LVInt, Int: int64(result)}, nil
	}
	return LambdaValue{Kind: LVFloat, Float: result}, nil
}

func asFloat(v LambdaValue) float64 {
	if v.Kind == LVInt {
		return float64(v.Int)
	}
	return v.Float
}

func asFloatErr(v LambdaValue) (float64, error) {
	if v.Kind != LVInt && v.Kind != LVFloat {
		return 0, fmt.Errorf("lambda arithmetic expects a numeric operand, got kind %d", v.Kind)
	}
	return asFloat(v), nil
}

// ValidateLambda rejects lambda bodies containing any node variant
// outside the fixed permitted set: module calls restricted to
// lambdaWhitelistedModules, comparisons, equalities, field access,
// conditional, literal, list literal, boolean ops (spec.md §4.7).
func ValidateLambda(g *ir.LambdaGraph) error {
	for id, n := range g.Nodes {
		switch node := n.(type) {
		case *ir.Input, *ir.Literal, *ir.Compare, *ir.FieldAccess,
			*ir.Conditional, *ir.ListLiteral, *ir.BoolBinary, *ir.Not:
			// permitted
		case *ir.ModuleCall:
			if _, ok := lambdaWhitelistedModules[node.Signature.Name]; !ok {
				return fmt.Errorf("lambda body calls unsupported module %q", node.Signature.Name)
			}
		default:
			return fmt.Errorf("lambda body node %s has unsupported kind %T", id, n)
		}
	}
	return nil
}

// EvalLambda interprets g over a single argument value (bound to its
// sole ParamName) plus any captured free-variable values, returning the
// body's result. Called once per element by Filter/Map/All/Any at
// runtime.
func EvalLambda(g *ir.LambdaGraph, arg LambdaValue, captured map[string]LambdaValue) (LambdaValue, error) {
	bindings := map[string]LambdaValue{}
	if len(g.ParamIDs) > 0 {
		bindings[g.ParamIDs[0]] = arg
	}
	for name, outerID := range g.CapturedInputs {
		v, ok := captured[name]
		if !ok {
			return LambdaValue{}, fmt.Errorf("missing captured value for free variable %q (outer node %s)", name, outerID)
		}
		// Captured Input nodes live inside g.Nodes under their own ID;
		// find it by matching the Input's Name to the free variable.
		for id, n := range g.Nodes {
			if in, ok := n.(*ir.Input); ok && in.Name == name {
				bindings[id] = v
			}
		}
	}
	return evalNode(g, g.Body, bindings)
}

func evalNode(g *ir.LambdaGraph, id string, bindings map[string]LambdaValue) (LambdaValue, error) {
	if v, ok := bindings[id]; ok {
		return v, nil
	}
	n, ok := g.Nodes[id]
	if !ok {
		return LambdaValue{}, fmt.Errorf("lambda interpreter: node %s not found", id)
	}
	switch node := n.(type) {
	case *ir.Input:
		return LambdaValue{}, fmt.Errorf("lambda interpreter: unbound input %q", node.Name)

	case *ir.Literal:
		return literalToLambdaValue(node), nil

	case *ir.BoolBinary:
		l, err := evalNode(g, node.Left, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		r, err := evalNode(g, node.Right, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		if node.Op == ast.OpAnd {
			return LambdaValue{Kind: LVBool, Bool: l.Bool && r.Bool}, nil
		}
		return LambdaValue{Kind: LVBool, Bool: l.Bool || r.Bool}, nil

	case *ir.Not:
		o, err := evalNode(g, node.Operand, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		return LambdaValue{Kind: LVBool, Bool: !o.Bool}, nil

	case *ir.Compare:
		l, err := evalNode(g, node.Left, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		r, err := evalNode(g, node.Right, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		return evalCompare(node.Op, l, r)

	case *ir.FieldAccess:
		src, err := evalNode(g, node.Source, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		if src.Kind != LVRecord {
			return LambdaValue{}, fmt.Errorf("lambda interpreter: field access on non-record")
		}
		v, ok := src.Record[node.Field]
		if !ok {
			return LambdaValue{}, fmt.Errorf("lambda interpreter: missing field %q", node.Field)
		}
		return v, nil

	case *ir.Conditional:
		c, err := evalNode(g, node.Cond, bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		if c.Bool {
			return evalNode(g, node.Then, bindings)
		}
		return evalNode(g, node.Else, bindings)

	case *ir.ListLiteral:
		out := make([]LambdaValue, 0, len(node.Elements))
		for _, eid := range node.Elements {
			v, err := evalNode(g, eid, bindings)
			if err != nil {
				return LambdaValue{}, err
			}
			out = append(out, v)
		}
		return LambdaValue{Kind: LVList, List: out}, nil

	case *ir.ModuleCall:
		fn, ok := lambdaWhitelistedModules[node.Signature.Name]
		if !ok || len(node.Args) != 2 {
			return LambdaValue{}, fmt.Errorf("lambda interpreter: unsupported module call %q", node.Signature.Name)
		}
		a, err := evalNode(g, node.Args[0], bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		b, err := evalNode(g, node.Args[1], bindings)
		if err != nil {
			return LambdaValue{}, err
		}
		return fn(a, b)
	}
	return LambdaValue{}, fmt.Errorf("lambda interpreter: unsupported node kind %T", n)
}

func evalCompare(op ast.CompareOp, l, r LambdaValue) (LambdaValue, error) {
	var result bool
	switch {
	case l.Kind == LVInt && r.Kind == LVInt:
		result = compareFloat(op, float64(l.Int), float64(r.Int))
	case (l.Kind == LVInt || l.Kind == LVFloat) && (r.Kind == LVInt || r.Kind == LVFloat):
		result = compareFloat(op, asFloat(l), asFloat(r))
	case l.Kind == LVStr && r.Kind == LVStr:
		result = compareEq(op, l.Str == r.Str)
	case l.Kind == LVBool && r.Kind == LVBool:
		result = compareEq(op, l.Bool == r.Bool)
	default:
		return LambdaValue{}, fmt.Errorf("lambda interpreter: incomparable operand kinds %d, %d", l.Kind, r.Kind)
	}
	return LambdaValue{Kind: LVBool, Bool: result}, nil
}

func compareEq(op ast.CompareOp, eq bool) bool {
	if op == ast.CmpNeq {
		return !eq
	}
	return eq
}

func compareFloat(op ast.CompareOp, l, r float64) bool {
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
