package ir

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
	"github.com/vledicfranco/constellation-compiler/internal/typedast"
)

// bugf signals an internal inconsistency that a correct type checker
// should have prevented; Build recovers it into a returned error rather
// than letting later phases run on a broken graph (spec.md §7: IR-build
// fails fast, unlike parse/typecheck's error accumulation).
type bugf struct{ msg string }

func (b bugf) Error() string { return b.msg }

func fail(format string, args ...interface{}) {
	panic(bugf{msg: fmt.Sprintf(format, args...)})
}

func newID() string { return uuid.NewString() }

// context is one IR graph under construction: the top-level pipeline
// graph, or a lambda's private sub-graph (which chains to its
// enclosing context for free-variable capture).
type context struct {
	nodes    map[string]Node
	bindings map[string]string
	parent   *context
	captured map[string]string // populated only for lambda sub-contexts
}

func newContext(parent *context) *context {
	return &context{nodes: map[string]Node{}, bindings: map[string]string{}, parent: parent}
}

func (c *context) add(n Node) string {
	c.nodes[n.ID()] = n
	return n.ID()
}

// resolve looks up a variable by name, searching outward through
// enclosing lambda contexts. When found in an ancestor, it synthesizes
// a local Input node capturing that free variable (spec.md §4.5) and
// memoizes it so repeated references inside the same lambda share one
// node.
func (c *context) resolve(name string) string {
	if id, ok := c.bindings[name]; ok {
		return id
	}
	if c.parent == nil {
		fail("ir: unresolved variable %q (typecheck should have caught this)", name)
	}
	outerID := c.parent.resolve(name)
	outerType := c.parent.nodes[outerID].OutputType()
	id := newID()
	c.add(&Input{base: base{IDVal: id, TypeVal: outerType}, Name: name})
	c.bindings[name] = id
	if c.captured == nil {
		c.captured = map[string]string{}
	}
	c.captured[name] = outerID
	return id
}

// Build walks a type-checked pipeline into an IR graph.
func Build(tp *typedast.TypedPipeline) (pipeline *Pipeline, err error) {
	defer func() {
		if r := recover(); r != nil {
			if b, ok := r.(bugf); ok {
				err = b
				return
			}
			panic(r)
		}
	}()

	root := newContext(nil)
	for _, decl := range tp.Declarations {
		switch d := decl.(type) {
		case *typedast.TInputDecl:
			id := newID()
			root.add(&Input{base: base{IDVal: id, TypeVal: d.Type}, Name: d.Name})
			root.bindings[d.Name] = id
		case *typedast.TAssignment:
			id := buildExpr(root, d.Value)
			root.bindings[d.Name] = id
		default:
			// TypeDef, OutputDecl, UseDecl contribute no IR nodes.
		}
	}

	var inputs []string
	for id, n := range root.nodes {
		if _, ok := n.(*Input); ok {
			inputs = append(inputs, id)
		}
	}

	outputBindings := map[string]string{}
	for _, name := range tp.Outputs {
		id, ok := root.bindings[name]
		if !ok {
			return nil, fmt.Errorf("ir: unresolved output %q", name)
		}
		outputBindings[name] = id
	}

	return &Pipeline{
		Nodes:          root.nodes,
		Inputs:         inputs,
		Outputs:        tp.Outputs,
		Bindings:       root.bindings,
		OutputBindings: outputBindings,
	}, nil
}

func buildExpr(ctx *context, e typedast.TypedExpression) string {
	switch ex := e.(type) {
	case *typedast.TVarRef:
		return ctx.resolve(ex.Name)

	case *typedast.TLiteral:
		id := newID()
		return ctx.add(&Literal{
			base: base{IDVal: id, TypeVal: ex.Type()},
			Kind: ex.Kind, Str: ex.Str, Int: ex.Int, Float: ex.Float, Bool: ex.Bool,
		})

	case *typedast.TFunctionCall:
		return buildFunctionCall(ctx, ex)

	case *typedast.TMerge:
		l, r := buildExpr(ctx, ex.Left), buildExpr(ctx, ex.Right)
		id := newID()
		return ctx.add(&Merge{base: base{IDVal: id, TypeVal: ex.Type()}, Left: l, Right: r})

	case *typedast.TProjection:
		s := buildExpr(ctx, ex.Source)
		id := newID()
		return ctx.add(&Projection{base: base{IDVal: id, TypeVal: ex.Type()}, Source: s, Fields: ex.Fields})

	case *typedast.TFieldAccess:
		s := buildExpr(ctx, ex.Source)
		id := newID()
		return ctx.add(&FieldAccess{base: base{IDVal: id, TypeVal: ex.Type()}, Source: s, Field: ex.Field})

	case *typedast.TConditional:
		cond, then, els := buildExpr(ctx, ex.Cond), buildExpr(ctx, ex.Then), buildExpr(ctx, ex.Else)
		id := newID()
		return ctx.add(&Conditional{base: base{IDVal: id, TypeVal: ex.Type()}, Cond: cond, Then: then, Else: els})

	case *typedast.TBoolBinary:
		l, r := buildExpr(ctx, ex.Left), buildExpr(ctx, ex.Right)
		id := newID()
		return ctx.add(&BoolBinary{base: base{IDVal: id, TypeVal: ex.Type()}, Op: ex.Op, Left: l, Right: r})

	case *typedast.TNot:
		operand := buildExpr(ctx, ex.Operand)
		id := newID()
		return ctx.add(&Not{base: base{IDVal: id, TypeVal: ex.Type()}, Operand: operand})

	case *typedast.TCompare:
		l, r := buildExpr(ctx, ex.Left), buildExpr(ctx, ex.Right)
		id := newID()
		return ctx.add(&Compare{base: base{IDVal: id, TypeVal: ex.Type()}, Op: ex.Op, Left: l, Right: r})

	case *typedast.TGuard:
		expr, cond := buildExpr(ctx, ex.Expr), buildExpr(ctx, ex.Condition)
		id := newID()
		return ctx.add(&Guard{base: base{IDVal: id, TypeVal: ex.Type()}, Expr: expr, Condition: cond})

	case *typedast.TCoalesce:
		l, r := buildExpr(ctx, ex.Left), buildExpr(ctx, ex.Right)
		id := newID()
		return ctx.add(&Coalesce{base: base{IDVal: id, TypeVal: ex.Type()}, Left: l, Right: r})

	case *typedast.TBranch:
		cases := make([]BranchCase, len(ex.Cases))
		for i, c := range ex.Cases {
			cases[i] = BranchCase{Cond: buildExpr(ctx, c.Cond), Body: buildExpr(ctx, c.Body)}
		}
		otherwise := buildExpr(ctx, ex.Otherwise)
		id := newID()
		return ctx.add(&Branch{base: base{IDVal: id, TypeVal: ex.Type()}, Cases: cases, Otherwise: otherwise})

	case *typedast.TStringInterpolation:
		exprs := make([]string, len(ex.Exprs))
		for i, e := range ex.Exprs {
			exprs[i] = buildExpr(ctx, e)
		}
		id := newID()
		return ctx.add(&StringInterpolation{base: base{IDVal: id, TypeVal: ex.Type()}, Parts: ex.Parts, Exprs: exprs})

	case *typedast.TListLiteral:
		elems := make([]string, len(ex.Elements))
		for i, e := range ex.Elements {
			elems[i] = buildExpr(ctx, e)
		}
		id := newID()
		return ctx.add(&ListLiteral{base: base{IDVal: id, TypeVal: ex.Type()}, Elements: elems})

	case *typedast.TRecordLiteral:
		fields := map[string]string{}
		for _, name := range ex.Names {
			fields[name] = buildExpr(ctx, ex.Fields[name])
		}
		id := newID()
		return ctx.add(&RecordLiteral{base: base{IDVal: id, TypeVal: ex.Type()}, Names: ex.Names, Fields: fields})

	case *typedast.TMatch:
		return buildMatch(ctx, ex)

	case *typedast.TLambda:
		fail("ir: a TLambda reached buildExpr outside a higher-order call context")
	}
	fail("ir: unsupported typed expression %T", e)
	return ""
}

func buildFunctionCall(ctx *context, ex *typedast.TFunctionCall) string {
	if registry.IsHigherOrder(ex.Signature) {
		return buildHigherOrder(ctx, ex)
	}

	args := make([]string, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = buildExpr(ctx, a)
	}
	var fallbackID string
	if ex.TypedFallback != nil {
		fallbackID = buildExpr(ctx, ex.TypedFallback)
	}
	id := newID()
	return ctx.add(&ModuleCall{
		base:       base{IDVal: id, TypeVal: ex.Type()},
		ModuleName: ex.Signature.ModuleName,
		Signature:  ex.Signature,
		Args:       args,
		Options:    ex.Options,
		FallbackID: fallbackID,
	})
}

func buildHigherOrder(ctx *context, ex *typedast.TFunctionCall) string {
	var lambda *typedast.TLambda
	var sourceArg typedast.TypedExpression
	for _, a := range ex.Args {
		if l, ok := a.(*typedast.TLambda); ok {
			lambda = l
			continue
		}
		if sourceArg == nil {
			sourceArg = a
		}
	}
	if lambda == nil {
		fail("ir: higher-order call %q has no lambda argument", ex.Signature.QualifiedName())
	}
	source := buildExpr(ctx, sourceArg)

	lctx := newContext(ctx)
	paramIDs := make([]string, len(lambda.Params))
	for i, p := range lambda.Params {
		var pt semtype.Type = semtype.SNothing{}
		if i < len(lambda.ParamTypes) {
			pt = lambda.ParamTypes[i]
		}
		id := newID()
		lctx.add(&Input{base: base{IDVal: id, TypeVal: pt}, Name: p})
		lctx.bindings[p] = id
		paramIDs[i] = id
	}
	body := buildExpr(lctx, lambda.Body)

	lg := &LambdaGraph{
		Nodes:          lctx.nodes,
		ParamNames:     lambda.Params,
		ParamIDs:       paramIDs,
		Body:           body,
		CapturedInputs: lctx.captured,
	}

	id := newID()
	return ctx.add(&HigherOrder{
		base:      base{IDVal: id, TypeVal: ex.Type()},
		Operation: ex.Signature.Name,
		Source:    source,
		Lambda:    lg,
	})
}

func buildMatch(ctx *context, ex *typedast.TMatch) string {
	scrutinee := buildExpr(ctx, ex.Scrutinee)
	cases := make([]MatchCase, len(ex.Cases))
	for i, c := range ex.Cases {
		pattern, bindingTypes := irPattern(c.Pattern)
		bindings := map[string]string{}

		var shadowed map[string](*string)
		for name, t := range bindingTypes {
			id := newID()
			ctx.add(&Input{base: base{IDVal: id, TypeVal: t}, Name: name, DependsOn: scrutinee})
			bindings[name] = id
			if prev, existed := ctx.bindings[name]; existed {
				if shadowed == nil {
					shadowed = map[string]*string{}
				}
				p := prev
				shadowed[name] = &p
			}
			ctx.bindings[name] = id
		}

		body := buildExpr(ctx, c.Body)

		for name := range bindingTypes {
			if prev, ok := shadowed[name]; ok {
				ctx.bindings[name] = *prev
			} else {
				delete(ctx.bindings, name)
			}
		}

		cases[i] = MatchCase{Pattern: pattern, Bindings: bindings, Body: body}
	}
	id := newID()
	return ctx.add(&Match{base: base{IDVal: id, TypeVal: ex.Type()}, Scrutinee: scrutinee, Cases: cases})
}

func irPattern(p typedast.TPattern) (MatchPattern, map[string]semtype.Type) {
	switch pat := p.(type) {
	case *typedast.TRecordPattern:
		return MatchPattern{Kind: PatternRecord, Fields: pat.Fields}, pat.BindingTypes
	case *typedast.TTypeTestPattern:
		return MatchPattern{Kind: PatternTypeTest, Binding: pat.Binding, Type: pat.Type_}, pat.Bindings()
	default:
		return MatchPattern{Kind: PatternWildcard}, nil
	}
}
