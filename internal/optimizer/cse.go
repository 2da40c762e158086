package optimizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
)

type csePass struct{}

func (csePass) Name() string { return "cse" }

// Run computes a canonical content key per node (variant tag + producer
// IDs + payload fields) and merges nodes sharing a key by rewriting
// every reference to the later node's ID into the earlier one's, then
// dropping the later node (spec.md §4.6).
func (csePass) Run(p *ir.Pipeline) bool {
	order := make([]string, 0, len(p.Nodes))
	for id := range p.Nodes {
		order = append(order, id)
	}
	sort.Strings(order)

	firstByKey := map[string]string{}
	rewrite := map[string]string{}
	for _, id := range order {
		key := contentKey(p.Nodes[id])
		if canonical, ok := firstByKey[key]; ok {
			rewrite[id] = canonical
		} else {
			firstByKey[key] = id
		}
	}
	if len(rewrite) == 0 {
		return false
	}

	for id := range rewrite {
		delete(p.Nodes, id)
	}
	for _, n := range p.Nodes {
		remapProducers(n, rewrite)
	}
	for name, id := range p.Bindings {
		if canonical, ok := rewrite[id]; ok {
			p.Bindings[name] = canonical
		}
	}
	for name, id := range p.OutputBindings {
		if canonical, ok := rewrite[id]; ok {
			p.OutputBindings[name] = canonical
		}
	}
	inputs := p.Inputs[:0:0]
	for _, id := range p.Inputs {
		if _, dropped := rewrite[id]; !dropped {
			inputs = append(inputs, id)
		}
	}
	p.Inputs = inputs

	return true
}

func contentKey(n ir.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%T|", n)
	switch node := n.(type) {
	case *ir.Input:
		fmt.Fprintf(&sb, "name=%s|dependsOn=%s", node.Name, node.DependsOn)
	case *ir.Literal:
		fmt.Fprintf(&sb, "kind=%d|str=%s|int=%d|float=%g|bool=%t|%s", node.Kind, node.Str, node.Int, node.Float, node.Bool, literalKey(node))
	case *ir.ModuleCall:
		fmt.Fprintf(&sb, "module=%s|args=%s|options=%d", node.ModuleName, strings.Join(node.Args, ","), len(node.Options))
	case *ir.Merge:
		fmt.Fprintf(&sb, "%s,%s", node.Left, node.Right)
	case *ir.Projection:
		fmt.Fprintf(&sb, "%s|%s", node.Source, strings.Join(node.Fields, ","))
	case *ir.FieldAccess:
		fmt.Fprintf(&sb, "%s.%s", node.Source, node.Field)
	case *ir.Conditional:
		fmt.Fprintf(&sb, "%s,%s,%s", node.Cond, node.Then, node.Else)
	case *ir.BoolBinary:
		fmt.Fprintf(&sb, "%d|%s,%s", node.Op, node.Left, node.Right)
	case *ir.Not:
		fmt.Fprintf(&sb, "%s", node.Operand)
	case *ir.Compare:
		fmt.Fprintf(&sb, "%d|%s,%s", node.Op, node.Left, node.Right)
	case *ir.Guard:
		fmt.Fprintf(&sb, "%s,%s", node.Expr, node.Condition)
	case *ir.Coalesce:
		fmt.Fprintf(&sb, "%s,%s", node.Left, node.Right)
	case *ir.StringInterpolation:
		fmt.Fprintf(&sb, "%s|%s", strings.Join(node.Parts, "\x00"), strings.Join(node.Exprs, ","))
	case *ir.ListLiteral:
		fmt.Fprintf(&sb, "%s", strings.Join(node.Elements, ","))
	case *ir.RecordLiteral:
		names := append([]string{}, node.Names...)
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "%s=%s,", name, node.Fields[name])
		}
	default:
		// Branch, Match, and HigherOrder are never merged: their
		// identity is not well captured by a flat content key and they
		// are rare enough that the lost CSE opportunity doesn't matter.
		fmt.Fprintf(&sb, "unique=%s", n.ID())
	}
	return sb.String()
}

// literalKey extends contentKey's Literal case to the composite case:
// a folded list/record Literal's value lives in List/Record, not in a
// producer ID, so two structurally equal composites must hash equal
// here for CSE to merge them.
func literalKey(l *ir.Literal) string {
	switch l.Kind {
	case ast.LitList:
		var sb strings.Builder
		for _, e := range l.List {
			fmt.Fprintf(&sb, "%d|%s|%d|%g|%t|%s,", e.Kind, e.Str, e.Int, e.Float, e.Bool, literalKey(e))
		}
		return sb.String()
	case ast.LitRecord:
		names := append([]string{}, l.RecordNames...)
		sort.Strings(names)
		var sb strings.Builder
		for _, name := range names {
			f := l.Record[name]
			fmt.Fprintf(&sb, "%s=%d|%s|%d|%g|%t|%s,", name, f.Kind, f.Str, f.Int, f.Float, f.Bool, literalKey(f))
		}
		return sb.String()
	}
	return ""
}

// remapProducers rewrites every producer-ID field on n that appears as
// a key in rewrite, in place.
func remapProducers(n ir.Node, rewrite map[string]string) {
	get := func(id string) string {
		if canonical, ok := rewrite[id]; ok {
			return canonical
		}
		return id
	}
	switch node := n.(type) {
	case *ir.Input:
		if node.DependsOn != "" {
			node.DependsOn = get(node.DependsOn)
		}
	case *ir.ModuleCall:
		for i, a := range node.Args {
			node.Args[i] = get(a)
		}
		if node.FallbackID != "" {
			node.FallbackID = get(node.FallbackID)
		}
	case *ir.Merge:
		node.Left, node.Right = get(node.Left), get(node.Right)
	case *ir.Projection:
		node.Source = get(node.Source)
	case *ir.FieldAccess:
		node.Source = get(node.Source)
	case *ir.Conditional:
		node.Cond, node.Then, node.Else = get(node.Cond), get(node.Then), get(node.Else)
	case *ir.BoolBinary:
		node.Left, node.Right = get(node.Left), get(node.Right)
	case *ir.Not:
		node.Operand = get(node.Operand)
	case *ir.Compare:
		node.Left, node.Right = get(node.Left), get(node.Right)
	case *ir.Guard:
		node.Expr, node.Condition = get(node.Expr), get(node.Condition)
	case *ir.Coalesce:
		node.Left, node.Right = get(node.Left), get(node.Right)
	case *ir.Branch:
		for i, c := range node.Cases {
			node.Cases[i] = ir.BranchCase{Cond: get(c.Cond), Body: get(c.Body)}
		}
		node.Otherwise = get(node.Otherwise)
	case *ir.StringInterpolation:
		for i, e := range node.Exprs {
			node.Exprs[i] = get(e)
		}
	case *ir.ListLiteral:
		for i, e := range node.Elements {
			node.Elements[i] = get(e)
		}
	case *ir.RecordLiteral:
		for name, id := range node.Fields {
			node.Fields[name] = get(id)
		}
	case *ir.Match:
		node.Scrutinee = get(node.Scrutinee)
		for i, c := range node.Cases {
			for name, id := range c.Bindings {
				node.Cases[i].Bindings[name] = get(id)
			}
			node.Cases[i].Body = get(c.Body)
		}
	case *ir.HigherOrder:
		node.Source = get(node.Source)
		for name, id := range node.Lambda.CapturedInputs {
			node.Lambda.CapturedInputs[name] = get(id)
		}
	}
}
