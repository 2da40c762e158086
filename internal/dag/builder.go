package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vledicfranco/constellation-compiler/internal/ir"
	"github.com/vledicfranco/constellation-compiler/internal/options"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// matchBinding records how one match-case Input node (synthesized by
// internal/ir for a pattern binding) derives its value from the
// enclosing Match's scrutinee.
type matchBinding struct {
	scrutineeID string
	field       string // "" for a type-test pattern's whole-value binding
}

// Result is everything Build produces for one compiled pipeline.
type Result struct {
	Spec             *DagSpec
	ModuleOptions    map[string]*ir.ModuleCallOptions // module_id -> non-empty options
	SyntheticModules map[string]UninitializedModule   // branch modules, keyed by module_id
}

// Build walks p (already optimized) in topological order and produces a
// DagSpec, wiring ModuleCall nodes against the supplied registered-module
// map (spec.md §4.7). dagName prefixes every module's runtime name.
func Build(p *ir.Pipeline, dagName string, modules map[string]UninitializedModule) (*Result, error) {
	b := &builder{
		pipeline:         p,
		dagName:          dagName,
		modules:          modules,
		dataNodes:        map[string]*DataNodeSpec{},
		moduleNodes:      map[string]*ModuleNodeSpec{},
		nodeOutputs:      map[string]string{},
		moduleOptions:    map[string]*ir.ModuleCallOptions{},
		syntheticModules: map[string]UninitializedModule{},
		matchBindings:    map[string]matchBinding{},
	}
	b.collectMatchBindings()

	for _, id := range p.TopologicalOrder() {
		if err := b.visit(id, p.Nodes[id]); err != nil {
			return nil, err
		}
	}

	outputBindings := map[string]string{}
	for name, id := range p.OutputBindings {
		dataID, ok := b.nodeOutputs[id]
		if !ok {
			return nil, fmt.Errorf("dag: output %q resolves to unbuilt node %s", name, id)
		}
		outputBindings[name] = dataID
	}

	spec := &DagSpec{
		Name:           dagName,
		DataNodes:      b.dataNodes,
		ModuleNodes:    b.moduleNodes,
		InEdges:        b.inEdges,
		OutEdges:       b.outEdges,
		Outputs:        p.Outputs,
		OutputBindings: outputBindings,
	}
	return &Result{Spec: spec, ModuleOptions: b.moduleOptions, SyntheticModules: b.syntheticModules}, nil
}

type builder struct {
	pipeline *ir.Pipeline
	dagName  string
	modules  map[string]UninitializedModule

	dataNodes   map[string]*DataNodeSpec
	moduleNodes map[string]*ModuleNodeSpec
	inEdges     []Edge
	outEdges    []Edge

	// nodeOutputs maps an IR node ID to the data node ID that carries its
	// value. The data node reuses the IR ID for every node kind, ModuleCall
	// included, since an IR node's identity already denotes "the value
	// produced here"; a ModuleCall's module node takes the derived ID
	// `<id>.module` and a Branch's synthetic module `<id>.branch`.
	nodeOutputs map[string]string

	moduleOptions    map[string]*ir.ModuleCallOptions
	syntheticModules map[string]UninitializedModule

	matchBindings map[string]matchBinding
}

func (b *builder) collectMatchBindings() {
	for _, n := range b.pipeline.Nodes {
		m, ok := n.(*ir.Match)
		if !ok {
			continue
		}
		for _, c := range m.Cases {
			switch c.Pattern.Kind {
			case ir.PatternRecord:
				for _, field := range c.Pattern.Fields {
					if bindingID, ok := c.Bindings[field]; ok {
						b.matchBindings[bindingID] = matchBinding{scrutineeID: m.Scrutinee, field: field}
					}
				}
			case ir.PatternTypeTest:
				if bindingID, ok := c.Bindings[c.Pattern.Binding]; ok {
					b.matchBindings[bindingID] = matchBinding{scrutineeID: m.Scrutinee, field: ""}
				}
			}
		}
	}
}

func (b *builder) dataOf(irID string) string {
	id, ok := b.nodeOutputs[irID]
	if !ok {
		// Topological order guarantees producers are visited first; a
		// miss here means the IR graph itself is malformed.
		panic(fmt.Sprintf("dag: producer %s not yet built", irID))
	}
	return id
}

func (b *builder) newDataNode(id, name string, t semtype.Type, transform Transform, inputs map[string]string) {
	b.dataNodes[id] = &DataNodeSpec{
		ID: id, Name: name, Type: t,
		Nicknames:       map[string]string{},
		InlineTransform: transform,
		TransformInputs: inputs,
	}
	b.nodeOutputs[id] = id
}

func (b *builder) visit(id string, n ir.Node) error {
	switch node := n.(type) {
	case *ir.Input:
		if mb, ok := b.matchBindings[id]; ok {
			b.newDataNode(id, id, node.OutputType(), MatchBindTransform{Field: mb.field, SourceType: b.dataNodes[b.dataOf(mb.scrutineeID)].Type}, map[string]string{"scrutinee": b.dataOf(mb.scrutineeID)})
			return nil
		}
		b.dataNodes[id] = &DataNodeSpec{ID: id, Name: node.Name, Type: node.OutputType(), Nicknames: map[string]string{}}
		b.nodeOutputs[id] = id

	case *ir.Literal:
		b.newDataNode(id, id, node.OutputType(), LiteralTransform{Value: node}, nil)

	case *ir.ModuleCall:
		return b.visitModuleCall(id, node)

	case *ir.Merge:
		b.newDataNode(id, id, node.OutputType(), MergeTransform{}, map[string]string{"left": b.dataOf(node.Left), "right": b.dataOf(node.Right)})

	case *ir.Projection:
		b.newDataNode(id, id, node.OutputType(), ProjectTransform{Fields: node.Fields}, map[string]string{"source": b.dataOf(node.Source)})

	case *ir.FieldAccess:
		b.newDataNode(id, id, node.OutputType(), FieldAccessTransform{Field: node.Field}, map[string]string{"source": b.dataOf(node.Source)})

	case *ir.Conditional:
		b.newDataNode(id, id, node.OutputType(), ConditionalTransform{}, map[string]string{
			"cond": b.dataOf(node.Cond), "then": b.dataOf(node.Then), "else": b.dataOf(node.Else),
		})

	case *ir.BoolBinary:
		b.newDataNode(id, id, node.OutputType(), boolOpTransform(node.Op), map[string]string{"left": b.dataOf(node.Left), "right": b.dataOf(node.Right)})

	case *ir.Not:
		b.newDataNode(id, id, node.OutputType(), NotTransform{}, map[string]string{"operand": b.dataOf(node.Operand)})

	case *ir.Compare:
		b.newDataNode(id, id, node.OutputType(), CompareTransform{Op: node.Op}, map[string]string{"left": b.dataOf(node.Left), "right": b.dataOf(node.Right)})

	case *ir.Guard:
		b.newDataNode(id, id, node.OutputType(), GuardTransform{}, map[string]string{"expr": b.dataOf(node.Expr), "condition": b.dataOf(node.Condition)})

	case *ir.Coalesce:
		b.newDataNode(id, id, node.OutputType(), CoalesceTransform{}, map[string]string{"left": b.dataOf(node.Left), "right": b.dataOf(node.Right)})

	case *ir.StringInterpolation:
		inputs := map[string]string{}
		for i, e := range node.Exprs {
			inputs[fmt.Sprintf("e%d", i)] = b.dataOf(e)
		}
		b.newDataNode(id, id, node.OutputType(), StringInterpolationTransform{Parts: node.Parts}, inputs)

	case *ir.ListLiteral:
		inputs := map[string]string{}
		for i, e := range node.Elements {
			inputs[fmt.Sprintf("e%d", i)] = b.dataOf(e)
		}
		b.newDataNode(id, id, node.OutputType(), ListLiteralTransform{Size: len(node.Elements)}, inputs)

	case *ir.RecordLiteral:
		inputs := map[string]string{}
		for _, name := range node.Names {
			inputs[name] = b.dataOf(node.Fields[name])
		}
		b.newDataNode(id, id, node.OutputType(), RecordBuildTransform{FieldNames: node.Names}, inputs)

	case *ir.Branch:
		return b.visitBranch(id, node)

	case *ir.Match:
		return b.visitMatch(id, node)

	case *ir.HigherOrder:
		return b.visitHigherOrder(id, node)

	default:
		return fmt.Errorf("dag: unsupported IR node kind %T", n)
	}
	return nil
}

func (b *builder) visitModuleCall(id string, node *ir.ModuleCall) error {
	umod, ok := b.modules[node.ModuleName]
	if !ok {
		return fmt.Errorf("dag: no registered module implementation for %q", node.ModuleName)
	}
	moduleID := id + ".module"
	consumes := make(map[string]semtype.Type, len(umod.Consumes))
	for k, v := range umod.Consumes {
		consumes[k] = v
	}
	produces := make(map[string]semtype.Type, len(umod.Produces))
	for k, v := range umod.Produces {
		produces[k] = v
	}
	b.moduleNodes[moduleID] = &ModuleNodeSpec{
		ID: moduleID, Name: b.dagName + "." + node.ModuleName,
		Consumes: consumes, Produces: produces,
	}

	for i, argID := range node.Args {
		if i >= len(node.Signature.Params) {
			return fmt.Errorf("dag: module call %q has more args than its signature declares params", node.ModuleName)
		}
		paramName := node.Signature.Params[i].Name
		dataID := b.dataOf(argID)
		b.inEdges = append(b.inEdges, Edge{DataID: dataID, ModuleID: moduleID})
		b.dataNodes[dataID].Nicknames[moduleID] = paramName
	}

	outputID := id
	b.dataNodes[outputID] = &DataNodeSpec{
		ID: outputID, Name: outputID, Type: node.OutputType(),
		Nicknames: map[string]string{moduleID: umod.OutputField},
	}
	b.outEdges = append(b.outEdges, Edge{ModuleID: moduleID, DataID: outputID})
	b.nodeOutputs[id] = outputID

	var fallbackDataID string
	if node.FallbackID != "" {
		fallbackDataID = b.dataOf(node.FallbackID)
	}
	opts, err := options.Normalize(node.Options, fallbackDataID)
	if err != nil {
		return fmt.Errorf("dag: module %q: %w", node.ModuleName, err)
	}
	if !opts.IsEmpty() {
		b.moduleOptions[moduleID] = opts
	}
	return nil
}

// visitBranch emits a synthetic module: {dagName}.branch-{short id}
// consuming cond0/expr0/cond1/expr1/.../otherwise and producing out
// (spec.md §4.7). The implementation is left uninitialized for the
// runtime, same as an externally registered module.
func (b *builder) visitBranch(id string, node *ir.Branch) error {
	moduleID := id + ".branch"
	shortID := id
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	name := b.dagName + ".branch-" + shortID

	consumes := map[string]semtype.Type{}
	for i, c := range node.Cases {
		consumes[fmt.Sprintf("cond%d", i)] = semtype.SBoolean{}
		consumes[fmt.Sprintf("expr%d", i)] = b.dataNodes[b.dataOf(c.Body)].Type
	}
	consumes["otherwise"] = b.dataNodes[b.dataOf(node.Otherwise)].Type
	produces := map[string]semtype.Type{"out": node.OutputType()}

	b.moduleNodes[moduleID] = &ModuleNodeSpec{ID: moduleID, Name: name, Consumes: consumes, Produces: produces}
	b.syntheticModules[moduleID] = UninitializedModule{Name: name, Consumes: consumes, Produces: produces, OutputField: "out"}

	for i, c := range node.Cases {
		condData := b.dataOf(c.Cond)
		exprData := b.dataOf(c.Body)
		b.inEdges = append(b.inEdges, Edge{DataID: condData, ModuleID: moduleID})
		b.dataNodes[condData].Nicknames[moduleID] = fmt.Sprintf("cond%d", i)
		b.inEdges = append(b.inEdges, Edge{DataID: exprData, ModuleID: moduleID})
		b.dataNodes[exprData].Nicknames[moduleID] = fmt.Sprintf("expr%d", i)
	}
	otherwiseData := b.dataOf(node.Otherwise)
	b.inEdges = append(b.inEdges, Edge{DataID: otherwiseData, ModuleID: moduleID})
	b.dataNodes[otherwiseData].Nicknames[moduleID] = "otherwise"

	outputID := id
	b.dataNodes[outputID] = &DataNodeSpec{ID: outputID, Name: outputID, Type: node.OutputType(), Nicknames: map[string]string{moduleID: "out"}}
	b.outEdges = append(b.outEdges, Edge{ModuleID: moduleID, DataID: outputID})
	b.nodeOutputs[id] = outputID
	return nil
}

func (b *builder) visitMatch(id string, node *ir.Match) error {
	scrutineeData := b.dataOf(node.Scrutinee)
	scrutineeType := b.dataNodes[scrutineeData].Type

	matchers := make([]PatternMatcher, len(node.Cases))
	bodies := make([]string, len(node.Cases))
	inputs := map[string]string{"scrutinee": scrutineeData}
	for i, c := range node.Cases {
		matchers[i] = PatternMatcher{Kind: c.Pattern.Kind, Fields: c.Pattern.Fields, Binding: c.Pattern.Binding, Type: c.Pattern.Type}
		bodyData := b.dataOf(c.Body)
		bodies[i] = bodyData
		inputs[fmt.Sprintf("body%d", i)] = bodyData
	}

	b.newDataNode(id, id, node.OutputType(), MatchTransform{ScrutineeType: scrutineeType, Matchers: matchers, Bodies: bodies}, inputs)
	return nil
}

// visitHigherOrder validates the lambda body against the fixed permitted
// node-kind set and emits Filter/Map/All/Any; SortBy is rejected
// (spec.md §4.7).
func (b *builder) visitHigherOrder(id string, node *ir.HigherOrder) error {
	if err := ValidateLambda(node.Lambda); err != nil {
		return fmt.Errorf("dag: %s: %w", node.Operation, err)
	}

	inputs := map[string]string{"source": b.dataOf(node.Source)}
	capturedNames := make([]string, 0, len(node.Lambda.CapturedInputs))
	for name := range node.Lambda.CapturedInputs {
		capturedNames = append(capturedNames, name)
	}
	sort.Strings(capturedNames)
	for _, name := range capturedNames {
		inputs["captured."+name] = b.dataOf(node.Lambda.CapturedInputs[name])
	}

	var transform Transform
	switch strings.ToLower(node.Operation) {
	case "filter":
		transform = FilterTransform{Lambda: node.Lambda}
	case "map":
		transform = MapTransform{Lambda: node.Lambda}
	case "all":
		transform = AllTransform{Lambda: node.Lambda}
	case "any":
		transform = AnyTransform{Lambda: node.Lambda}
	case "sortby":
		return fmt.Errorf("dag: SortBy is not a supported higher-order operation")
	default:
		return fmt.Errorf("dag: unknown higher-order operation %q", node.Operation)
	}
	b.newDataNode(id, id, node.OutputType(), transform, inputs)
	return nil
}
