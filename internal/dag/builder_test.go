package dag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// buildScenarioA mirrors spec.md §8 scenario A: a single TestModule call
// with retry/timeout/cache options.
func buildScenarioA() (*ir.Pipeline, map[string]UninitializedModule) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}

	x := &ir.Input{Name: "x"}
	setIRID(x, "x")
	x.TypeVal = semtype.SInt{}
	p.Nodes["x"] = x
	p.Inputs = []string{"x"}

	call := &ir.ModuleCall{
		ModuleName: "TestModule",
		Signature: registry.Signature{
			Name: "TestModule", ModuleName: "TestModule",
			Params:  []registry.Param{{Name: "x", Type: semtype.SInt{}}},
			Returns: semtype.SInt{},
		},
		Args: []string{"x"},
		Options: []ast.Option{
			{Name: "retry", Value: &ast.Literal{Kind: ast.LitInt, Int: 3}},
			{Name: "timeout", Value: &ast.Literal{Kind: ast.LitDuration, Str: "30s"}},
			{Name: "cache", Value: &ast.Literal{Kind: ast.LitDuration, Str: "5min"}},
		},
	}
	setIRID(call, "result")
	call.TypeVal = semtype.SInt{}
	p.Nodes["result"] = call
	p.Bindings["result"] = "result"
	p.OutputBindings["result"] = "result"

	modules := map[string]UninitializedModule{
		"TestModule": {
			Name:        "TestModule",
			Consumes:    map[string]semtype.Type{"x": semtype.SInt{}},
			Produces:    map[string]semtype.Type{"result": semtype.SInt{}},
			OutputField: "result",
		},
	}
	return p, modules
}

func setIRID(n ir.Node, id string) {
	switch v := n.(type) {
	case *ir.Input:
		v.IDVal = id
	case *ir.ModuleCall:
		v.IDVal = id
	case *ir.Merge:
		v.IDVal = id
	case *ir.Projection:
		v.IDVal = id
	case *ir.Match:
		v.IDVal = id
	case *ir.Literal:
		v.IDVal = id
	}
}

func TestBuildScenarioAWiresModuleAndOptions(t *testing.T) {
	p, modules := buildScenarioA()
	res, err := Build(p, "test", modules)
	require.NoError(t, err)
	require.Len(t, res.Spec.ModuleNodes, 1)

	var mod *ModuleNodeSpec
	var moduleID string
	for id, m := range res.Spec.ModuleNodes {
		mod, moduleID = m, id
	}
	assert.Equal(t, "test.TestModule", mod.Name)

	opts, ok := res.ModuleOptions[moduleID]
	require.True(t, ok, "expected options recorded for module %s", moduleID)
	require.NotNil(t, opts.Retry)
	assert.Equal(t, 3, *opts.Retry)
	require.NotNil(t, opts.TimeoutMs)
	assert.Equal(t, int64(30000), *opts.TimeoutMs)
	require.NotNil(t, opts.CacheMs)
	assert.Equal(t, int64(300000), *opts.CacheMs)

	_, ok = res.Spec.OutputBindings["result"]
	assert.True(t, ok, "expected output binding for result")
}

func TestBuildScenarioDChainsInlineTransforms(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	userType := &semtype.SRecord{Names: []string{"id", "name"}, Fields: map[string]semtype.Type{"id": semtype.SInt{}, "name": semtype.SString{}}}
	extraType := &semtype.SRecord{Names: []string{"email"}, Fields: map[string]semtype.Type{"email": semtype.SString{}}}

	user := &ir.Input{Name: "user"}
	setIRID(user, "user")
	user.TypeVal = userType
	p.Nodes["user"] = user

	extra := &ir.Input{Name: "extra"}
	setIRID(extra, "extra")
	extra.TypeVal = extraType
	p.Nodes["extra"] = extra

	full := &ir.Merge{Left: "user", Right: "extra"}
	setIRID(full, "full")
	full.TypeVal = &semtype.SRecord{Names: []string{"id", "name", "email"}, Fields: map[string]semtype.Type{"id": semtype.SInt{}, "name": semtype.SString{}, "email": semtype.SString{}}}
	p.Nodes["full"] = full

	picked := &ir.Projection{Source: "full", Fields: []string{"id", "email"}}
	setIRID(picked, "picked")
	picked.TypeVal = &semtype.SRecord{Names: []string{"id", "email"}, Fields: map[string]semtype.Type{"id": semtype.SInt{}, "email": semtype.SString{}}}
	p.Nodes["picked"] = picked

	p.Inputs = []string{"user", "extra"}
	p.OutputBindings["picked"] = "picked"

	res, err := Build(p, "test", nil)
	require.NoError(t, err)

	fullNode := res.Spec.DataNodes["full"]
	assert.IsType(t, MergeTransform{}, fullNode.InlineTransform)

	pickedNode := res.Spec.DataNodes["picked"]
	proj, ok := pickedNode.InlineTransform.(ProjectTransform)
	require.True(t, ok, "expected picked to carry a ProjectTransform, got %T", pickedNode.InlineTransform)
	if diff := cmp.Diff([]string{"id", "email"}, proj.Fields); diff != "" {
		t.Errorf("projected fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildScenarioEMatchProducesInlineTransform(t *testing.T) {
	p := &ir.Pipeline{Nodes: map[string]ir.Node{}, Bindings: map[string]string{}, OutputBindings: map[string]string{}}
	rType := &semtype.SRecord{Names: []string{"kind", "value"}, Fields: map[string]semtype.Type{"kind": semtype.SString{}, "value": semtype.SInt{}}}

	r := &ir.Input{Name: "r"}
	setIRID(r, "r")
	r.TypeVal = rType
	p.Nodes["r"] = r

	valueBinding := &ir.Input{Name: "value", DependsOn: "r"}
	setIRID(valueBinding, "valueBinding")
	valueBinding.TypeVal = semtype.SInt{}
	p.Nodes["valueBinding"] = valueBinding

	zero := &ir.Literal{Kind: ast.LitInt, Int: 0}
	setIRID(zero, "zero")
	zero.TypeVal = semtype.SInt{}
	p.Nodes["zero"] = zero

	match := &ir.Match{
		Scrutinee: "r",
		Cases: []ir.MatchCase{
			{
				Pattern:  ir.MatchPattern{Kind: ir.PatternRecord, Fields: []string{"value"}},
				Bindings: map[string]string{"value": "valueBinding"},
				Body:     "valueBinding",
			},
			{Pattern: ir.MatchPattern{Kind: ir.PatternWildcard}, Body: "zero"},
		},
	}
	setIRID(match, "x")
	match.TypeVal = semtype.SInt{}
	p.Nodes["x"] = match

	p.Inputs = []string{"r"}
	p.OutputBindings["x"] = "x"

	res, err := Build(p, "test", nil)
	require.NoError(t, err)

	node := res.Spec.DataNodes["x"]
	mt, ok := node.InlineTransform.(MatchTransform)
	require.True(t, ok, "expected x to carry a MatchTransform, got %T", node.InlineTransform)
	assert.Len(t, mt.Matchers, 2)

	bindingNode := res.Spec.DataNodes["valueBinding"]
	assert.IsType(t, MatchBindTransform{}, bindingNode.InlineTransform)
}
