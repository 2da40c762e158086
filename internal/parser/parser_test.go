package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Pipeline {
	t.Helper()
	p := NewFromSource(src)
	pipeline, errs := p.Parse()
	require.Empty(t, errs, "unexpected parse errors")
	return pipeline
}

func TestParseScenarioA(t *testing.T) {
	src := `in x: Int
result = TestModule(x) with retry: 3, timeout: 30s, cache: 5min
out result`
	pipeline := mustParse(t, src)
	require.Len(t, pipeline.Declarations, 3)
	assign, ok := pipeline.Declarations[1].(*ast.Assignment)
	require.True(t, ok, "expected Assignment, got %T", pipeline.Declarations[1])
	call, ok := assign.Value.(*ast.FunctionCall)
	require.True(t, ok, "expected FunctionCall, got %T", assign.Value)
	assert.Equal(t, "TestModule", call.Name)
	assert.Len(t, call.Args, 1)
	assert.Len(t, call.Options, 3)
}

func TestParseRecordMergeAndProjection(t *testing.T) {
	src := `in user: { id: Int, name: String }
in extra: { email: String }
full = user + extra
picked = full[id, email]
out picked`
	pipeline := mustParse(t, src)
	picked := pipeline.Declarations[3].(*ast.Assignment)
	proj, ok := picked.Value.(*ast.Projection)
	require.True(t, ok, "expected Projection, got %T", picked.Value)
	assert.Len(t, proj.Fields, 2)
	full := pipeline.Declarations[2].(*ast.Assignment)
	assert.IsType(t, &ast.Merge{}, full.Value)
}

func TestParseMatch(t *testing.T) {
	src := `type R = { kind: String, value: Int }
in r: R
x = match r {
  { kind, value } -> value
  _ -> 0
}
out x`
	pipeline := mustParse(t, src)
	assign := pipeline.Declarations[2].(*ast.Assignment)
	m, ok := assign.Value.(*ast.Match)
	require.True(t, ok, "expected Match, got %T", assign.Value)
	require.Len(t, m.Cases, 2)
	assert.IsType(t, &ast.RecordPattern{}, m.Cases[0].Pattern)
	assert.IsType(t, &ast.WildcardPattern{}, m.Cases[1].Pattern)
}

func TestParseStringInterpolation(t *testing.T) {
	src := `in name: String
greeting = "hello ${name}!"
out greeting`
	pipeline := mustParse(t, src)
	assign := pipeline.Declarations[1].(*ast.Assignment)
	si, ok := assign.Value.(*ast.StringInterpolation)
	require.True(t, ok, "expected StringInterpolation, got %T", assign.Value)
	require.Len(t, si.Exprs, 1)
	assert.IsType(t, &ast.VarRef{}, si.Exprs[0])
}

func TestParseBranch(t *testing.T) {
	src := `in score: Int
grade = if score > 90 then "A" else if score > 80 then "B" else "C"
out grade`
	pipeline := mustParse(t, src)
	assign := pipeline.Declarations[1].(*ast.Assignment)
	branch, ok := assign.Value.(*ast.Branch)
	require.True(t, ok, "expected Branch, got %T", assign.Value)
	assert.Len(t, branch.Cases, 2)
}

func TestParseGuardAndCoalesce(t *testing.T) {
	src := `in x: Int
in y: Int
g = x when x > 0
c = g ?? y
out c`
	pipeline := mustParse(t, src)
	g := pipeline.Declarations[2].(*ast.Assignment)
	assert.IsType(t, &ast.Guard{}, g.Value)
	c := pipeline.Declarations[3].(*ast.Assignment)
	assert.IsType(t, &ast.Coalesce{}, c.Value)
}

func TestParseErrorsAccumulate(t *testing.T) {
	src := `in x Int
out y
@@@`
	p := NewFromSource(src)
	_, errs := p.Parse()
	assert.GreaterOrEqual(t, len(errs), 2, "expected multiple accumulated parse errors: %v", errs)
}
