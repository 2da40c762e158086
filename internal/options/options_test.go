package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
)

func TestNormalizeScenarioAOptions(t *testing.T) {
	raw := []ast.Option{
		{Name: "retry", Value: &ast.Literal{Kind: ast.LitInt, Int: 3}},
		{Name: "timeout", Value: &ast.Literal{Kind: ast.LitDuration, Str: "30s"}},
		{Name: "cache", Value: &ast.Literal{Kind: ast.LitDuration, Str: "5min"}},
	}
	opts, err := Normalize(raw, "")
	require.NoError(t, err)
	require.NotNil(t, opts.Retry)
	assert.Equal(t, 3, *opts.Retry)
	require.NotNil(t, opts.TimeoutMs)
	assert.Equal(t, int64(30000), *opts.TimeoutMs)
	require.NotNil(t, opts.CacheMs)
	assert.Equal(t, int64(300000), *opts.CacheMs)
}

func TestNormalizePriorityNameAndInt(t *testing.T) {
	byName, err := Normalize([]ast.Option{{Name: "priority", Value: &ast.VarRef{Name: "critical"}}}, "")
	require.NoError(t, err)
	require.NotNil(t, byName.Priority)
	assert.Equal(t, 100, *byName.Priority)

	byInt, err := Normalize([]ast.Option{{Name: "priority", Value: &ast.Literal{Kind: ast.LitInt, Int: 42}}}, "")
	require.NoError(t, err)
	require.NotNil(t, byInt.Priority)
	assert.Equal(t, 42, *byInt.Priority)
}

func TestNormalizeThrottle(t *testing.T) {
	opts, err := Normalize([]ast.Option{
		{Name: "throttle", Value: &ast.Literal{Kind: ast.LitString, Str: "10/1s"}},
	}, "")
	require.NoError(t, err)
	require.NotNil(t, opts.ThrottleCount)
	assert.Equal(t, 10, *opts.ThrottleCount)
	require.NotNil(t, opts.ThrottlePerMs)
	assert.Equal(t, int64(1000), *opts.ThrottlePerMs)
}

func TestNormalizeWindowAndJoin(t *testing.T) {
	opts, err := Normalize([]ast.Option{
		{Name: "window", Value: &ast.FunctionCall{Name: "sliding", Args: []ast.Expression{
			&ast.Literal{Kind: ast.LitDuration, Str: "1min"},
			&ast.Literal{Kind: ast.LitDuration, Str: "30s"},
		}}},
		{Name: "join", Value: &ast.FunctionCall{Name: "buffer", Args: []ast.Expression{
			&ast.Literal{Kind: ast.LitDuration, Str: "5s"},
		}}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "sliding:60000:30000", opts.Window)
	assert.Equal(t, "buffer:5000", opts.Join)
}

func TestNormalizeFallbackNodeID(t *testing.T) {
	opts, err := Normalize(nil, "node-123")
	require.NoError(t, err)
	assert.Equal(t, "node-123", opts.FallbackNodeID)
	assert.False(t, opts.IsEmpty(), "expected options with a fallback set to be non-empty")
}

func TestNormalizeRejectsUnknownOption(t *testing.T) {
	_, err := Normalize([]ast.Option{{Name: "bogus", Value: &ast.Literal{Kind: ast.LitInt, Int: 1}}}, "")
	assert.Error(t, err, "expected an error for an unknown option name")
}
