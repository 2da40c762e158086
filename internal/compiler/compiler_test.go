package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/dag"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

func scenarioASignature() registry.Signature {
	return registry.Signature{
		Name: "TestModule", ModuleName: "TestModule",
		Params:  []registry.Param{{Name: "x", Type: semtype.SInt{}}},
		Returns: semtype.SInt{},
	}
}

func scenarioAModule() dag.UninitializedModule {
	return dag.UninitializedModule{
		Name:        "TestModule",
		Consumes:    map[string]semtype.Type{"x": semtype.SInt{}},
		Produces:    map[string]semtype.Type{"result": semtype.SInt{}},
		OutputField: "result",
	}
}

const scenarioASource = `in x: Int
result = TestModule(x) with retry: 3, timeout: 30s, cache: 5min
out result`

func TestCompileScenarioAProducesDagWithOptions(t *testing.T) {
	c := NewBuilder().
		WithFunction(scenarioASignature()).
		WithModule(scenarioAModule()).
		Build()

	out, errs := c.Compile(scenarioASource, "test")
	require.Empty(t, errs, "unexpected compile errors")
	require.Len(t, out.Pipeline.Image.DagSpec.ModuleNodes, 1)
	assert.NotEmpty(t, out.Pipeline.Image.SourceHash)
	assert.NotEmpty(t, out.Pipeline.Image.StructuralHash)
	assert.NotEmpty(t, out.Pipeline.Image.SyntacticHash)

	var opts = false
	for _, o := range out.Pipeline.Image.ModuleOptions {
		if o.Retry != nil && *o.Retry == 3 {
			opts = true
		}
	}
	assert.True(t, opts, "expected retry=3 to survive into the compiled module options")
}

func TestCompileSyntaxErrorReportsNoDag(t *testing.T) {
	c := NewBuilder().Build()
	_, errs := c.Compile("in x: Int\nresult = )(", "test")
	assert.NotEmpty(t, errs, "expected syntax errors")
}

func TestCompileUndefinedOutputReportsReferenceError(t *testing.T) {
	c := NewBuilder().Build()
	_, errs := c.Compile("in x: Int\nout y", "test")
	assert.NotEmpty(t, errs, "expected a reference error for an undefined output")
}

func TestCompileCachesIdenticalSource(t *testing.T) {
	c := NewBuilder().
		WithFunction(scenarioASignature()).
		WithModule(scenarioAModule()).
		WithCaching(nil).
		Build()

	first, errs := c.Compile(scenarioASource, "test")
	require.Empty(t, errs, "unexpected compile errors")
	second, errs := c.Compile(scenarioASource, "test")
	require.Empty(t, errs, "unexpected compile errors")
	assert.Same(t, first, second, "expected the second compile to be served from the cache as the same value")
	assert.EqualValues(t, 1, c.cache.Stats().Hits, "expected exactly 1 cache hit")
}

func TestCompileToIRStopsBeforeOptimizeAndDag(t *testing.T) {
	c := NewBuilder().
		WithFunction(scenarioASignature()).
		Build()

	pipeline, errs := c.CompileToIR(scenarioASource)
	require.Empty(t, errs, "unexpected compile errors")
	assert.NotEmpty(t, pipeline.Nodes, "expected a non-empty IR graph")
}
