package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
	"github.com/vledicfranco/constellation-compiler/internal/typedast"
)

func b(t semtype.Type) typedast.Base { return typedast.NewBase(ast.Span{}, t) }

func TestBuildSimpleAssignmentAndOutput(t *testing.T) {
	tp := &typedast.TypedPipeline{
		Declarations: []typedast.TypedDeclaration{
			&typedast.TInputDecl{Name: "x", Type: semtype.SInt{}},
			&typedast.TAssignment{Name: "y", Value: &typedast.TVarRef{Base: b(semtype.SInt{}), Name: "x"}},
		},
		Outputs: []string{"y"},
	}
	p, err := Build(tp)
	require.NoError(t, err)
	require.Len(t, p.Inputs, 1)
	require.Len(t, p.Nodes, 1, "expected the assignment to reuse the input node rather than allocate a new one")

	outID, ok := p.OutputBindings["y"]
	require.True(t, ok, "expected output binding for y")
	assert.Equal(t, p.Bindings["x"], outID, "expected y to bind to the same node as x")

	wantInputs := []string{p.Bindings["x"]}
	if diff := cmp.Diff(wantInputs, p.Inputs); diff != "" {
		t.Errorf("Inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnresolvedOutputErrors(t *testing.T) {
	tp := &typedast.TypedPipeline{Outputs: []string{"missing"}}
	_, err := Build(tp)
	assert.Error(t, err, "expected an error for an unresolved output")
}

func TestBuildHigherOrderCapturesFreeVariable(t *testing.T) {
	sig := registry.Signature{Name: "Filter", ModuleName: registry.HOFPrefix + "Filter", Returns: &semtype.SList{Elem: semtype.SInt{}}}
	tp := &typedast.TypedPipeline{
		Declarations: []typedast.TypedDeclaration{
			&typedast.TInputDecl{Name: "threshold", Type: semtype.SInt{}},
			&typedast.TInputDecl{Name: "nums", Type: &semtype.SList{Elem: semtype.SInt{}}},
			&typedast.TAssignment{
				Name: "big",
				Value: &typedast.TFunctionCall{
					Base: b(&semtype.SList{Elem: semtype.SInt{}}), Name: "Filter", Signature: sig,
					Args: []typedast.TypedExpression{
						&typedast.TVarRef{Base: b(&semtype.SList{Elem: semtype.SInt{}}), Name: "nums"},
						&typedast.TLambda{
							Base: b(&semtype.SFunction{Params: []semtype.Type{semtype.SInt{}}, Returns: semtype.SBoolean{}}),
							Params: []string{"n"}, ParamTypes: []semtype.Type{semtype.SInt{}},
							Body: &typedast.TCompare{
								Base: b(semtype.SBoolean{}), Op: ast.CmpGt,
								Left:  &typedast.TVarRef{Base: b(semtype.SInt{}), Name: "n"},
								Right: &typedast.TVarRef{Base: b(semtype.SInt{}), Name: "threshold"},
							},
						},
					},
				},
			},
		},
		Outputs: []string{"big"},
	}

	p, err := Build(tp)
	require.NoError(t, err)
	hoID, ok := p.Bindings["big"]
	require.True(t, ok, "expected a binding for big")
	ho, ok := p.Nodes[hoID].(*HigherOrder)
	require.True(t, ok, "expected a HigherOrder node, got %T", p.Nodes[hoID])
	assert.Equal(t, "Filter", ho.Operation)

	capturedID, ok := ho.Lambda.CapturedInputs["threshold"]
	require.True(t, ok, "expected threshold to be captured as a free variable")
	assert.Equal(t, p.Bindings["threshold"], capturedID, "captured input should reference the outer threshold node")
	assert.Len(t, ho.Lambda.ParamIDs, 1)
}

func TestTopologicalLayersCoverAllNodesAndRespectEdges(t *testing.T) {
	tp := &typedast.TypedPipeline{
		Declarations: []typedast.TypedDeclaration{
			&typedast.TInputDecl{Name: "a", Type: semtype.SInt{}},
			&typedast.TInputDecl{Name: "b", Type: semtype.SInt{}},
			&typedast.TAssignment{Name: "c", Value: &typedast.TMerge{
				Base:  b(semtype.SInt{}),
				Left:  &typedast.TVarRef{Base: b(semtype.SInt{}), Name: "a"},
				Right: &typedast.TVarRef{Base: b(semtype.SInt{}), Name: "b"},
			}},
		},
		Outputs: []string{"c"},
	}
	p, err := Build(tp)
	require.NoError(t, err)
	layers := p.TopologicalLayers()

	covered := map[string]bool{}
	layerIndex := map[string]int{}
	for i, layer := range layers {
		for _, id := range layer {
			require.Falsef(t, covered[id], "node %s appears in more than one layer", id)
			covered[id] = true
			layerIndex[id] = i
		}
	}
	assert.Len(t, covered, len(p.Nodes))
	for id, n := range p.Nodes {
		for _, prod := range n.Producers() {
			if prod == "" {
				continue
			}
			assert.Lessf(t, layerIndex[prod], layerIndex[id], "producer %s not scheduled before consumer %s", prod, id)
		}
	}
}
