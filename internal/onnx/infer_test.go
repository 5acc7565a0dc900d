package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valueInfoByName(t *testing.T, g *GraphProto, name string) *TensorTypeProto {
	t.Helper()
	for i := range g.ValueInfo {
		if g.ValueInfo[i].Name == name {
			return g.ValueInfo[i].Type.TensorType
		}
	}
	t.Fatalf("no value info for %q", name)
	return nil
}

func TestInferShapesTwoMatMul(t *testing.T) {
	m := twoMatMulModel()

	inferred, err := InferShapes(m)
	require.NoError(t, err)

	// K is not transposed, so plain matmul semantics give A the
	// trailing dims of Q's rows and K's columns.
	a := valueInfoByName(t, inferred.Graph, "A")
	assert.Equal(t, "FLOAT[batch, head, sequence, hidden]", FormatType(a))
	assert.Len(t, inferred.Graph.ValueInfo, 1, "graph outputs are not duplicated into value_info")

	assert.Empty(t, m.Graph.ValueInfo, "input model must not be modified")
}

func TestInferShapesWithTranspose(t *testing.T) {
	shape := Params("batch", "head", "sequence", "hidden")
	m := MakeModel(MakeGraph(
		[]NodeProto{
			MakeNode("Transpose", []string{"K"}, []string{"Kt"}, WithAttribute(AttrInts("perm", 0, 1, 3, 2))),
			MakeNode("MatMul", []string{"Q", "Kt"}, []string{"S"}),
			MakeNode("Softmax", []string{"S"}, []string{"P"}, WithAttribute(AttrInt("axis", -1))),
			MakeNode("MatMul", []string{"P", "V"}, []string{"O"}),
		},
		"attention_full",
		[]ValueInfoProto{
			MakeTensorValueInfo("Q", TensorProtoFloat, shape),
			MakeTensorValueInfo("K", TensorProtoFloat, shape),
			MakeTensorValueInfo("V", TensorProtoFloat, shape),
		},
		[]ValueInfoProto{MakeTensorValueInfo("O", TensorProtoFloat, shape)},
	))

	inferred, err := InferShapes(m)
	require.NoError(t, err)

	g := inferred.Graph
	assert.Equal(t, "FLOAT[batch, head, hidden, sequence]", FormatType(valueInfoByName(t, g, "Kt")))
	assert.Equal(t, "FLOAT[batch, head, sequence, sequence]", FormatType(valueInfoByName(t, g, "S")))
	assert.Equal(t, "FLOAT[batch, head, sequence, sequence]", FormatType(valueInfoByName(t, g, "P")))
}

func TestMatMulShapes(t *testing.T) {
	d := func(vs ...any) []DimensionProto {
		out := make([]DimensionProto, len(vs))
		for i, v := range vs {
			switch v := v.(type) {
			case string:
				out[i] = DimensionProto{DimParam: v}
			case int:
				out[i] = DimensionProto{DimValue: int64(v)}
			}
		}
		return out
	}

	tests := []struct {
		name string
		a, b []DimensionProto
		want string
	}{
		{"matrix", d(2, 3), d(3, 4), "[2, 4]"},
		{"vector-matrix", d(3), d(3, 4), "[4]"},
		{"matrix-vector", d(2, 3), d(3), "[2]"},
		{"vector-vector", d(3), d(3), "[]"},
		{"batched", d("b", 2, 3), d(3, 4), "[b, 2, 4]"},
		{"broadcast batch", d(1, "h", 2, 3), d(5, 1, 3, 4), "[5, h, 2, 4]"},
		{"symbolic", d("n", "k"), d("k", "m"), "[n, m]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matMul(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatShape(&TensorShapeProto{Dims: got}))
		})
	}

	_, err := matMul(d(2, 3), d(4, 5))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = matMul(d(), d(3))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = matMul(d(2, 2, 3), d(3, 3, 4))
	assert.ErrorIs(t, err, ErrShapeMismatch, "batch dims 2 and 3 do not broadcast")
}

func TestBroadcastSymbols(t *testing.T) {
	got, err := broadcast(
		[]DimensionProto{{DimParam: "a"}, {DimParam: "n"}},
		[]DimensionProto{{DimParam: "b"}, {DimValue: 8}},
	)
	require.NoError(t, err)
	assert.Equal(t, "[?, 8]", FormatShape(&TensorShapeProto{Dims: got}))
}

func TestInferShapesDeclaredOutputConflict(t *testing.T) {
	m := MakeModel(MakeGraph(
		[]NodeProto{MakeNode("MatMul", []string{"X", "W"}, []string{"Y"})},
		"linear",
		[]ValueInfoProto{
			MakeTensorValueInfo("X", TensorProtoFloat, []Dim{Value(2), Value(3)}),
			MakeTensorValueInfo("W", TensorProtoFloat, []Dim{Value(3), Value(4)}),
		},
		[]ValueInfoProto{MakeTensorValueInfo("Y", TensorProtoFloat, []Dim{Value(2), Value(5)})},
	))

	_, err := InferShapes(m)
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "declared FLOAT[2, 5], inferred FLOAT[2, 4]")
}

func TestInferShapesSkipsUnknown(t *testing.T) {
	m := MakeModel(MakeGraph(
		[]NodeProto{
			MakeNode("Mystery", []string{"X"}, []string{"Y"}),
			MakeNode("Relu", []string{"Y"}, []string{"Z"}),
			MakeNode("Relu", []string{"U"}, []string{"R"}),
		},
		"partial",
		[]ValueInfoProto{
			MakeTensorValueInfo("X", TensorProtoFloat, Params("n")),
			MakeTensorValueInfo("U", TensorProtoFloat, nil),
		},
		nil,
	))

	inferred, err := InferShapes(m)
	require.NoError(t, err)
	assert.Empty(t, inferred.Graph.ValueInfo)
}

func TestInferShapesFromInitializer(t *testing.T) {
	m := MakeModel(MakeGraph(
		[]NodeProto{MakeNode("Add", []string{"X", "B"}, []string{"Y"})},
		"bias",
		[]ValueInfoProto{MakeTensorValueInfo("X", TensorProtoFloat, []Dim{Param("n"), Value(4)})},
		nil,
		WithInitializers(TensorProto{Name: "B", DataType: TensorProtoFloat, Dims: []int64{4}}),
	))

	inferred, err := InferShapes(m)
	require.NoError(t, err)
	assert.Equal(t, "FLOAT[n, 4]", FormatType(valueInfoByName(t, inferred.Graph, "Y")))
}

func TestInferShapesErrors(t *testing.T) {
	_, err := InferShapes(nil)
	assert.ErrorIs(t, err, ErrNilModel)

	_, err = InferShapes(&ModelProto{})
	assert.ErrorIs(t, err, ErrNoGraph)
}

func TestBroadcastZero(t *testing.T) {
	zero := DimensionProto{HasValue: true}

	got, err := broadcast([]DimensionProto{zero, {DimValue: 3}}, []DimensionProto{one, {DimValue: 3}})
	require.NoError(t, err)
	assert.Equal(t, "[0, 3]", FormatShape(&TensorShapeProto{Dims: got}))

	got, err = broadcast([]DimensionProto{zero}, []DimensionProto{{DimParam: "n"}})
	require.NoError(t, err)
	assert.Equal(t, "[0]", FormatShape(&TensorShapeProto{Dims: got}))

	_, err = broadcast([]DimensionProto{zero}, []DimensionProto{{DimValue: 2}})
	assert.ErrorIs(t, err, ErrShapeMismatch, "0 does not broadcast with 2")
}

func TestTransposePerm(t *testing.T) {
	dims := []DimensionProto{{DimParam: "a"}, {DimParam: "b"}}

	got, err := transpose(dims, nil)
	require.NoError(t, err)
	assert.Equal(t, "[b, a]", FormatShape(&TensorShapeProto{Dims: got}))

	_, err = transpose(dims, []int64{0, 0})
	assert.ErrorIs(t, err, ErrShapeMismatch, "repeated axis is not a permutation")

	_, err = transpose(dims, []int64{0, 2})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = transpose(dims, []int64{0})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestInferShapesRejectsRepeatedPermAxis(t *testing.T) {
	m := MakeModel(MakeGraph(
		[]NodeProto{MakeNode("Transpose", []string{"X"}, []string{"Y"}, WithAttribute(AttrInts("perm", 0, 0)))},
		"bad_perm",
		[]ValueInfoProto{MakeTensorValueInfo("X", TensorProtoFloat, Params("a", "b"))},
		nil,
	))

	_, err := InferShapes(m)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestInferShapesCopyIsIndependent(t *testing.T) {
	m := twoMatMulModel()
	m.MetadataProps = []StringStringEntry{{Key: "k", Value: "v"}}
	want := twoMatMulModel()
	want.MetadataProps = []StringStringEntry{{Key: "k", Value: "v"}}

	inferred, err := InferShapes(m)
	require.NoError(t, err)

	g := inferred.Graph
	g.Nodes[0] = MakeNode("Relu", []string{"Q"}, []string{"A"})
	g.Inputs[0].Name = "renamed"
	g.Outputs[0] = MakeTensorValueInfo("other", TensorProtoInt64, nil)
	g.Initializers = append(g.Initializers, TensorProto{Name: "extra"})
	inferred.OpsetImport[0].Version = 1
	inferred.MetadataProps[0].Value = "changed"

	assert.Equal(t, want, m, "input model must not be modified")
}
