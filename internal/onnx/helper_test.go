package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoMatMulModel is the Q/K/V graph used across this package's tests.
func twoMatMulModel() *ModelProto {
	shape := Params("batch", "head", "sequence", "hidden")
	return MakeModel(
		MakeGraph(
			[]NodeProto{
				MakeNode("MatMul", []string{"Q", "K"}, []string{"A"}),
				MakeNode("MatMul", []string{"A", "V"}, []string{"O"}),
			},
			"attention",
			[]ValueInfoProto{
				MakeTensorValueInfo("Q", TensorProtoFloat, shape),
				MakeTensorValueInfo("K", TensorProtoFloat, shape),
				MakeTensorValueInfo("V", TensorProtoFloat, shape),
			},
			[]ValueInfoProto{MakeTensorValueInfo("O", TensorProtoFloat, shape)},
		),
		WithProducerName("onnx-bert"),
	)
}

func TestMakeTensorValueInfo(t *testing.T) {
	vi := MakeTensorValueInfo("X", TensorProtoFloat, []Dim{Param("batch"), Value(3), {}})

	assert.Equal(t, "X", vi.Name)
	require.NotNil(t, vi.Type)
	require.NotNil(t, vi.Type.TensorType)
	assert.Equal(t, int32(TensorProtoFloat), vi.Type.TensorType.ElemType)
	assert.Equal(t, []DimensionProto{
		{DimParam: "batch"},
		{DimValue: 3, HasValue: true},
		{},
	}, vi.Type.TensorType.Shape.Dims)
	assert.Equal(t, "FLOAT[batch, 3, ?]", FormatType(vi.Type.TensorType))
}

func TestValueZeroIsFixed(t *testing.T) {
	vi := MakeTensorValueInfo("E", TensorProtoFloat, []Dim{Value(0), {}})

	dims := vi.Type.TensorType.Shape.Dims
	assert.True(t, dims[0].Fixed())
	assert.False(t, dims[1].Fixed())
	assert.Equal(t, "FLOAT[0, ?]", FormatType(vi.Type.TensorType))
}

func TestBuildersNormalizeEmptyLists(t *testing.T) {
	n := MakeNode("Transpose", []string{}, []string{},
		WithAttribute(AttrString("mode", "")),
		WithAttribute(AttrInts("perm", []int64{}...)),
		WithAttribute(AttrFloats("scales")),
	)
	assert.Nil(t, n.Inputs)
	assert.Nil(t, n.Outputs)
	assert.Nil(t, n.Attributes[0].S)
	assert.Nil(t, n.Attributes[1].Ints)
	assert.Nil(t, n.Attributes[2].Floats)

	g := MakeGraph([]NodeProto{}, "empty", []ValueInfoProto{}, []ValueInfoProto{})
	assert.Nil(t, g.Nodes)
	assert.Nil(t, g.Inputs)
	assert.Nil(t, g.Outputs)
}

func TestMakeTensorValueInfoRank(t *testing.T) {
	unknown := MakeTensorValueInfo("U", TensorProtoFloat, nil)
	assert.Nil(t, unknown.Type.TensorType.Shape, "nil shape leaves rank unknown")

	scalar := MakeTensorValueInfo("S", TensorProtoInt64, []Dim{})
	require.NotNil(t, scalar.Type.TensorType.Shape, "empty shape is a scalar")
	assert.Empty(t, scalar.Type.TensorType.Shape.Dims)
	assert.Equal(t, "INT64[]", FormatType(scalar.Type.TensorType))
}

func TestMakeTensorValueInfoNoValidation(t *testing.T) {
	// Odd labels and repeated names are accepted as given.
	a := MakeTensorValueInfo("dup", TensorProtoFloat, Params("", "n n"))
	b := MakeTensorValueInfo("dup", TensorProtoFloat, Params("x"))
	assert.Equal(t, a.Name, b.Name)
	assert.Len(t, a.Type.TensorType.Shape.Dims, 2)
}

func TestMakeNode(t *testing.T) {
	inputs := []string{"X", "W"}
	n := MakeNode("Gemm", inputs, []string{"Y"},
		WithNodeName("fc1"),
		WithDomain("ai.onnx"),
		WithNodeDoc("fully connected"),
		WithAttribute(AttrFloat("alpha", 0.5)),
		WithAttribute(AttrInt("transB", 1)),
	)

	assert.Equal(t, "Gemm", n.OpType)
	assert.Equal(t, "fc1", n.Name)
	assert.Equal(t, "ai.onnx", n.Domain)
	assert.Equal(t, "fully connected", n.DocString)
	assert.Equal(t, []string{"X", "W"}, n.Inputs)
	assert.Equal(t, []string{"Y"}, n.Outputs)
	require.Len(t, n.Attributes, 2)
	assert.Equal(t, int32(AttributeProtoFloat), n.Attributes[0].Type)
	assert.Equal(t, int64(1), n.Attributes[1].I)

	inputs[0] = "changed"
	assert.Equal(t, "X", n.Inputs[0], "node must not alias the caller's slice")
}

func TestMakeNodeNoArityCheck(t *testing.T) {
	n := MakeNode("MatMul", []string{"only-one"}, nil)
	assert.Equal(t, []string{"only-one"}, n.Inputs)
	assert.Nil(t, n.Outputs)
}

func TestAttributeFactories(t *testing.T) {
	tests := []struct {
		attr AttributeProto
		kind int32
	}{
		{AttrInt("axis", -1), AttributeProtoInt},
		{AttrFloat("epsilon", 1e-5), AttributeProtoFloat},
		{AttrString("mode", "constant"), AttributeProtoString},
		{AttrInts("perm", 0, 2, 1, 3), AttributeProtoInts},
		{AttrFloats("scales", 1, 2), AttributeProtoFloats},
	}
	for _, tt := range tests {
		t.Run(tt.attr.Name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.attr.Type)
		})
	}
	assert.Equal(t, []byte("constant"), AttrString("mode", "constant").S)
	assert.Equal(t, []int64{0, 2, 1, 3}, AttrInts("perm", 0, 2, 1, 3).Ints)
}

func TestMakeGraphPreservesOrder(t *testing.T) {
	nodes := []NodeProto{
		MakeNode("Relu", []string{"B"}, []string{"C"}),
		MakeNode("Relu", []string{"A"}, []string{"B"}),
	}
	in := []ValueInfoProto{MakeTensorValueInfo("A", TensorProtoFloat, nil)}
	out := []ValueInfoProto{MakeTensorValueInfo("C", TensorProtoFloat, nil)}

	g := MakeGraph(nodes, "reversed", in, out, WithGraphDoc("consumer first"))

	assert.Equal(t, "reversed", g.Name)
	assert.Equal(t, "consumer first", g.DocString)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, []string{"B"}, g.Nodes[0].Inputs, "ordering is not validated or changed")

	nodes[0] = MakeNode("Identity", nil, nil)
	assert.Equal(t, "Relu", g.Nodes[0].OpType, "graph must not alias the caller's node list")
}

func TestMakeGraphOptions(t *testing.T) {
	w := TensorProto{Name: "W", DataType: TensorProtoFloat, Dims: []int64{2}, FloatData: []float32{1, 2}}
	mid := MakeTensorValueInfo("M", TensorProtoFloat, Params("n"))

	g := MakeGraph(nil, "g", nil, nil, WithInitializers(w), WithValueInfo(mid))

	require.Len(t, g.Initializers, 1)
	assert.Equal(t, "W", g.Initializers[0].Name)
	require.Len(t, g.ValueInfo, 1)
	assert.Equal(t, "M", g.ValueInfo[0].Name)
}

func TestMakeModelDefaults(t *testing.T) {
	m := MakeModel(MakeGraph(nil, "empty", nil, nil))

	assert.Equal(t, int64(IRVersion), m.IRVersion)
	assert.Equal(t, []OperatorSetID{{Version: DefaultOpsetVersion}}, m.OpsetImport)
	assert.Empty(t, m.ProducerName)
	assert.Equal(t, "empty", m.Graph.Name)
}

func TestMakeModelOptions(t *testing.T) {
	m := MakeModel(MakeGraph(nil, "g", nil, nil),
		WithProducerName("onnxgraph"),
		WithProducerVersion("0.1.0"),
		WithModelDomain("org.example"),
		WithModelVersion(3),
		WithModelDoc("doc"),
		WithOpset("", 17),
		WithOpset("com.microsoft", 1),
		WithMetadata("author", "born"),
	)

	assert.Equal(t, "onnxgraph", m.ProducerName)
	assert.Equal(t, "0.1.0", m.ProducerVersion)
	assert.Equal(t, "org.example", m.Domain)
	assert.Equal(t, int64(3), m.ModelVersion)
	assert.Equal(t, "doc", m.DocString)
	assert.Equal(t, []OperatorSetID{{Version: 17}, {Domain: "com.microsoft", Version: 1}}, m.OpsetImport)
	assert.Equal(t, []StringStringEntry{{Key: "author", Value: "born"}}, m.MetadataProps)
}

func TestBuildIsDeterministic(t *testing.T) {
	assert.Equal(t, twoMatMulModel(), twoMatMulModel())

	a, err := Marshal(twoMatMulModel())
	require.NoError(t, err)
	b, err := Marshal(twoMatMulModel())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
