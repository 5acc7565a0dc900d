package onnx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	info := Info(twoMatMulModel())

	assert.Equal(t, &ModelInfo{
		IRVersion:    IRVersion,
		OpsetVersion: DefaultOpsetVersion,
		ProducerName: "onnx-bert",
		GraphName:    "attention",
		InputNames:   []string{"Q", "K", "V"},
		OutputNames:  []string{"O"},
		NodeCount:    2,
	}, info)
}

func TestInfoHidesInitializerInputs(t *testing.T) {
	m := MakeModel(MakeGraph(
		nil, "g",
		[]ValueInfoProto{
			MakeTensorValueInfo("X", TensorProtoFloat, nil),
			MakeTensorValueInfo("W", TensorProtoFloat, nil),
		},
		nil,
		WithInitializers(TensorProto{Name: "W"}),
	))

	info := Info(m)
	assert.Equal(t, []string{"X"}, info.InputNames)
	assert.Equal(t, 1, info.WeightCount)
}

func TestGetModelInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.onnx")
	require.NoError(t, WriteFile(path, twoMatMulModel()))

	info, err := GetModelInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "attention", info.GraphName)

	_, err = GetModelInfo(filepath.Join(t.TempDir(), "absent.onnx"))
	assert.Error(t, err)
}

func TestFormatShape(t *testing.T) {
	assert.Equal(t, "?", FormatShape(nil))
	assert.Equal(t, "[]", FormatShape(&TensorShapeProto{}))
	assert.Equal(t, "[batch, 4, ?]", FormatShape(&TensorShapeProto{Dims: []DimensionProto{
		{DimParam: "batch"}, {DimValue: 4}, {},
	}}))
	assert.Equal(t, "[0, ?]", FormatShape(&TensorShapeProto{Dims: []DimensionProto{
		{HasValue: true}, {},
	}}))
	assert.Equal(t, "?", FormatType(nil))
}

func TestElemTypeNames(t *testing.T) {
	assert.Equal(t, "FLOAT", ElemTypeName(TensorProtoFloat))
	assert.Equal(t, "UNKNOWN", ElemTypeName(99))

	typ, ok := ElemTypeByName("DOUBLE")
	assert.True(t, ok)
	assert.Equal(t, int32(TensorProtoDouble), typ)

	_, ok = ElemTypeByName("UNDEFINED")
	assert.False(t, ok)
	_, ok = ElemTypeByName("float")
	assert.False(t, ok)
}
