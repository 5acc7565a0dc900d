package onnx

import internalonnx "github.com/born-ml/onnxgraph/internal/onnx"

// ModelProto is the top-level ONNX record: IR version, opset imports,
// producer metadata and the graph.
type ModelProto = internalonnx.ModelProto

// GraphProto is a named computation graph.
type GraphProto = internalonnx.GraphProto

// NodeProto is one operator invocation.
type NodeProto = internalonnx.NodeProto

// TensorProto is a constant tensor, used for initializers and attributes.
type TensorProto = internalonnx.TensorProto

// ValueInfoProto declares a named, typed tensor slot.
type ValueInfoProto = internalonnx.ValueInfoProto

// TypeProto wraps a tensor type.
type TypeProto = internalonnx.TypeProto

// TensorTypeProto is an element type plus an optional shape.
type TensorTypeProto = internalonnx.TensorTypeProto

// TensorShapeProto is an ordered list of dimensions.
type TensorShapeProto = internalonnx.TensorShapeProto

// DimensionProto is a fixed, symbolic or unknown dimension.
type DimensionProto = internalonnx.DimensionProto

// AttributeProto is a named node parameter.
type AttributeProto = internalonnx.AttributeProto

// OperatorSetID is an opset import.
type OperatorSetID = internalonnx.OperatorSetID

// StringStringEntry is a metadata_props entry.
type StringStringEntry = internalonnx.StringStringEntry

// Dim is a dimension label for MakeTensorValueInfo.
type Dim = internalonnx.Dim

// Element types.
const (
	Float   = internalonnx.TensorProtoFloat
	Float16 = internalonnx.TensorProtoFloat16
	Double  = internalonnx.TensorProtoDouble
	Int32   = internalonnx.TensorProtoInt32
	Int64   = internalonnx.TensorProtoInt64
	Bool    = internalonnx.TensorProtoBool
)

// Model format constants stamped by MakeModel.
const (
	IRVersion           = internalonnx.IRVersion
	DefaultOpsetVersion = internalonnx.DefaultOpsetVersion
)
