package onnx

// ONNX protobuf records (hand-written, field numbers from onnx.proto3).

// ModelProto is the unit of interchange: one graph plus metadata.
type ModelProto struct {
	IRVersion       int64               // 1: IR version
	ProducerName    string              // 2: tool that built the model
	ProducerVersion string              // 3
	Domain          string              // 4: reverse-DNS model namespace
	ModelVersion    int64               // 5
	DocString       string              // 6
	Graph           *GraphProto         // 7
	OpsetImport     []OperatorSetID     // 8: operator sets the graph relies on
	MetadataProps   []StringStringEntry // 14
}

// GraphProto is an ordered list of nodes plus declared inputs and outputs.
type GraphProto struct {
	Nodes        []NodeProto      // 1
	Name         string           // 2
	Initializers []TensorProto    // 5: constant tensors
	DocString    string           // 10
	Inputs       []ValueInfoProto // 11
	Outputs      []ValueInfoProto // 12
	ValueInfo    []ValueInfoProto // 13: intermediate tensor types
}

// NodeProto is a single operator invocation, wired to tensors by name.
type NodeProto struct {
	Inputs     []string         // 1
	Outputs    []string         // 2
	Name       string           // 3
	OpType     string           // 4: e.g. "MatMul"
	Attributes []AttributeProto // 5
	DocString  string           // 6
	Domain     string           // 7: empty for the default ai.onnx domain
}

// TensorProto is a constant tensor (initializer or attribute value).
type TensorProto struct {
	Dims      []int64   // 1
	DataType  int32     // 2
	FloatData []float32 // 4
	Int32Data []int32   // 5
	Int64Data []int64   // 7
	Name      string    // 8
	RawData   []byte    // 9
	DocString string    // 12
}

// ValueInfoProto names a tensor and describes its type. It is what the
// ONNX helper calls a tensor value info; a graph input or output slot.
type ValueInfoProto struct {
	Name      string     // 1
	Type      *TypeProto // 2
	DocString string     // 3
}

// TypeProto wraps the tensor type. Sequence/map types are not modeled.
type TypeProto struct {
	TensorType *TensorTypeProto // 1
}

// TensorTypeProto is an element type plus an optional shape.
type TensorTypeProto struct {
	ElemType int32             // 1
	Shape    *TensorShapeProto // 2: nil means rank is unknown
}

// TensorShapeProto is an ordered list of dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto // 1
}

// DimensionProto is one dimension: a concrete value, a symbolic
// parameter, or neither (unknown). Both set is not valid ONNX.
//
// dim_value and dim_param form a oneof, so a zero value has presence on
// the wire. HasValue records it; a non-zero DimValue implies it.
type DimensionProto struct {
	DimValue int64  // 1
	DimParam string // 2
	HasValue bool
}

// Fixed reports whether the dimension holds a concrete value, zero included.
func (d DimensionProto) Fixed() bool {
	return d.HasValue || d.DimValue != 0
}

// AttributeProto is a named operator attribute.
type AttributeProto struct {
	Name      string        // 1
	F         float32       // 2
	I         int64         // 3
	S         []byte        // 4
	T         *TensorProto  // 5
	G         *GraphProto   // 6
	Floats    []float32     // 7
	Ints      []int64       // 8
	Strings   [][]byte      // 9
	Tensors   []TensorProto // 10
	Graphs    []GraphProto  // 11
	DocString string        // 13
	Type      int32         // 20
}

// OperatorSetID identifies an opset version within a domain.
type OperatorSetID struct {
	Domain  string // 1: empty for the default domain
	Version int64  // 2
}

// StringStringEntry is a key-value metadata pair.
type StringStringEntry struct {
	Key   string // 1
	Value string // 2
}

// ONNX element types (TensorProto.DataType).
const (
	TensorProtoUndefined  = 0
	TensorProtoFloat      = 1  // float32
	TensorProtoUint8      = 2  // uint8
	TensorProtoInt8       = 3  // int8
	TensorProtoUint16     = 4  // uint16
	TensorProtoInt16      = 5  // int16
	TensorProtoInt32      = 6  // int32
	TensorProtoInt64      = 7  // int64
	TensorProtoString     = 8  // string
	TensorProtoBool       = 9  // bool
	TensorProtoFloat16    = 10 // float16
	TensorProtoDouble     = 11 // float64
	TensorProtoUint32     = 12 // uint32
	TensorProtoUint64     = 13 // uint64
	TensorProtoComplex64  = 14 // complex64
	TensorProtoComplex128 = 15 // complex128
	TensorProtoBfloat16   = 16 // bfloat16
)

// ONNX attribute kinds (AttributeProto.Type).
const (
	AttributeProtoUndefined = 0
	AttributeProtoFloat     = 1  // FLOAT
	AttributeProtoInt       = 2  // INT
	AttributeProtoString    = 3  // STRING
	AttributeProtoTensor    = 4  // TENSOR
	AttributeProtoGraph     = 5  // GRAPH
	AttributeProtoFloats    = 6  // FLOATS
	AttributeProtoInts      = 7  // INTS
	AttributeProtoStrings   = 8  // STRINGS
	AttributeProtoTensors   = 9  // TENSORS
	AttributeProtoGraphs    = 10 // GRAPHS
)

var elemTypeNames = map[int32]string{
	TensorProtoUndefined:  "UNDEFINED",
	TensorProtoFloat:      "FLOAT",
	TensorProtoUint8:      "UINT8",
	TensorProtoInt8:       "INT8",
	TensorProtoUint16:     "UINT16",
	TensorProtoInt16:      "INT16",
	TensorProtoInt32:      "INT32",
	TensorProtoInt64:      "INT64",
	TensorProtoString:     "STRING",
	TensorProtoBool:       "BOOL",
	TensorProtoFloat16:    "FLOAT16",
	TensorProtoDouble:     "DOUBLE",
	TensorProtoUint32:     "UINT32",
	TensorProtoUint64:     "UINT64",
	TensorProtoComplex64:  "COMPLEX64",
	TensorProtoComplex128: "COMPLEX128",
	TensorProtoBfloat16:   "BFLOAT16",
}

// ElemTypeName returns the ONNX spelling of an element type, e.g. "FLOAT".
func ElemTypeName(t int32) string {
	if name, ok := elemTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ElemTypeByName is the inverse of ElemTypeName. Lookup is case-sensitive.
func ElemTypeByName(name string) (int32, bool) {
	for t, n := range elemTypeNames {
		if n == name && t != TensorProtoUndefined {
			return t, true
		}
	}
	return 0, false
}
