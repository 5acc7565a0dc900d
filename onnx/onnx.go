// Package onnx builds, encodes, checks and inspects ONNX model graphs.
//
// Models are plain Go records mirroring onnx.proto. They are assembled
// with builders modelled on Python's onnx.helper, serialized to the
// standard protobuf binary format, and read back from .onnx files written
// by any exporter.
//
// # Example Usage
//
//	shape := onnx.Params("batch", "head", "sequence", "hidden")
//	q := onnx.MakeTensorValueInfo("Q", onnx.Float, shape)
//	k := onnx.MakeTensorValueInfo("K", onnx.Float, shape)
//	o := onnx.MakeTensorValueInfo("O", onnx.Float, nil)
//
//	node := onnx.MakeNode("MatMul", []string{"Q", "K"}, []string{"O"})
//	graph := onnx.MakeGraph([]onnx.NodeProto{node}, "scores",
//	    []onnx.ValueInfoProto{q, k}, []onnx.ValueInfoProto{o})
//	model := onnx.MakeModel(graph, onnx.WithProducerName("example"))
//
//	if err := onnx.Check(model); err != nil {
//	    log.Fatal(err)
//	}
//	if err := onnx.WriteFile("scores.onnx", model); err != nil {
//	    log.Fatal(err)
//	}
//
// Builders never validate. [Check] is a separate, explicit step, and
// [InferShapes] records intermediate tensor types without touching its
// argument.
package onnx

import (
	"github.com/born-ml/onnxgraph/internal/attention"
	"github.com/born-ml/onnxgraph/internal/graphdef"
	internalonnx "github.com/born-ml/onnxgraph/internal/onnx"
	"github.com/born-ml/onnxgraph/internal/onnx/operators"
)

// Checker findings, matched with errors.Is.
var (
	ErrNilModel         = internalonnx.ErrNilModel
	ErrNoGraph          = internalonnx.ErrNoGraph
	ErrNoDefaultOpset   = internalonnx.ErrNoDefaultOpset
	ErrUnnamedGraph     = internalonnx.ErrUnnamedGraph
	ErrEmptyName        = internalonnx.ErrEmptyName
	ErrMissingOpType    = internalonnx.ErrMissingOpType
	ErrDuplicateName    = internalonnx.ErrDuplicateName
	ErrUndefinedInput   = internalonnx.ErrUndefinedInput
	ErrUnproducedOutput = internalonnx.ErrUnproducedOutput
	ErrArity            = internalonnx.ErrArity
	ErrShapeMismatch    = internalonnx.ErrShapeMismatch
)

// Param returns a symbolic dimension such as "batch".
func Param(name string) Dim { return internalonnx.Param(name) }

// Value returns a fixed dimension.
func Value(n int64) Dim { return internalonnx.Value(n) }

// Params is shorthand for a shape made only of symbolic dimensions.
func Params(names ...string) []Dim { return internalonnx.Params(names...) }

// MakeTensorValueInfo declares a named, typed tensor slot. A nil shape
// leaves the rank unknown.
func MakeTensorValueInfo(name string, elemType int32, shape []Dim) ValueInfoProto {
	return internalonnx.MakeTensorValueInfo(name, elemType, shape)
}

// NodeOption configures MakeNode.
type NodeOption = internalonnx.NodeOption

// MakeNode creates an operator invocation.
func MakeNode(opType string, inputs, outputs []string, opts ...NodeOption) NodeProto {
	return internalonnx.MakeNode(opType, inputs, outputs, opts...)
}

// WithNodeName sets the node name.
func WithNodeName(name string) NodeOption { return internalonnx.WithNodeName(name) }

// WithDomain sets the operator domain.
func WithDomain(domain string) NodeOption { return internalonnx.WithDomain(domain) }

// WithAttribute appends an attribute.
func WithAttribute(attr AttributeProto) NodeOption { return internalonnx.WithAttribute(attr) }

// AttrInt returns an INT attribute.
func AttrInt(name string, v int64) AttributeProto { return internalonnx.AttrInt(name, v) }

// AttrFloat returns a FLOAT attribute.
func AttrFloat(name string, v float32) AttributeProto { return internalonnx.AttrFloat(name, v) }

// AttrString returns a STRING attribute.
func AttrString(name, v string) AttributeProto { return internalonnx.AttrString(name, v) }

// AttrInts returns an INTS attribute.
func AttrInts(name string, vs ...int64) AttributeProto { return internalonnx.AttrInts(name, vs...) }

// AttrFloats returns a FLOATS attribute.
func AttrFloats(name string, vs ...float32) AttributeProto {
	return internalonnx.AttrFloats(name, vs...)
}

// GraphOption configures MakeGraph.
type GraphOption = internalonnx.GraphOption

// MakeGraph assembles nodes and declared inputs and outputs in order.
func MakeGraph(nodes []NodeProto, name string, inputs, outputs []ValueInfoProto, opts ...GraphOption) *GraphProto {
	return internalonnx.MakeGraph(nodes, name, inputs, outputs, opts...)
}

// WithInitializers adds constant tensors to the graph.
func WithInitializers(tensors ...TensorProto) GraphOption {
	return internalonnx.WithInitializers(tensors...)
}

// WithValueInfo declares types for intermediate tensors.
func WithValueInfo(vis ...ValueInfoProto) GraphOption { return internalonnx.WithValueInfo(vis...) }

// ModelOption configures MakeModel.
type ModelOption = internalonnx.ModelOption

// MakeModel wraps a graph into a model stamped with [IRVersion] and,
// unless WithOpset is given, the default opset [DefaultOpsetVersion].
func MakeModel(graph *GraphProto, opts ...ModelOption) *ModelProto {
	return internalonnx.MakeModel(graph, opts...)
}

// WithProducerName records the tool that produced the model.
func WithProducerName(name string) ModelOption { return internalonnx.WithProducerName(name) }

// WithProducerVersion records the producer's version.
func WithProducerVersion(v string) ModelOption { return internalonnx.WithProducerVersion(v) }

// WithOpset adds an opset import.
func WithOpset(domain string, version int64) ModelOption {
	return internalonnx.WithOpset(domain, version)
}

// WithMetadata adds a metadata_props entry.
func WithMetadata(key, value string) ModelOption { return internalonnx.WithMetadata(key, value) }

// Marshal encodes a model in the ONNX protobuf binary format.
func Marshal(m *ModelProto) ([]byte, error) { return internalonnx.Marshal(m) }

// WriteFile encodes a model and writes it to path.
func WriteFile(path string, m *ModelProto) error { return internalonnx.WriteFile(path, m) }

// Parse decodes an ONNX protobuf binary model.
func Parse(data []byte) (*ModelProto, error) { return internalonnx.Parse(data) }

// ParseFile reads and decodes an .onnx file.
func ParseFile(path string) (*ModelProto, error) { return internalonnx.ParseFile(path) }

// Check validates graph structure and reports every finding at once.
func Check(m *ModelProto) error { return internalonnx.Check(m) }

// InferShapes returns a copy of m with inferred intermediate tensor types
// recorded in the graph's value_info.
func InferShapes(m *ModelProto) (*ModelProto, error) { return internalonnx.InferShapes(m) }

// Fingerprint hashes a model's binary encoding with xxHash64.
func Fingerprint(m *ModelProto) (uint64, error) { return internalonnx.Fingerprint(m) }

// ModelInfo summarizes a model.
type ModelInfo = internalonnx.ModelInfo

// Info summarizes an in-memory model.
func Info(m *ModelProto) *ModelInfo { return internalonnx.Info(m) }

// GetModelInfo summarizes an .onnx file.
//
// Example:
//
//	info, err := onnx.GetModelInfo("attention.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Producer: %s\n", info.ProducerName)
//	fmt.Printf("Inputs: %v\n", info.InputNames)
func GetModelInfo(path string) (*ModelInfo, error) { return internalonnx.GetModelInfo(path) }

// FormatType renders a tensor type as "FLOAT[batch, 4]".
func FormatType(t *TensorTypeProto) string { return internalonnx.FormatType(t) }

// ListSupportedOps returns the default-domain operators whose arity Check
// verifies.
func ListSupportedOps() []string {
	return operators.NewRegistry().SupportedOps()
}

// BuildAttention returns the two-MatMul attention model:
// A = MatMul(Q, K), O = MatMul(A, V), all tensors
// FLOAT[batch, head, sequence, hidden].
func BuildAttention() *ModelProto { return attention.Build() }

// LoadDescription builds a model from a YAML graph description file.
func LoadDescription(path string) (*ModelProto, error) {
	d, err := graphdef.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return d.Build()
}
