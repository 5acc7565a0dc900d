package onnx

import "slices"

// IRVersion is the ONNX IR version stamped by MakeModel.
const IRVersion = 10

// DefaultOpsetVersion is the default-domain opset imported by MakeModel
// when no WithOpset option is given.
const DefaultOpsetVersion = 21

// Dim is one dimension label of a declared shape: symbolic ("batch"),
// fixed (4), or unknown (the zero Dim).
type Dim struct {
	param string
	value int64
	fixed bool
}

// Param returns a symbolic dimension.
func Param(name string) Dim { return Dim{param: name} }

// Value returns a fixed dimension. Value(0) is a fixed zero, not unknown.
func Value(n int64) Dim { return Dim{value: n, fixed: true} }

// Params is shorthand for a shape made only of symbolic dimensions.
func Params(names ...string) []Dim {
	dims := make([]Dim, len(names))
	for i, name := range names {
		dims[i] = Param(name)
	}
	return dims
}

func (d Dim) proto() DimensionProto {
	return DimensionProto{DimParam: d.param, DimValue: d.value, HasValue: d.fixed}
}

// MakeTensorValueInfo declares a named, typed tensor slot.
//
// Shape labels are not validated and duplicate names are not detected.
// A nil shape leaves the rank unknown; an empty non-nil shape is a scalar.
func MakeTensorValueInfo(name string, elemType int32, shape []Dim) ValueInfoProto {
	tt := &TensorTypeProto{ElemType: elemType}
	if shape != nil {
		tt.Shape = &TensorShapeProto{}
		for _, d := range shape {
			tt.Shape.Dims = append(tt.Shape.Dims, d.proto())
		}
	}
	return ValueInfoProto{
		Name: name,
		Type: &TypeProto{TensorType: tt},
	}
}

// NodeOption configures MakeNode.
type NodeOption func(*NodeProto)

// WithNodeName sets the node name.
func WithNodeName(name string) NodeOption {
	return func(n *NodeProto) { n.Name = name }
}

// WithDomain places the node in a custom operator domain.
func WithDomain(domain string) NodeOption {
	return func(n *NodeProto) { n.Domain = domain }
}

// WithNodeDoc sets the node doc string.
func WithNodeDoc(doc string) NodeOption {
	return func(n *NodeProto) { n.DocString = doc }
}

// WithAttribute appends an attribute, see AttrInt and friends.
func WithAttribute(attr AttributeProto) NodeOption {
	return func(n *NodeProto) { n.Attributes = append(n.Attributes, attr) }
}

// MakeNode declares an operator node wired to tensors by name.
// Operator arity is not checked here; see Check.
func MakeNode(opType string, inputs, outputs []string, opts ...NodeOption) NodeProto {
	n := NodeProto{
		OpType:  opType,
		Inputs:  clone(inputs),
		Outputs: clone(outputs),
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// AttrInt builds an INT attribute.
func AttrInt(name string, v int64) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoInt, I: v}
}

// AttrFloat builds a FLOAT attribute.
func AttrFloat(name string, v float32) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoFloat, F: v}
}

// AttrString builds a STRING attribute.
func AttrString(name, v string) AttributeProto {
	attr := AttributeProto{Name: name, Type: AttributeProtoString}
	if v != "" {
		attr.S = []byte(v)
	}
	return attr
}

// AttrInts builds an INTS attribute.
func AttrInts(name string, vs ...int64) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoInts, Ints: clone(vs)}
}

// AttrFloats builds a FLOATS attribute.
func AttrFloats(name string, vs ...float32) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoFloats, Floats: clone(vs)}
}

// GraphOption configures MakeGraph.
type GraphOption func(*GraphProto)

// WithInitializers attaches constant tensors to the graph.
func WithInitializers(tensors ...TensorProto) GraphOption {
	return func(g *GraphProto) { g.Initializers = append(g.Initializers, tensors...) }
}

// WithValueInfo declares types for intermediate tensors.
func WithValueInfo(vis ...ValueInfoProto) GraphOption {
	return func(g *GraphProto) { g.ValueInfo = append(g.ValueInfo, vis...) }
}

// WithGraphDoc sets the graph doc string.
func WithGraphDoc(doc string) GraphOption {
	return func(g *GraphProto) { g.DocString = doc }
}

// MakeGraph assembles nodes and declared inputs/outputs, preserving order.
// The argument order follows onnx.helper.make_graph. Node ordering is not
// validated.
func MakeGraph(nodes []NodeProto, name string, inputs, outputs []ValueInfoProto, opts ...GraphOption) *GraphProto {
	g := &GraphProto{
		Name:    name,
		Nodes:   clone(nodes),
		Inputs:  clone(inputs),
		Outputs: clone(outputs),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ModelOption configures MakeModel.
type ModelOption func(*ModelProto)

// WithProducerName records the tool that produced the model.
func WithProducerName(name string) ModelOption {
	return func(m *ModelProto) { m.ProducerName = name }
}

// WithProducerVersion records the producer's version.
func WithProducerVersion(version string) ModelOption {
	return func(m *ModelProto) { m.ProducerVersion = version }
}

// WithModelDomain sets the model's reverse-DNS namespace.
func WithModelDomain(domain string) ModelOption {
	return func(m *ModelProto) { m.Domain = domain }
}

// WithModelVersion sets the model version number.
func WithModelVersion(v int64) ModelOption {
	return func(m *ModelProto) { m.ModelVersion = v }
}

// WithModelDoc sets the model doc string.
func WithModelDoc(doc string) ModelOption {
	return func(m *ModelProto) { m.DocString = doc }
}

// WithOpset adds an opset import. The first use replaces the default import.
func WithOpset(domain string, version int64) ModelOption {
	return func(m *ModelProto) {
		m.OpsetImport = append(m.OpsetImport, OperatorSetID{Domain: domain, Version: version})
	}
}

// WithMetadata adds a metadata_props entry.
func WithMetadata(key, value string) ModelOption {
	return func(m *ModelProto) {
		m.MetadataProps = append(m.MetadataProps, StringStringEntry{Key: key, Value: value})
	}
}

// MakeModel wraps a graph into a model record.
func MakeModel(graph *GraphProto, opts ...ModelOption) *ModelProto {
	m := &ModelProto{
		IRVersion: IRVersion,
		Graph:     graph,
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.OpsetImport) == 0 {
		m.OpsetImport = []OperatorSetID{{Version: DefaultOpsetVersion}}
	}
	return m
}

// clone copies a list. An empty list becomes nil, which is what Parse
// returns for a repeated field with no elements.
func clone[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
