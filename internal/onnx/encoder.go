package onnx

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrNilModel is returned when a nil model is passed for encoding or checking.
var ErrNilModel = errors.New("model is nil")

// Marshal encodes a model into the ONNX binary protobuf representation.
//
// Scalar fields holding their zero value are omitted, as in proto3.
// Repeated numeric fields are written packed.
func Marshal(m *ModelProto) ([]byte, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	e := &encoder{}
	e.writeModelProto(m)
	if e.err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", e.err)
	}
	return e.buf, nil
}

// WriteFile encodes a model and writes it to path.
func WriteFile(path string, m *ModelProto) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// encoder appends protobuf wire data with protowire.
// The first error sticks; later writes still run but are discarded.
type encoder struct {
	buf []byte
	err error
}

func (e *encoder) varint(num protowire.Number, v uint64) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

func (e *encoder) bytes(num protowire.Number, b []byte) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, b)
}

// int64 fields are encoded as two's complement, negative values take 10 bytes.
func (e *encoder) putInt(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.varint(num, uint64(v)) //nolint:gosec // G115: two's complement is the protobuf int64 encoding.
}

func (e *encoder) putFloat(num protowire.Number, v float32) {
	bits := math.Float32bits(v)
	if bits == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.Fixed32Type)
	e.buf = protowire.AppendFixed32(e.buf, bits)
}

func (e *encoder) putString(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
}

func (e *encoder) putBytes(num protowire.Number, b []byte) {
	if len(b) == 0 {
		return
	}
	e.bytes(num, b)
}

// repeatedString writes every element, empty ones included: an empty node
// input marks an omitted optional input and must survive the round trip.
func (e *encoder) repeatedString(num protowire.Number, ss []string) {
	for _, s := range ss {
		e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
		e.buf = protowire.AppendString(e.buf, s)
	}
}

func (e *encoder) packedInt64s(num protowire.Number, vs []int64) {
	if len(vs) == 0 {
		return
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // G115: two's complement encoding.
	}
	e.bytes(num, packed)
}

func (e *encoder) packedFloats(num protowire.Number, vs []float32) {
	if len(vs) == 0 {
		return
	}
	packed := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	e.bytes(num, packed)
}

// message writes an embedded message. It is written even when empty, so
// a present-but-empty submessage stays present after decoding.
func (e *encoder) message(num protowire.Number, write func(sub *encoder)) {
	sub := &encoder{}
	write(sub)
	if sub.err != nil && e.err == nil {
		e.err = sub.err
	}
	e.bytes(num, sub.buf)
}

func (e *encoder) writeModelProto(m *ModelProto) {
	e.putInt(1, m.IRVersion)
	e.putString(2, m.ProducerName)
	e.putString(3, m.ProducerVersion)
	e.putString(4, m.Domain)
	e.putInt(5, m.ModelVersion)
	e.putString(6, m.DocString)
	if m.Graph != nil {
		e.message(7, func(sub *encoder) { sub.writeGraphProto(m.Graph) })
	}
	for i := range m.OpsetImport {
		opset := &m.OpsetImport[i]
		e.message(8, func(sub *encoder) {
			sub.putString(1, opset.Domain)
			sub.putInt(2, opset.Version)
		})
	}
	for i := range m.MetadataProps {
		entry := &m.MetadataProps[i]
		e.message(14, func(sub *encoder) {
			sub.putString(1, entry.Key)
			sub.putString(2, entry.Value)
		})
	}
}

func (e *encoder) writeGraphProto(g *GraphProto) {
	for i := range g.Nodes {
		node := &g.Nodes[i]
		e.message(1, func(sub *encoder) { sub.writeNodeProto(node) })
	}
	e.putString(2, g.Name)
	for i := range g.Initializers {
		tensor := &g.Initializers[i]
		e.message(5, func(sub *encoder) { sub.writeTensorProto(tensor) })
	}
	e.putString(10, g.DocString)
	e.valueInfos(11, g.Inputs)
	e.valueInfos(12, g.Outputs)
	e.valueInfos(13, g.ValueInfo)
}

func (e *encoder) writeNodeProto(n *NodeProto) {
	e.repeatedString(1, n.Inputs)
	e.repeatedString(2, n.Outputs)
	e.putString(3, n.Name)
	e.putString(4, n.OpType)
	for i := range n.Attributes {
		attr := &n.Attributes[i]
		e.message(5, func(sub *encoder) { sub.writeAttributeProto(attr) })
	}
	e.putString(6, n.DocString)
	e.putString(7, n.Domain)
}

func (e *encoder) writeTensorProto(t *TensorProto) {
	e.packedInt64s(1, t.Dims)
	e.putInt(2, int64(t.DataType))
	e.packedFloats(4, t.FloatData)
	if len(t.Int32Data) > 0 {
		wide := make([]int64, len(t.Int32Data))
		for i, v := range t.Int32Data {
			wide[i] = int64(v)
		}
		e.packedInt64s(5, wide)
	}
	e.packedInt64s(7, t.Int64Data)
	e.putString(8, t.Name)
	e.putBytes(9, t.RawData)
	e.putString(12, t.DocString)
}

func (e *encoder) valueInfos(num protowire.Number, vis []ValueInfoProto) {
	for i := range vis {
		vi := &vis[i]
		e.message(num, func(sub *encoder) { sub.writeValueInfoProto(vi) })
	}
}

func (e *encoder) writeValueInfoProto(vi *ValueInfoProto) {
	e.putString(1, vi.Name)
	if vi.Type != nil {
		e.message(2, func(sub *encoder) {
			if vi.Type.TensorType != nil {
				sub.message(1, func(tt *encoder) { tt.writeTensorTypeProto(vi.Type.TensorType) })
			}
		})
	}
	e.putString(3, vi.DocString)
}

func (e *encoder) writeTensorTypeProto(t *TensorTypeProto) {
	e.putInt(1, int64(t.ElemType))
	if t.Shape == nil {
		return
	}
	e.message(2, func(sub *encoder) {
		for i := range t.Shape.Dims {
			dim := &t.Shape.Dims[i]
			if dim.Fixed() && dim.DimParam != "" && sub.err == nil {
				sub.err = fmt.Errorf("dimension %d sets both value %d and param %q", i, dim.DimValue, dim.DimParam)
			}
			sub.message(1, func(d *encoder) {
				if dim.Fixed() {
					// Written even when zero: a oneof member keeps its presence.
					d.varint(1, uint64(dim.DimValue)) //nolint:gosec // G115: two's complement encoding.
				}
				d.putString(2, dim.DimParam)
			})
		}
	})
}

func (e *encoder) writeAttributeProto(a *AttributeProto) {
	e.putString(1, a.Name)
	e.putFloat(2, a.F)
	e.putInt(3, a.I)
	e.putBytes(4, a.S)
	if a.T != nil {
		e.message(5, func(sub *encoder) { sub.writeTensorProto(a.T) })
	}
	if a.G != nil {
		e.message(6, func(sub *encoder) { sub.writeGraphProto(a.G) })
	}
	e.packedFloats(7, a.Floats)
	e.packedInt64s(8, a.Ints)
	for _, s := range a.Strings {
		e.bytes(9, s)
	}
	for i := range a.Tensors {
		tensor := &a.Tensors[i]
		e.message(10, func(sub *encoder) { sub.writeTensorProto(tensor) })
	}
	for i := range a.Graphs {
		graph := &a.Graphs[i]
		e.message(11, func(sub *encoder) { sub.writeGraphProto(graph) })
	}
	e.putString(13, a.DocString)
	e.putInt(20, int64(a.Type))
}
