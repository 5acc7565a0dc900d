package onnx

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from its binary protobuf encoding.
// Fields that are not modeled by this package are skipped.
func Parse(data []byte) (*ModelProto, error) {
	p := &parser{data: data}
	model := &ModelProto{}
	if err := p.readModelProto(model); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}

// parser decodes the protobuf wire format with protowire, one read method
// per message. data shrinks from the front as fields are consumed.
type parser struct {
	data []byte
}

// fields calls fn for every tag in the message until the data is exhausted.
// fn must consume the field value (or skip it).
func (p *parser) fields(fn func(num protowire.Number, typ protowire.Type) error) error {
	for len(p.data) > 0 {
		num, typ, n := protowire.ConsumeTag(p.data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		p.data = p.data[n:]
		if err := fn(num, typ); err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
	}
	return nil
}

// embedded reads a length-delimited submessage and decodes it with read.
func (p *parser) embedded(typ protowire.Type, read func(sub *parser) error) error {
	data, err := p.readBytes(typ)
	if err != nil {
		return err
	}
	return read(&parser{data: data})
}

//nolint:gocyclo,cyclop // One case per ModelProto field.
func (p *parser) readModelProto(m *ModelProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // ir_version
			m.IRVersion, err = p.readVarint(typ)
		case 2: // producer_name
			m.ProducerName, err = p.readString(typ)
		case 3: // producer_version
			m.ProducerVersion, err = p.readString(typ)
		case 4: // domain
			m.Domain, err = p.readString(typ)
		case 5: // model_version
			m.ModelVersion, err = p.readVarint(typ)
		case 6: // doc_string
			m.DocString, err = p.readString(typ)
		case 7: // graph
			m.Graph = &GraphProto{}
			err = p.embedded(typ, func(sub *parser) error { return sub.readGraphProto(m.Graph) })
		case 8: // opset_import
			var opset OperatorSetID
			err = p.embedded(typ, func(sub *parser) error { return sub.readOperatorSetID(&opset) })
			m.OpsetImport = append(m.OpsetImport, opset)
		case 14: // metadata_props
			var entry StringStringEntry
			err = p.embedded(typ, func(sub *parser) error { return sub.readStringStringEntry(&entry) })
			m.MetadataProps = append(m.MetadataProps, entry)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

//nolint:gocyclo,cyclop // One case per GraphProto field.
func (p *parser) readGraphProto(m *GraphProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // node
			var node NodeProto
			err = p.embedded(typ, func(sub *parser) error { return sub.readNodeProto(&node) })
			m.Nodes = append(m.Nodes, node)
		case 2: // name
			m.Name, err = p.readString(typ)
		case 5: // initializer
			var tensor TensorProto
			err = p.embedded(typ, func(sub *parser) error { return sub.readTensorProto(&tensor) })
			m.Initializers = append(m.Initializers, tensor)
		case 10: // doc_string
			m.DocString, err = p.readString(typ)
		case 11, 12, 13: // input, output, value_info
			var vi ValueInfoProto
			err = p.embedded(typ, func(sub *parser) error { return sub.readValueInfoProto(&vi) })
			switch num {
			case 11:
				m.Inputs = append(m.Inputs, vi)
			case 12:
				m.Outputs = append(m.Outputs, vi)
			default:
				m.ValueInfo = append(m.ValueInfo, vi)
			}
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

func (p *parser) readNodeProto(m *NodeProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		var s string
		switch num {
		case 1: // input
			s, err = p.readString(typ)
			m.Inputs = append(m.Inputs, s)
		case 2: // output
			s, err = p.readString(typ)
			m.Outputs = append(m.Outputs, s)
		case 3: // name
			m.Name, err = p.readString(typ)
		case 4: // op_type
			m.OpType, err = p.readString(typ)
		case 5: // attribute
			var attr AttributeProto
			err = p.embedded(typ, func(sub *parser) error { return sub.readAttributeProto(&attr) })
			m.Attributes = append(m.Attributes, attr)
		case 6: // doc_string
			m.DocString, err = p.readString(typ)
		case 7: // domain
			m.Domain, err = p.readString(typ)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

//nolint:gocyclo,cyclop // One case per TensorProto field.
func (p *parser) readTensorProto(m *TensorProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // dims
			m.Dims, err = p.readInt64s(typ, m.Dims)
		case 2: // data_type
			m.DataType, err = p.readInt32(typ)
		case 4: // float_data
			m.FloatData, err = p.readFloats(typ, m.FloatData)
		case 5: // int32_data
			var vs []int64
			vs, err = p.readInt64s(typ, nil)
			for _, v := range vs {
				m.Int32Data = append(m.Int32Data, int32(v)) //nolint:gosec // G115: ONNX protobuf varint fits in int32.
			}
		case 7: // int64_data
			m.Int64Data, err = p.readInt64s(typ, m.Int64Data)
		case 8: // name
			m.Name, err = p.readString(typ)
		case 9: // raw_data
			m.RawData, err = p.readBytesCopy(typ)
		case 12: // doc_string
			m.DocString, err = p.readString(typ)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

func (p *parser) readValueInfoProto(m *ValueInfoProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // name
			m.Name, err = p.readString(typ)
		case 2: // type
			m.Type = &TypeProto{}
			err = p.embedded(typ, func(sub *parser) error { return sub.readTypeProto(m.Type) })
		case 3: // doc_string
			m.DocString, err = p.readString(typ)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

func (p *parser) readTypeProto(m *TypeProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		if num != 1 { // tensor_type
			return p.skipField(num, typ)
		}
		m.TensorType = &TensorTypeProto{}
		return p.embedded(typ, func(sub *parser) error { return sub.readTensorTypeProto(m.TensorType) })
	})
}

func (p *parser) readTensorTypeProto(m *TensorTypeProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // elem_type
			m.ElemType, err = p.readInt32(typ)
		case 2: // shape
			m.Shape = &TensorShapeProto{}
			err = p.embedded(typ, func(sub *parser) error { return sub.readTensorShapeProto(m.Shape) })
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

func (p *parser) readTensorShapeProto(m *TensorShapeProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		if num != 1 { // dim
			return p.skipField(num, typ)
		}
		var dim DimensionProto
		err := p.embedded(typ, func(sub *parser) error { return sub.readDimensionProto(&dim) })
		m.Dims = append(m.Dims, dim)
		return err
	})
}

func (p *parser) readDimensionProto(m *DimensionProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // dim_value, the last member of the oneof wins
			m.DimValue, err = p.readVarint(typ)
			m.DimParam, m.HasValue = "", true
		case 2: // dim_param
			m.DimParam, err = p.readString(typ)
			m.DimValue, m.HasValue = 0, false
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

//nolint:gocognit,gocyclo,cyclop // One case per AttributeProto field.
func (p *parser) readAttributeProto(m *AttributeProto) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // name
			m.Name, err = p.readString(typ)
		case 2: // f
			m.F, err = p.readFloat32(typ)
		case 3: // i
			m.I, err = p.readVarint(typ)
		case 4: // s
			m.S, err = p.readBytesCopy(typ)
		case 5: // t
			m.T = &TensorProto{}
			err = p.embedded(typ, func(sub *parser) error { return sub.readTensorProto(m.T) })
		case 6: // g
			m.G = &GraphProto{}
			err = p.embedded(typ, func(sub *parser) error { return sub.readGraphProto(m.G) })
		case 7: // floats
			m.Floats, err = p.readFloats(typ, m.Floats)
		case 8: // ints
			m.Ints, err = p.readInt64s(typ, m.Ints)
		case 9: // strings
			var b []byte
			b, err = p.readBytesCopy(typ)
			m.Strings = append(m.Strings, b)
		case 10: // tensors
			var tensor TensorProto
			err = p.embedded(typ, func(sub *parser) error { return sub.readTensorProto(&tensor) })
			m.Tensors = append(m.Tensors, tensor)
		case 11: // graphs
			var graph GraphProto
			err = p.embedded(typ, func(sub *parser) error { return sub.readGraphProto(&graph) })
			m.Graphs = append(m.Graphs, graph)
		case 13: // doc_string
			m.DocString, err = p.readString(typ)
		case 20: // type
			m.Type, err = p.readInt32(typ)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

func (p *parser) readOperatorSetID(m *OperatorSetID) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // domain
			m.Domain, err = p.readString(typ)
		case 2: // version
			m.Version, err = p.readVarint(typ)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

func (p *parser) readStringStringEntry(m *StringStringEntry) error {
	return p.fields(func(num protowire.Number, typ protowire.Type) error {
		var err error
		switch num {
		case 1: // key
			m.Key, err = p.readString(typ)
		case 2: // value
			m.Value, err = p.readString(typ)
		default:
			err = p.skipField(num, typ)
		}
		return err
	})
}

// errWireType reports a known field encoded with an unexpected wire type.
func errWireType(got, want protowire.Type) error {
	return fmt.Errorf("wire type %d, want %d", got, want)
}

// readVarint reads a varint-encoded int64.
func (p *parser) readVarint(typ protowire.Type) (int64, error) {
	if typ != protowire.VarintType {
		return 0, errWireType(typ, protowire.VarintType)
	}
	v, n := protowire.ConsumeVarint(p.data)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	p.data = p.data[n:]
	return int64(v), nil //nolint:gosec // G115: Protobuf varint fits in int64.
}

// readInt32 reads a varint-encoded int32.
func (p *parser) readInt32(typ protowire.Type) (int32, error) {
	v, err := p.readVarint(typ)
	if err != nil {
		return 0, err
	}
	return int32(v), nil //nolint:gosec // G115: Protobuf varint fits in int32.
}

// readBytes reads a length-delimited byte slice. The result aliases p.data.
func (p *parser) readBytes(typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, errWireType(typ, protowire.BytesType)
	}
	v, n := protowire.ConsumeBytes(p.data)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	p.data = p.data[n:]
	return v, nil
}

// readBytesCopy is readBytes for values kept in the decoded model, so that
// the model does not pin the input buffer.
func (p *parser) readBytesCopy(typ protowire.Type) ([]byte, error) {
	data, err := p.readBytes(typ)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

func (p *parser) readString(typ protowire.Type) (string, error) {
	data, err := p.readBytes(typ)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readFloat32 reads a 32-bit float.
func (p *parser) readFloat32(typ protowire.Type) (float32, error) {
	if typ != protowire.Fixed32Type {
		return 0, errWireType(typ, protowire.Fixed32Type)
	}
	bits, n := protowire.ConsumeFixed32(p.data)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	p.data = p.data[n:]
	return math.Float32frombits(bits), nil
}

// readInt64s appends a repeated varint field, packed or not, to dst.
func (p *parser) readInt64s(typ protowire.Type, dst []int64) ([]int64, error) {
	if typ != protowire.BytesType {
		v, err := p.readVarint(typ)
		if err != nil {
			return dst, err
		}
		return append(dst, v), nil
	}
	data, err := p.readBytes(typ)
	if err != nil {
		return dst, err
	}
	sub := &parser{data: data}
	for len(sub.data) > 0 {
		v, err := sub.readVarint(protowire.VarintType)
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// readFloats appends a repeated float field, packed or not, to dst.
func (p *parser) readFloats(typ protowire.Type, dst []float32) ([]float32, error) {
	if typ != protowire.BytesType {
		v, err := p.readFloat32(typ)
		if err != nil {
			return dst, err
		}
		return append(dst, v), nil
	}
	data, err := p.readBytes(typ)
	if err != nil {
		return dst, err
	}
	if len(data)%4 != 0 {
		return dst, fmt.Errorf("packed floats: length %d is not a multiple of 4", len(data))
	}
	sub := &parser{data: data}
	for len(sub.data) > 0 {
		v, err := sub.readFloat32(protowire.Fixed32Type)
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
	}
	return dst, nil
}

// skipField skips the value of a field this package does not model.
func (p *parser) skipField(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, p.data)
	if n < 0 {
		return protowire.ParseError(n)
	}
	p.data = p.data[n:]
	return nil
}
