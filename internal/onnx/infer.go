package onnx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/onnxgraph/internal/onnx/operators"
)

// ErrShapeMismatch is returned when inferred and declared shapes conflict.
var ErrShapeMismatch = errors.New("shape mismatch")

// InferShapes returns a copy of m whose graph ValueInfo also lists the
// inferred types of intermediate tensors. The input model is not modified:
// the model and graph lists of the copy are its own, while the records in
// them share nested data with m.
//
// Nodes of unknown operators, custom domains, or with inputs of unknown
// rank are skipped, and so is everything downstream of them. Symbolic
// dimensions that cannot be proven different are never an error.
func InferShapes(m *ModelProto) (*ModelProto, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if m.Graph == nil {
		return nil, ErrNoGraph
	}
	registry := operators.NewRegistry()

	out := *m
	out.OpsetImport = slices.Clone(m.OpsetImport)
	out.MetadataProps = slices.Clone(m.MetadataProps)
	g := *m.Graph
	g.Nodes = slices.Clone(g.Nodes)
	g.Initializers = slices.Clone(g.Initializers)
	g.Inputs = slices.Clone(g.Inputs)
	g.Outputs = slices.Clone(g.Outputs)
	g.ValueInfo = slices.Clone(g.ValueInfo)
	out.Graph = &g

	types := make(map[string]*TensorTypeProto)
	for i := range g.Initializers {
		init := &g.Initializers[i]
		shape := &TensorShapeProto{}
		for _, d := range init.Dims {
			shape.Dims = append(shape.Dims, DimensionProto{DimValue: d, HasValue: true})
		}
		types[init.Name] = &TensorTypeProto{ElemType: init.DataType, Shape: shape}
	}
	for _, vis := range [][]ValueInfoProto{g.Inputs, g.ValueInfo} {
		for i := range vis {
			if tt := tensorType(&vis[i]); tt != nil {
				types[vis[i].Name] = tt
			}
		}
	}
	declared := make(map[string]*TensorTypeProto)
	for i := range g.Outputs {
		declared[g.Outputs[i].Name] = tensorType(&g.Outputs[i])
	}

	for _, node := range TopologicalSort(g.Nodes) {
		if !isDefaultDomain(node.Domain) || len(node.Outputs) == 0 || node.Outputs[0] == "" {
			continue
		}
		schema, ok := registry.Get(node.OpType)
		if !ok {
			continue
		}
		inputs := make([]*TensorTypeProto, 0, len(node.Inputs))
		for _, name := range node.Inputs {
			tt := types[name]
			if tt == nil || tt.Shape == nil {
				inputs = nil
				break
			}
			inputs = append(inputs, tt)
		}
		if len(inputs) == 0 {
			continue
		}

		inferred, err := inferNode(schema, &node, inputs)
		if err != nil {
			return nil, fmt.Errorf("node %q (%s): %w", node.Name, node.OpType, err)
		}
		if inferred == nil {
			continue
		}

		name := node.Outputs[0]
		if _, exists := types[name]; exists {
			continue
		}
		types[name] = inferred
		if want, isOutput := declared[name]; isOutput {
			if want != nil && !compatible(want, inferred) {
				return nil, fmt.Errorf("%w: output %q declared %s, inferred %s",
					ErrShapeMismatch, name, FormatType(want), FormatType(inferred))
			}
			continue
		}
		g.ValueInfo = append(g.ValueInfo, ValueInfoProto{Name: name, Type: &TypeProto{TensorType: inferred}})
	}

	return &out, nil
}

func tensorType(vi *ValueInfoProto) *TensorTypeProto {
	if vi.Type == nil {
		return nil
	}
	return vi.Type.TensorType
}

func inferNode(schema operators.Schema, node *NodeProto, inputs []*TensorTypeProto) (*TensorTypeProto, error) {
	elem := inputs[0].ElemType
	switch schema.Kind {
	case operators.KindSameShape:
		return &TensorTypeProto{ElemType: elem, Shape: cloneShape(inputs[0].Shape)}, nil
	case operators.KindBroadcast:
		dims := inputs[0].Shape.Dims
		for _, in := range inputs[1:] {
			var err error
			if dims, err = broadcast(dims, in.Shape.Dims); err != nil {
				return nil, err
			}
		}
		return &TensorTypeProto{ElemType: elem, Shape: &TensorShapeProto{Dims: dims}}, nil
	case operators.KindMatMul:
		if len(inputs) != 2 {
			return nil, nil
		}
		dims, err := matMul(inputs[0].Shape.Dims, inputs[1].Shape.Dims)
		if err != nil {
			return nil, err
		}
		return &TensorTypeProto{ElemType: elem, Shape: &TensorShapeProto{Dims: dims}}, nil
	case operators.KindTranspose:
		dims, err := transpose(inputs[0].Shape.Dims, attrInts(node, "perm"))
		if err != nil {
			return nil, err
		}
		return &TensorTypeProto{ElemType: elem, Shape: &TensorShapeProto{Dims: dims}}, nil
	default:
		return nil, nil
	}
}

// matMul follows numpy.matmul: 1-D operands are promoted and the promoted
// axis is dropped again, leading axes broadcast.
func matMul(a, b []DimensionProto) ([]DimensionProto, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: MatMul operands must have rank >= 1", ErrShapeMismatch)
	}
	aVec, bVec := len(a) == 1, len(b) == 1
	if aVec {
		a = []DimensionProto{one, a[0]}
	}
	if bVec {
		b = []DimensionProto{b[0], one}
	}
	k1, k2 := a[len(a)-1], b[len(b)-2]
	if k1.Fixed() && k2.Fixed() && k1.DimValue != k2.DimValue {
		return nil, fmt.Errorf("%w: MatMul inner dimensions %d and %d differ", ErrShapeMismatch, k1.DimValue, k2.DimValue)
	}
	batch, err := broadcast(a[:len(a)-2], b[:len(b)-2])
	if err != nil {
		return nil, err
	}
	out := batch
	if !aVec {
		out = append(out, a[len(a)-2])
	}
	if !bVec {
		out = append(out, b[len(b)-1])
	}
	return out, nil
}

// broadcast applies numpy multidirectional broadcasting to two shapes.
func broadcast(a, b []DimensionProto) ([]DimensionProto, error) {
	n := max(len(a), len(b))
	out := make([]DimensionProto, n)
	for i := 0; i < n; i++ {
		da, db := one, one
		if j := len(a) - n + i; j >= 0 {
			da = a[j]
		}
		if j := len(b) - n + i; j >= 0 {
			db = b[j]
		}
		d, err := mergeBroadcastDim(da, db)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// one is the fixed size used to pad and promote shapes.
var one = DimensionProto{DimValue: 1, HasValue: true}

func sameDim(a, b DimensionProto) bool {
	return a.DimParam == b.DimParam && a.Fixed() == b.Fixed() && a.DimValue == b.DimValue
}

func mergeBroadcastDim(a, b DimensionProto) (DimensionProto, error) {
	switch {
	case sameDim(a, b):
		return a, nil
	case a.Fixed() && a.DimValue == 1:
		return b, nil
	case b.Fixed() && b.DimValue == 1:
		return a, nil
	case a.Fixed() && b.Fixed():
		return DimensionProto{}, fmt.Errorf("%w: cannot broadcast %d with %d", ErrShapeMismatch, a.DimValue, b.DimValue)
	case a.Fixed():
		return a, nil
	case b.Fixed():
		return b, nil
	default:
		// Two different symbols: the result is only known at run time.
		return DimensionProto{}, nil
	}
}

func transpose(dims []DimensionProto, perm []int64) ([]DimensionProto, error) {
	if perm == nil {
		out := slices.Clone(dims)
		slices.Reverse(out)
		return out, nil
	}
	if len(perm) != len(dims) {
		return nil, fmt.Errorf("%w: perm has %d axes, input has rank %d", ErrShapeMismatch, len(perm), len(dims))
	}
	out := make([]DimensionProto, len(dims))
	seen := make([]bool, len(dims))
	for i, p := range perm {
		if p < 0 || int(p) >= len(dims) {
			return nil, fmt.Errorf("%w: perm axis %d out of range", ErrShapeMismatch, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: perm %v repeats axis %d", ErrShapeMismatch, perm, p)
		}
		seen[p] = true
		out[i] = dims[p]
	}
	return out, nil
}

func attrInts(node *NodeProto, name string) []int64 {
	for i := range node.Attributes {
		if node.Attributes[i].Name == name {
			return node.Attributes[i].Ints
		}
	}
	return nil
}

func cloneShape(s *TensorShapeProto) *TensorShapeProto {
	if s == nil {
		return nil
	}
	return &TensorShapeProto{Dims: slices.Clone(s.Dims)}
}

// compatible reports whether an inferred type can satisfy a declared one.
// Only conflicting ranks, element types or fixed sizes are rejected.
func compatible(declared, inferred *TensorTypeProto) bool {
	if declared.ElemType != TensorProtoUndefined && declared.ElemType != inferred.ElemType {
		return false
	}
	if declared.Shape == nil || inferred.Shape == nil {
		return true
	}
	if len(declared.Shape.Dims) != len(inferred.Shape.Dims) {
		return false
	}
	for i, d := range declared.Shape.Dims {
		o := inferred.Shape.Dims[i]
		if d.Fixed() && o.Fixed() && d.DimValue != o.DimValue {
			return false
		}
	}
	return true
}
