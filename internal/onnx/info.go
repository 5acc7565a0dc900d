package onnx

import (
	"strconv"
	"strings"
)

// ModelInfo contains basic information about an ONNX model.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	GraphName       string
	InputNames      []string
	OutputNames     []string
	NodeCount       int
	WeightCount     int
}

// Info summarizes a model. Initializers listed as graph inputs are not
// reported as inputs.
func Info(m *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:       m.IRVersion,
		ProducerName:    m.ProducerName,
		ProducerVersion: m.ProducerVersion,
	}
	info.OpsetVersion, _ = defaultOpset(m)

	if m.Graph != nil {
		g := m.Graph
		info.GraphName = g.Name

		initNames := make(map[string]bool)
		for i := range g.Initializers {
			initNames[g.Initializers[i].Name] = true
		}
		for i := range g.Inputs {
			if !initNames[g.Inputs[i].Name] {
				info.InputNames = append(info.InputNames, g.Inputs[i].Name)
			}
		}
		for i := range g.Outputs {
			info.OutputNames = append(info.OutputNames, g.Outputs[i].Name)
		}

		info.NodeCount = len(g.Nodes)
		info.WeightCount = len(g.Initializers)
	}

	return info
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	m, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Info(m), nil
}

// FormatShape renders a shape as "[batch, head, 4, ?]". Unknown dimensions
// print as "?"; a nil shape (unknown rank) prints as "?". A fixed zero
// prints as "0".
func FormatShape(s *TensorShapeProto) string {
	if s == nil {
		return "?"
	}
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		switch {
		case d.DimParam != "":
			parts[i] = d.DimParam
		case d.Fixed():
			parts[i] = strconv.FormatInt(d.DimValue, 10)
		default:
			parts[i] = "?"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatType renders a tensor type as "FLOAT[batch, 4]".
func FormatType(t *TensorTypeProto) string {
	if t == nil {
		return "?"
	}
	return ElemTypeName(t.ElemType) + FormatShape(t.Shape)
}
