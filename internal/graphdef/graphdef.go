// Package graphdef describes ONNX graphs in YAML and builds them.
//
// A description lists the graph's declared inputs and outputs, its nodes in
// order, and model metadata:
//
//	name: attention
//	producer: onnx-bert
//	inputs:
//	  - {name: Q, type: FLOAT, shape: [batch, head, sequence, hidden]}
//	outputs:
//	  - {name: O, type: FLOAT, shape: [batch, 4, ~]}
//	nodes:
//	  - {op: MatMul, inputs: [Q, K], outputs: [A]}
//	  - {op: Transpose, inputs: [A], outputs: [B], attributes: {perm: [0, 1, 3, 2]}}
//
// Shape entries are symbolic (strings), fixed (integers) or unknown (~).
// A missing shape leaves the rank unknown. Building performs no graph
// validation; use onnx.Check for that.
package graphdef

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/onnxgraph/internal/onnx"
)

// Errors returned while decoding or building descriptions.
var (
	ErrUnknownElemType = errors.New("unknown element type")
	ErrBadDim          = errors.New("invalid dimension")
	ErrBadAttribute    = errors.New("unsupported attribute value")
	ErrUnknownBuiltin  = errors.New("unknown builtin graph")
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Description is the YAML form of a model.
type Description struct {
	Name            string            `yaml:"name"`
	Doc             string            `yaml:"doc,omitempty"`
	Producer        string            `yaml:"producer,omitempty"`
	ProducerVersion string            `yaml:"producer_version,omitempty"`
	Domain          string            `yaml:"domain,omitempty"`
	ModelVersion    int64             `yaml:"model_version,omitempty"`
	Opsets          map[string]int64  `yaml:"opsets,omitempty"` // domain -> version; "" is ai.onnx
	Metadata        map[string]string `yaml:"metadata,omitempty"`
	Inputs          []Slot            `yaml:"inputs"`
	Outputs         []Slot            `yaml:"outputs"`
	ValueInfo       []Slot            `yaml:"value_info,omitempty"`
	Nodes           []Node            `yaml:"nodes"`
}

// Slot declares a named, typed tensor.
type Slot struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type,omitempty"` // ONNX spelling, FLOAT when empty
	Shape []Dim  `yaml:"shape,omitempty"`
	Doc   string `yaml:"doc,omitempty"`
}

// Node declares one operator.
type Node struct {
	Op         string               `yaml:"op"`
	Name       string               `yaml:"name,omitempty"`
	Domain     string               `yaml:"domain,omitempty"`
	Doc        string               `yaml:"doc,omitempty"`
	Inputs     []string             `yaml:"inputs"`
	Outputs    []string             `yaml:"outputs"`
	Attributes map[string]yaml.Node `yaml:"attributes,omitempty"`
}

// Dim is a decoded shape entry.
type Dim struct {
	onnx.Dim
}

// UnmarshalYAML accepts a string, a non-negative integer, or null.
func (d *Dim) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w at line %d: expected a scalar", ErrBadDim, value.Line)
	}
	switch value.Tag {
	case "!!null":
		d.Dim = onnx.Dim{}
	case "!!int":
		n, err := strconv.ParseInt(value.Value, 0, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w at line %d: %q", ErrBadDim, value.Line, value.Value)
		}
		d.Dim = onnx.Value(n)
	case "!!str":
		d.Dim = onnx.Param(value.Value)
	default:
		return fmt.Errorf("%w at line %d: %q", ErrBadDim, value.Line, value.Value)
	}
	return nil
}

// Load decodes a description. Unknown keys are rejected.
func Load(r io.Reader) (*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Description
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse graph description: %w", err)
	}
	return &d, nil
}

// LoadFile decodes a description from a file.
func LoadFile(path string) (*Description, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the user.
	if err != nil {
		return nil, fmt.Errorf("failed to read graph description: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Builtin returns a description shipped with the module, e.g. "attention".
func Builtin(name string) (*Description, error) {
	f, err := builtinFS.Open(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}
	defer f.Close()
	return Load(f)
}

// Builtins lists the names accepted by Builtin.
func Builtins() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

// Build turns the description into a model.
func (d *Description) Build() (*onnx.ModelProto, error) {
	inputs, err := slots(d.Inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	outputs, err := slots(d.Outputs)
	if err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	valueInfo, err := slots(d.ValueInfo)
	if err != nil {
		return nil, fmt.Errorf("value_info: %w", err)
	}

	var nodes []onnx.NodeProto
	for i := range d.Nodes {
		node, err := d.Nodes[i].build()
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, d.Nodes[i].Op, err)
		}
		nodes = append(nodes, node)
	}

	var graphOpts []onnx.GraphOption
	if len(valueInfo) > 0 {
		graphOpts = append(graphOpts, onnx.WithValueInfo(valueInfo...))
	}
	if d.Doc != "" {
		graphOpts = append(graphOpts, onnx.WithGraphDoc(d.Doc))
	}
	graph := onnx.MakeGraph(nodes, d.Name, inputs, outputs, graphOpts...)

	var modelOpts []onnx.ModelOption
	if d.Producer != "" {
		modelOpts = append(modelOpts, onnx.WithProducerName(d.Producer))
	}
	if d.ProducerVersion != "" {
		modelOpts = append(modelOpts, onnx.WithProducerVersion(d.ProducerVersion))
	}
	if d.Domain != "" {
		modelOpts = append(modelOpts, onnx.WithModelDomain(d.Domain))
	}
	if d.ModelVersion != 0 {
		modelOpts = append(modelOpts, onnx.WithModelVersion(d.ModelVersion))
	}
	for _, domain := range sortedKeys(d.Opsets) {
		modelOpts = append(modelOpts, onnx.WithOpset(domain, d.Opsets[domain]))
	}
	for _, key := range sortedKeys(d.Metadata) {
		modelOpts = append(modelOpts, onnx.WithMetadata(key, d.Metadata[key]))
	}
	return onnx.MakeModel(graph, modelOpts...), nil
}

func slots(in []Slot) ([]onnx.ValueInfoProto, error) {
	var out []onnx.ValueInfoProto
	for _, s := range in {
		elem := int32(onnx.TensorProtoFloat)
		if s.Type != "" {
			var ok bool
			if elem, ok = onnx.ElemTypeByName(strings.ToUpper(s.Type)); !ok {
				return nil, fmt.Errorf("%w %q for %q", ErrUnknownElemType, s.Type, s.Name)
			}
		}
		var shape []onnx.Dim
		if s.Shape != nil {
			shape = make([]onnx.Dim, len(s.Shape))
			for i, d := range s.Shape {
				shape[i] = d.Dim
			}
		}
		vi := onnx.MakeTensorValueInfo(s.Name, elem, shape)
		vi.DocString = s.Doc
		out = append(out, vi)
	}
	return out, nil
}

func (n *Node) build() (onnx.NodeProto, error) {
	var opts []onnx.NodeOption
	if n.Name != "" {
		opts = append(opts, onnx.WithNodeName(n.Name))
	}
	if n.Domain != "" {
		opts = append(opts, onnx.WithDomain(n.Domain))
	}
	if n.Doc != "" {
		opts = append(opts, onnx.WithNodeDoc(n.Doc))
	}
	for _, name := range sortedKeys(n.Attributes) {
		value := n.Attributes[name]
		attr, err := attribute(name, &value)
		if err != nil {
			return onnx.NodeProto{}, err
		}
		opts = append(opts, onnx.WithAttribute(attr))
	}
	return onnx.MakeNode(n.Op, n.Inputs, n.Outputs, opts...), nil
}

// attribute maps a YAML value to an ONNX attribute: int, float, string,
// or a list of ints or floats. A list holding any float is FLOATS.
func attribute(name string, value *yaml.Node) (onnx.AttributeProto, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		switch value.Tag {
		case "!!int":
			var v int64
			if err := value.Decode(&v); err != nil {
				return onnx.AttributeProto{}, fmt.Errorf("%w: %s: %w", ErrBadAttribute, name, err)
			}
			return onnx.AttrInt(name, v), nil
		case "!!float":
			var v float32
			if err := value.Decode(&v); err != nil {
				return onnx.AttributeProto{}, fmt.Errorf("%w: %s: %w", ErrBadAttribute, name, err)
			}
			return onnx.AttrFloat(name, v), nil
		case "!!str":
			return onnx.AttrString(name, value.Value), nil
		}
	case yaml.SequenceNode:
		floats := false
		for _, item := range value.Content {
			switch {
			case item.Kind == yaml.ScalarNode && item.Tag == "!!float":
				floats = true
			case item.Kind == yaml.ScalarNode && item.Tag == "!!int":
			default:
				return onnx.AttributeProto{}, fmt.Errorf("%w: %s: lists may hold only numbers", ErrBadAttribute, name)
			}
		}
		if floats {
			var vs []float32
			if err := value.Decode(&vs); err != nil {
				return onnx.AttributeProto{}, fmt.Errorf("%w: %s: %w", ErrBadAttribute, name, err)
			}
			return onnx.AttrFloats(name, vs...), nil
		}
		var vs []int64
		if err := value.Decode(&vs); err != nil {
			return onnx.AttributeProto{}, fmt.Errorf("%w: %s: %w", ErrBadAttribute, name, err)
		}
		return onnx.AttrInts(name, vs...), nil
	}
	return onnx.AttributeProto{}, fmt.Errorf("%w: %s at line %d", ErrBadAttribute, name, value.Line)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
