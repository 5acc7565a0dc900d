package onnx

import (
	"errors"
	"fmt"

	"github.com/born-ml/onnxgraph/internal/onnx/operators"
)

// Checker errors. Check wraps each finding so callers can match with errors.Is.
var (
	ErrNoGraph          = errors.New("model has no graph")
	ErrNoDefaultOpset   = errors.New("model does not import the default opset")
	ErrUnnamedGraph     = errors.New("graph has no name")
	ErrEmptyName        = errors.New("empty tensor name")
	ErrMissingOpType    = errors.New("node has no op type")
	ErrDuplicateName    = errors.New("duplicate tensor name")
	ErrUndefinedInput   = errors.New("input used before it is defined")
	ErrUnproducedOutput = errors.New("graph output is never produced")
	ErrArity            = errors.New("operator arity mismatch")
)

// CheckOption configures Check.
type CheckOption func(*checkConfig)

type checkConfig struct {
	registry *operators.Registry
}

// WithRegistry checks arity against a custom operator registry.
func WithRegistry(r *operators.Registry) CheckOption {
	return func(c *checkConfig) { c.registry = r }
}

// Check validates a model the way onnx.checker does for graph structure.
// Builders never call it; it is an explicit, separate step.
//
// All findings are reported at once, joined with errors.Join.
//
//nolint:gocognit,gocyclo,cyclop // Single pass over the graph, one branch per rule.
func Check(m *ModelProto, opts ...CheckOption) error {
	if m == nil {
		return ErrNilModel
	}
	cfg := checkConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = operators.NewRegistry()
	}

	var errs []error
	if _, ok := defaultOpset(m); !ok {
		errs = append(errs, ErrNoDefaultOpset)
	}
	g := m.Graph
	if g == nil {
		return errors.Join(append(errs, ErrNoGraph)...)
	}
	if g.Name == "" {
		errs = append(errs, ErrUnnamedGraph)
	}

	defined := make(map[string]bool)
	for i := range g.Inputs {
		name := g.Inputs[i].Name
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("%w: graph input %d", ErrEmptyName, i))
		case defined[name]:
			errs = append(errs, fmt.Errorf("%w: graph input %q", ErrDuplicateName, name))
		}
		defined[name] = true
	}

	// Since IR version 4 an initializer may also be listed as a graph input.
	initializers := make(map[string]bool)
	for i := range g.Initializers {
		name := g.Initializers[i].Name
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("%w: initializer %d", ErrEmptyName, i))
		case initializers[name]:
			errs = append(errs, fmt.Errorf("%w: initializer %q", ErrDuplicateName, name))
		}
		initializers[name] = true
		defined[name] = true
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]
		label := nodeLabel(i, node)
		if node.OpType == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingOpType, label))
		}
		for _, in := range node.Inputs {
			if in == "" {
				continue // omitted optional input
			}
			if !defined[in] {
				errs = append(errs, fmt.Errorf("%w: %s reads %q, which is not a graph input, initializer or output of a preceding node",
					ErrUndefinedInput, label, in))
			}
		}
		for _, out := range node.Outputs {
			if out == "" {
				continue
			}
			if defined[out] {
				errs = append(errs, fmt.Errorf("%w: %s writes %q, which is already defined", ErrDuplicateName, label, out))
			}
			defined[out] = true
		}
		if isDefaultDomain(node.Domain) {
			if schema, ok := cfg.registry.Get(node.OpType); ok {
				if err := schema.CheckArity(len(node.Inputs), len(node.Outputs)); err != nil {
					errs = append(errs, fmt.Errorf("%w: %s: %w", ErrArity, label, err))
				}
			}
		}
	}

	for i := range g.Outputs {
		name := g.Outputs[i].Name
		if name == "" {
			errs = append(errs, fmt.Errorf("%w: graph output %d", ErrEmptyName, i))
			continue
		}
		if !defined[name] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnproducedOutput, name))
		}
	}

	return errors.Join(errs...)
}

func nodeLabel(i int, node *NodeProto) string {
	if node.Name != "" {
		return fmt.Sprintf("node %d %q (%s)", i, node.Name, node.OpType)
	}
	return fmt.Sprintf("node %d (%s)", i, node.OpType)
}

func isDefaultDomain(domain string) bool {
	return domain == "" || domain == "ai.onnx"
}

// defaultOpset returns the version of the default-domain opset import.
func defaultOpset(m *ModelProto) (int64, bool) {
	for _, opset := range m.OpsetImport {
		if isDefaultDomain(opset.Domain) {
			return opset.Version, true
		}
	}
	return 0, false
}

// TopologicalSort returns nodes in an order where every producer comes
// before its consumers. Already ordered graphs keep their order.
func TopologicalSort(nodes []NodeProto) []NodeProto {
	outputToNode := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			outputToNode[output] = i
		}
	}

	visited := make([]bool, len(nodes))
	result := make([]NodeProto, 0, len(nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, input := range nodes[i].Inputs {
			if dep, ok := outputToNode[input]; ok {
				visit(dep)
			}
		}
		result = append(result, nodes[i])
	}

	for i := range nodes {
		visit(i)
	}
	return result
}
