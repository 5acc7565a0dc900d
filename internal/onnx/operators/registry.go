package operators

import (
	"fmt"
	"sort"
)

// Variadic marks an unbounded input or output count.
const Variadic = -1

// Kind tells shape inference how a node's first output relates to its inputs.
type Kind int

// Operator kinds.
const (
	KindOpaque    Kind = iota // output shape cannot be derived statically
	KindSameShape             // output mirrors the first input
	KindBroadcast             // numpy multidirectional broadcasting of all inputs
	KindMatMul                // numpy matmul
	KindTranspose             // permutation given by the "perm" attribute
)

// Schema describes one operator of the default ai.onnx domain.
type Schema struct {
	OpType     string
	MinInputs  int
	MaxInputs  int // Variadic for no upper bound
	MinOutputs int
	MaxOutputs int // Variadic for no upper bound
	Kind       Kind
}

// CheckArity reports whether a node with the given input and output
// counts satisfies the schema.
func (s Schema) CheckArity(inputs, outputs int) error {
	if inputs < s.MinInputs || (s.MaxInputs != Variadic && inputs > s.MaxInputs) {
		return fmt.Errorf("%s expects %s inputs, got %d", s.OpType, span(s.MinInputs, s.MaxInputs), inputs)
	}
	if outputs < s.MinOutputs || (s.MaxOutputs != Variadic && outputs > s.MaxOutputs) {
		return fmt.Errorf("%s expects %s outputs, got %d", s.OpType, span(s.MinOutputs, s.MaxOutputs), outputs)
	}
	return nil
}

func span(lo, hi int) string {
	switch {
	case hi == Variadic:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprintf("%d", lo)
	default:
		return fmt.Sprintf("%d to %d", lo, hi)
	}
}

// Registry maps ONNX operator types to schemas.
type Registry struct {
	schemas map[string]Schema
}

// NewRegistry creates a registry holding the core operator schemas.
func NewRegistry() *Registry {
	r := &Registry{
		schemas: make(map[string]Schema),
	}

	r.registerMathOps()
	r.registerActivations()
	r.registerShapeOps()
	r.registerUtilityOps()

	return r
}

// Register adds or replaces a schema.
func (r *Registry) Register(s Schema) {
	r.schemas[s.OpType] = s
}

// Get returns the schema for an operator type.
func (r *Registry) Get(opType string) (Schema, bool) {
	s, ok := r.schemas[opType]
	return s, ok
}

// SupportedOps returns all registered operator types, sorted.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.schemas))
	for op := range r.schemas {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// fixed registers an operator with exact input and output counts.
func (r *Registry) fixed(opType string, inputs, outputs int, kind Kind) {
	r.Register(Schema{
		OpType:     opType,
		MinInputs:  inputs,
		MaxInputs:  inputs,
		MinOutputs: outputs,
		MaxOutputs: outputs,
		Kind:       kind,
	})
}
