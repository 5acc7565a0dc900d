package operators

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	// Check that essential operators are registered
	essentialOps := []string{
		"Add", "Sub", "Mul", "Div", "MatMul",
		"Relu", "Sigmoid", "Tanh", "Softmax",
		"Reshape", "Transpose",
		"Identity", "Dropout",
	}

	for _, op := range essentialOps {
		if _, ok := r.Get(op); !ok {
			t.Errorf("Expected operator %s to be registered", op)
		}
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get("UnknownOp"); ok {
		t.Error("Expected unknown operator to not be found")
	}
}

func TestSupportedOps(t *testing.T) {
	ops := NewRegistry().SupportedOps()

	if len(ops) < 20 {
		t.Errorf("Expected at least 20 supported ops, got %d", len(ops))
	}
	assert.True(t, sort.StringsAreSorted(ops), "SupportedOps should be sorted")
}

func TestRegisterCustomOp(t *testing.T) {
	r := NewRegistry()

	r.Register(Schema{OpType: "MyCustomOp", MinInputs: 1, MaxInputs: 1, MinOutputs: 1, MaxOutputs: 1})

	s, ok := r.Get("MyCustomOp")
	require.True(t, ok, "Expected custom operator to be registered")
	assert.Equal(t, KindOpaque, s.Kind)
}

func TestMatMulSchema(t *testing.T) {
	s, ok := NewRegistry().Get("MatMul")
	require.True(t, ok)

	assert.Equal(t, KindMatMul, s.Kind)
	assert.NoError(t, s.CheckArity(2, 1))
	assert.ErrorContains(t, s.CheckArity(1, 1), "MatMul expects 2 inputs, got 1")
	assert.ErrorContains(t, s.CheckArity(2, 2), "MatMul expects 1 outputs, got 2")
}

func TestCheckArityRanges(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		op      string
		inputs  int
		outputs int
		wantErr string
	}{
		{"Gemm", 2, 1, ""},
		{"Gemm", 3, 1, ""},
		{"Gemm", 4, 1, "Gemm expects 2 to 3 inputs, got 4"},
		{"Sum", 7, 1, ""},
		{"Sum", 0, 1, "Sum expects at least 1 inputs, got 0"},
		{"Split", 1, 5, ""},
		{"Dropout", 1, 2, ""},
		{"Dropout", 1, 3, "Dropout expects 1 to 2 outputs, got 3"},
		{"Constant", 0, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			s, ok := r.Get(tt.op)
			require.True(t, ok)
			err := s.CheckArity(tt.inputs, tt.outputs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
