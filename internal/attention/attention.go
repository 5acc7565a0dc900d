// Package attention builds the two-MatMul attention graph.
//
// The graph computes O = (Q · K) · V. Scaling by 1/sqrt(hidden) and the
// softmax over the scores are not part of it, and K is not transposed;
// which axis the first product should reduce over is still open.
package attention

import "github.com/born-ml/onnxgraph/internal/onnx"

// Names used in the graph.
const (
	GraphName    = "attention"
	ProducerName = "onnx-bert"

	Query  = "Q"
	Key    = "K"
	Value  = "V"
	Scores = "A"
	Output = "O"
)

// InputShape is the shape of Q, K, V and O.
func InputShape() []onnx.Dim {
	return onnx.Params("batch", "head", "sequence", "hidden")
}

// ScoresShape is the intended shape of the scores tensor A. It is not
// declared on the graph; consumers infer A's type themselves.
func ScoresShape() []onnx.Dim {
	return onnx.Params("batch", "head", "sequence", "sequence")
}

// Build returns the attention model. Every call returns a fresh, equal model.
func Build() *onnx.ModelProto {
	q := onnx.MakeTensorValueInfo(Query, onnx.TensorProtoFloat, InputShape())
	k := onnx.MakeTensorValueInfo(Key, onnx.TensorProtoFloat, InputShape())
	v := onnx.MakeTensorValueInfo(Value, onnx.TensorProtoFloat, InputShape())
	o := onnx.MakeTensorValueInfo(Output, onnx.TensorProtoFloat, InputShape())

	scores := onnx.MakeNode("MatMul", []string{Query, Key}, []string{Scores})
	weighted := onnx.MakeNode("MatMul", []string{Scores, Value}, []string{Output})

	graph := onnx.MakeGraph(
		[]onnx.NodeProto{scores, weighted},
		GraphName,
		[]onnx.ValueInfoProto{q, k, v},
		[]onnx.ValueInfoProto{o},
	)
	return onnx.MakeModel(graph, onnx.WithProducerName(ProducerName))
}
