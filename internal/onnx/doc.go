// Package onnx builds, encodes and checks ONNX models.
//
// ONNX (Open Neural Network Exchange) is an open format for representing deep learning models.
// The protobuf records are hand-written; Marshal and Parse work on the wire
// format directly through protowire, without generated bindings.
//
// Key components:
//   - ModelProto, GraphProto, NodeProto, ValueInfoProto: the model records
//   - MakeTensorValueInfo, MakeNode, MakeGraph, MakeModel: builders mirroring onnx.helper
//   - Marshal, WriteFile, Parse, ParseFile: the binary wire format
//   - Check, InferShapes: optional validation, never run by the builders
//
// Example usage:
//
//	shape := onnx.Params("batch", "hidden")
//	graph := onnx.MakeGraph(
//	    []onnx.NodeProto{onnx.MakeNode("Relu", []string{"X"}, []string{"Y"})},
//	    "relu",
//	    []onnx.ValueInfoProto{onnx.MakeTensorValueInfo("X", onnx.TensorProtoFloat, shape)},
//	    []onnx.ValueInfoProto{onnx.MakeTensorValueInfo("Y", onnx.TensorProtoFloat, shape)},
//	)
//	model := onnx.MakeModel(graph, onnx.WithProducerName("example"))
//
//	if err := onnx.WriteFile("relu.onnx", model); err != nil {
//	    log.Fatal(err)
//	}
package onnx
