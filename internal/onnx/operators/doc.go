// Package operators describes ONNX operators for static checking.
//
// The registry maps an operator type to a Schema: how many inputs and
// outputs a node of that type may carry, and how its output shape relates
// to its inputs. It does not execute anything.
//
// Operators are grouped the way the ONNX operator list groups them:
//   - math: elementwise arithmetic, MatMul, Gemm, Sum
//   - activations: Relu, Softmax and friends
//   - shape: Reshape, Transpose, Concat, ...
//   - utility: Identity, Dropout, Constant, Cast, ...
package operators
