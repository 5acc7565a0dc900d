package operators

// registerMathOps adds math operator schemas to the registry.
func (r *Registry) registerMathOps() {
	for _, op := range []string{"Add", "Sub", "Mul", "Div", "Pow"} {
		r.fixed(op, 2, 1, KindBroadcast)
	}
	for _, op := range []string{"Sqrt", "Exp", "Log", "Neg", "Abs", "Reciprocal"} {
		r.fixed(op, 1, 1, KindSameShape)
	}
	r.fixed("MatMul", 2, 1, KindMatMul)
	r.Register(Schema{OpType: "Gemm", MinInputs: 2, MaxInputs: 3, MinOutputs: 1, MaxOutputs: 1, Kind: KindOpaque})
	r.Register(Schema{OpType: "Sum", MinInputs: 1, MaxInputs: Variadic, MinOutputs: 1, MaxOutputs: 1, Kind: KindBroadcast})
}
