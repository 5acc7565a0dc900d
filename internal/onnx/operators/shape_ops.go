package operators

// registerShapeOps adds shape manipulation schemas to the registry.
func (r *Registry) registerShapeOps() {
	r.fixed("Reshape", 2, 1, KindOpaque)
	r.fixed("Transpose", 1, 1, KindTranspose)
	r.Register(Schema{OpType: "Squeeze", MinInputs: 1, MaxInputs: 2, MinOutputs: 1, MaxOutputs: 1, Kind: KindOpaque})
	r.fixed("Unsqueeze", 2, 1, KindOpaque)
	r.Register(Schema{OpType: "Concat", MinInputs: 1, MaxInputs: Variadic, MinOutputs: 1, MaxOutputs: 1, Kind: KindOpaque})
	r.Register(Schema{OpType: "Split", MinInputs: 1, MaxInputs: 2, MinOutputs: 1, MaxOutputs: Variadic, Kind: KindOpaque})
	r.Register(Schema{OpType: "Slice", MinInputs: 3, MaxInputs: 5, MinOutputs: 1, MaxOutputs: 1, Kind: KindOpaque})
	r.fixed("Gather", 2, 1, KindOpaque)
	r.fixed("Flatten", 1, 1, KindOpaque)
	r.fixed("Expand", 2, 1, KindOpaque)
}
