package operators

// registerUtilityOps adds utility schemas to the registry.
func (r *Registry) registerUtilityOps() {
	r.fixed("Identity", 1, 1, KindSameShape)
	r.Register(Schema{OpType: "Dropout", MinInputs: 1, MaxInputs: 3, MinOutputs: 1, MaxOutputs: 2, Kind: KindSameShape})
	r.fixed("Constant", 0, 1, KindOpaque)
	r.fixed("Cast", 1, 1, KindOpaque)
	r.fixed("ConstantOfShape", 1, 1, KindOpaque)
	r.fixed("Shape", 1, 1, KindOpaque)
	r.fixed("Size", 1, 1, KindOpaque)
	r.fixed("Where", 3, 1, KindOpaque)
}
