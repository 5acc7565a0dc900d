package operators

// registerActivations adds activation schemas to the registry.
func (r *Registry) registerActivations() {
	for _, op := range []string{
		"Relu", "LeakyRelu", "Sigmoid", "Tanh", "Softmax", "LogSoftmax", "Gelu", "Elu", "Selu",
	} {
		r.fixed(op, 1, 1, KindSameShape)
	}
	r.fixed("PRelu", 2, 1, KindBroadcast)
	r.Register(Schema{OpType: "Clip", MinInputs: 1, MaxInputs: 3, MinOutputs: 1, MaxOutputs: 1, Kind: KindSameShape})
}
