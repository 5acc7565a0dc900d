package onnx

import "github.com/cespare/xxhash/v2"

// Fingerprint hashes the model's binary encoding with xxHash64. Encoding
// is deterministic, so equal models share a fingerprint.
func Fingerprint(m *ModelProto) (uint64, error) {
	data, err := Marshal(m)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
