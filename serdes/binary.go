package serdes

var binaryUnion = newBinaryUnion()

func newBinaryUnion() *Union {
	u := NewUnion()
	Register[Preset](u, PresetType)
	Register[RenderRequest](u, RenderRequestType)
	return u
}

func MarshalBinary(v any) ([]byte, error) {
	return binaryUnion.Serialize(v)
}

func UnmarshalBinary(dat []byte) (any, error) {
	return binaryUnion.Deserialize(dat)
}
