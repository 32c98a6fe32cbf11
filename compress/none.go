package compress

import "github.com/ais-oss/objstream/chunk"

// noneCodec is the identity codec, registered under chunk.NoneID so
// Adapter.Setup("") / Setup("none") resolve without a registry lookup
// failure.
type noneCodec struct{}

func (noneCodec) Name() string { return chunk.NoneID }

func (noneCodec) Compress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
