package compress

import "github.com/golang/snappy"

// snappyCodec favours compression speed over ratio. A stream uses it
// only when SetCompressor names "snappy"; nothing in this module selects
// it automatically for PARTIAL or any other flushes.
type snappyCodec struct{}

func newSnappyCodec() *snappyCodec { return &snappyCodec{} }

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Compress(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst[:cap(dst)], src), nil
}
