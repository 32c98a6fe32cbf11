package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v3"
)

// lz4Codec is the teacher's own compressor: transport/send.go drives
// lz4.Writer over an SGL with a configurable BlockMaxSize
// (cmn.GCO.Get().Compression.BlockMaxSize). This module's Adapter is
// single-shot rather than streaming-via-io.Writer, so block-level
// lz4.CompressBlock is the equivalent primitive. blockMaxSize is stored
// but not read: the output buffer is sized by lz4.CompressBlockBound.
type lz4Codec struct {
	blockMaxSize int
}

func newLZ4Codec(blockMaxSize int) *lz4Codec {
	if blockMaxSize <= 0 {
		blockMaxSize = 4 * 1024 * 1024
	}
	return &lz4Codec{blockMaxSize: blockMaxSize}
}

func (c *lz4Codec) Name() string { return "lz4" }

func (c *lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(src))
	if cap(dst) < bound {
		dst = make([]byte, bound)
	} else {
		dst = dst[:bound]
	}
	var ht [1 << 16]int
	n, err := lz4.CompressBlock(src, dst, ht[:])
	if err != nil {
		return nil, fmt.Errorf("lz4: compress block: %w", err)
	}
	if n == 0 {
		// lz4.CompressBlock returns n==0 when the input is incompressible
		// at block level; surface it as a non-shrinking result so the
		// DOS heuristic latches UNCOMPRESSIBLE instead of erroring.
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	}
	return dst[:n], nil
}
