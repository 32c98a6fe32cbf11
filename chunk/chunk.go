// Package chunk defines the unit the compressor emits and the framing
// layer writes: a contiguous byte region, either a borrowed view into
// compressor scratch or an owned copy, and CompressorResult, the
// ordered list of chunks a compression run produces.
//
// Grounded on the teacher's memsys.SGL / lz4Stream split in
// transport/send.go, where compressed bytes live in scratch memory
// (lz4s.sgl) that the framing layer reads before the next compress
// call - the same "borrow until next compress" rule spec.md §9 calls
// out.
package chunk

import "fmt"

// Chunk is a contiguous byte region. A view chunk aliases memory owned
// by a Compressor's scratch buffer and is valid only until that
// Compressor's next Compress/Realloc call. An owned chunk holds its own
// copy and outlives the compressor.
type Chunk struct {
	Bytes []byte
	Owned bool
}

// Len returns the chunk's byte length.
func (c Chunk) Len() int { return len(c.Bytes) }

// Clone returns an owned copy of the chunk, safe to retain past the
// producing Compressor's next call.
func (c Chunk) Clone() Chunk {
	if c.Owned {
		return c
	}
	cp := make([]byte, len(c.Bytes))
	copy(cp, c.Bytes)
	return Chunk{Bytes: cp, Owned: true}
}

// NoneID is the compressor identifier meaning "raw, one chunk only".
const NoneID = "none"

// Result is the language-neutral CompressorResult: an ordered list of
// chunks, the compressor id that produced them, and the pre-compression
// byte count.
//
// Invariant (spec.md §3): if CompressorID == NoneID, len(Chunks) == 1
// and Chunks[0].Len() == RawSize; otherwise sum(Chunks[i].Len()) < RawSize.
type Result struct {
	Chunks       []Chunk
	CompressorID string
	RawSize      int64
}

// Raw builds the CompressorID==NoneID result for an uncompressed tail.
func Raw(src []byte) Result {
	return Result{
		Chunks:       []Chunk{{Bytes: src}},
		CompressorID: NoneID,
		RawSize:      int64(len(src)),
	}
}

// TotalSize is the sum of all chunk lengths - the compressed wire size
// (excludes any per-chunk length prefixes the framing layer adds).
func (r Result) TotalSize() int64 {
	var n int64
	for _, c := range r.Chunks {
		n += int64(c.Len())
	}
	return n
}

// CompressionRatio mirrors the teacher's transport.Stats.CompressionRatio
// (bytesRead / bytesSent), scoped to a single compression result.
func (r Result) CompressionRatio() float64 {
	if r.TotalSize() == 0 {
		return 0
	}
	return float64(r.RawSize) / float64(r.TotalSize())
}

// Validate checks the invariant documented above. Adapter.Compress does
// not call it; the stream's compress step handles non-shrinking output
// itself by falling back to a raw result.
func (r Result) Validate() error {
	if r.CompressorID == NoneID {
		if len(r.Chunks) != 1 {
			return fmt.Errorf("chunk: NoneID result must carry exactly one chunk, got %d", len(r.Chunks))
		}
		if int64(r.Chunks[0].Len()) != r.RawSize {
			return fmt.Errorf("chunk: NoneID chunk length %d != RawSize %d", r.Chunks[0].Len(), r.RawSize)
		}
		return nil
	}
	if r.TotalSize() >= r.RawSize {
		return fmt.Errorf("chunk: compressed size %d not smaller than raw size %d", r.TotalSize(), r.RawSize)
	}
	return nil
}
