package objdata

import "github.com/ais-oss/objstream/dos"

// Header is the object-data header ODOC writes after the OC preamble
// (spec.md §4.5: "version, rawSize, sequence, isLast, compressor_id,
// chunk_count").
type Header struct {
	Version      uint64
	RawSize      int64
	Sequence     uint64
	IsLast       bool
	CompressorID string
	ChunkCount   uint32
}

// encodeHeader lays out h with the stream's typed write surface, one
// field at a time, the same order the teacher's insHeader composes
// insUint64/insInt64/insString calls in (transport/send.go), adapted
// to this header's fields rather than copied.
func encodeHeader(s *dos.Stream, h Header) {
	s.WriteUint64(h.Version)
	s.WriteInt64(h.RawSize)
	s.WriteUint64(h.Sequence)
	s.WriteBool(h.IsLast)
	s.WriteString(h.CompressorID)
	s.WriteUint32(h.ChunkCount)
}
