package dos

import "encoding/binary"

// This file is the typed writing surface spec.md §4.2 describes on top
// of the raw Write([]byte): plain trivially-copyable values, contiguous
// arrays, u64-counted sequences, maps and sets, and nested object
// references. Everything funnels through Write, so every value written
// this way participates in the same chunking/compression accounting as
// a raw byte write.

// WriteUint64 appends a big-endian uint64.
func (s *Stream) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	s.Write(b[:])
}

// WriteInt64 appends a big-endian int64.
func (s *Stream) WriteInt64(v int64) { s.WriteUint64(uint64(v)) }

// WriteUint32 appends a big-endian uint32.
func (s *Stream) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.Write(b[:])
}

// WriteInt32 appends a big-endian int32.
func (s *Stream) WriteInt32(v int32) { s.WriteUint32(uint32(v)) }

// WriteByte appends a single byte.
func (s *Stream) WriteByte(v byte) { s.Write([]byte{v}) }

// WriteBool appends a single byte, 1 for true.
func (s *Stream) WriteBool(v bool) {
	if v {
		s.WriteByte(1)
	} else {
		s.WriteByte(0)
	}
}

// WriteBytes appends a contiguous array of trivially-copyable bytes
// with no length prefix - the caller already knows (or has written)
// the count, matching Collage's "array of known size" write.
func (s *Stream) WriteBytes(p []byte) { s.Write(p) }

// WriteString writes a u64 length prefix followed by the raw bytes, the
// ordered-sequence-of-bytes case of spec.md's typed surface.
func (s *Stream) WriteString(v string) {
	s.WriteUint64(uint64(len(v)))
	s.Write([]byte(v))
}

// WriteObjectRef writes a nested object reference as its two
// identifying u64 halves (node/instance identity pair in this module's
// ID scheme - see objdata.ID), the "nested object reference" case of
// spec.md's typed surface.
func (s *Stream) WriteObjectRef(hi, lo uint64) {
	s.WriteUint64(hi)
	s.WriteUint64(lo)
}

// WriteSlice writes a u64 element count followed by each element
// marshalled by enc, the generic "ordered sequence" case of spec.md's
// typed surface.
func WriteSlice[T any](s *Stream, items []T, enc func(*Stream, T)) {
	s.WriteUint64(uint64(len(items)))
	for _, it := range items {
		enc(s, it)
	}
}

// WriteMap writes a u64 entry count followed by each key/value pair,
// the "map" case of spec.md's typed surface. Entries are written in Go
// map iteration order, which is not deterministic across calls.
func WriteMap[K comparable, V any](s *Stream, m map[K]V, encKey func(*Stream, K), encVal func(*Stream, V)) {
	s.WriteUint64(uint64(len(m)))
	for k, v := range m {
		encKey(s, k)
		encVal(s, v)
	}
}

// WriteSet writes a u64 element count followed by each element in
// map-iteration order, the "set" case of spec.md's typed surface.
func WriteSet[T comparable](s *Stream, set map[T]struct{}, enc func(*Stream, T)) {
	s.WriteUint64(uint64(len(set)))
	for v := range set {
		enc(s, v)
	}
}
