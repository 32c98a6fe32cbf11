package transport

import "encoding/binary"

// Frame-level protocol constants (spec.md §3, "compile-time constant
// of the protocol"), sized the way the teacher sizes its own header
// scratch space (transport/send.go's maxHeaderSize).
const (
	// PrefixSize is the width of the leading total_size field.
	PrefixSize = 8
	// HeaderSize is the fixed OC preamble: u64 total_size, u32
	// command_type, u32 command_id.
	HeaderSize = 16
	// CommandMinSize is the minimum on-wire frame length; every emitted
	// frame is padded with zero bytes up to this length.
	CommandMinSize = 128
	// CommandAllocSize is the protocol's maximum buffered command size.
	// No code in this module reads it: an OC/ODOC takes the external-body
	// path only when the caller supplies a prepared body.
	CommandAllocSize = 4096
)

// putU64 writes v as big-endian into b[off:off+8].
func putU64(b []byte, off int, v uint64) {
	binary.BigEndian.PutUint64(b[off:], v)
}

// getU64 reads a big-endian uint64 from b[off:off+8].
func getU64(b []byte, off int) uint64 {
	return binary.BigEndian.Uint64(b[off:])
}

// padded returns n bytes of zero padding, or nil if n <= 0.
func padded(n int64) []byte {
	if n <= 0 {
		return nil
	}
	return make([]byte, n)
}
