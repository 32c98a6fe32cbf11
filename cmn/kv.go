package cmn

// Compression mode identifiers, mirroring the teacher's Extra.Compression
// string enum (CompressNever / CompressAlways), consumed by
// dos.Stream.SetCompression.
const (
	CompressNever  = "never"
	CompressAlways = "always"
)
