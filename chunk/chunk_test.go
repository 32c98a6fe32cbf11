package chunk

import "testing"

func TestRawInvariant(t *testing.T) {
	r := Raw([]byte("hello"))
	if err := r.Validate(); err != nil {
		t.Fatalf("raw result should validate: %v", err)
	}
	if r.CompressorID != NoneID {
		t.Fatalf("expected NoneID, got %q", r.CompressorID)
	}
	if r.TotalSize() != int64(len("hello")) {
		t.Fatalf("total size mismatch: %d", r.TotalSize())
	}
}

func TestValidateRejectsNonShrinkingCompressed(t *testing.T) {
	r := Result{
		Chunks:       []Chunk{{Bytes: make([]byte, 10)}},
		CompressorID: "lz4",
		RawSize:      10,
	}
	if err := r.Validate(); err == nil {
		t.Fatal("expected validation error for non-shrinking compressed result")
	}
}

func TestValidateRejectsMultiChunkNone(t *testing.T) {
	r := Result{
		Chunks:       []Chunk{{Bytes: []byte("a")}, {Bytes: []byte("b")}},
		CompressorID: NoneID,
		RawSize:      2,
	}
	if err := r.Validate(); err == nil {
		t.Fatal("expected validation error for multi-chunk NoneID result")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := []byte{1, 2, 3}
	c := Chunk{Bytes: src}
	clone := c.Clone()
	src[0] = 9
	if clone.Bytes[0] == 9 {
		t.Fatal("clone aliases source buffer")
	}
	if !clone.Owned {
		t.Fatal("clone should be owned")
	}
}

func TestCompressionRatio(t *testing.T) {
	r := Result{
		Chunks:       []Chunk{{Bytes: make([]byte, 50)}},
		CompressorID: "lz4",
		RawSize:      100,
	}
	if got := r.CompressionRatio(); got != 2.0 {
		t.Fatalf("expected ratio 2.0, got %f", got)
	}
}
