package compress

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupUnknownCompressorFails(t *testing.T) {
	a := NewAdapter(nil)
	if err := a.Setup("does-not-exist"); err == nil {
		t.Fatal("expected CompressorUnavailable error")
	} else if !strings.Contains(err.Error(), "does-not-exist") {
		t.Fatalf("error should name the missing id: %v", err)
	}
}

func TestSetupNoneIsAlwaysAvailable(t *testing.T) {
	a := NewAdapter(nil)
	if err := a.Setup(""); err != nil {
		t.Fatalf("empty name should resolve to none: %v", err)
	}
	if a.Info() != "none" {
		t.Fatalf("expected none, got %q", a.Info())
	}
}

func TestCompressLZ4ShrinksRepetitiveInput(t *testing.T) {
	a := NewAdapter(nil)
	if err := a.Setup("lz4"); err != nil {
		t.Fatalf("setup lz4: %v", err)
	}
	src := bytes.Repeat([]byte{0xAA}, 8192)
	res, err := a.Compress(src)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if res.CompressorID != "lz4" {
		t.Fatalf("expected lz4, got %q", res.CompressorID)
	}
	if res.TotalSize() >= res.RawSize {
		t.Fatalf("highly repetitive input should shrink: total=%d raw=%d", res.TotalSize(), res.RawSize)
	}
}

func TestScratchAliasingAcrossCalls(t *testing.T) {
	a := NewAdapter(nil)
	if err := a.Setup("snappy"); err != nil {
		t.Fatalf("setup snappy: %v", err)
	}
	first, err := a.Compress(bytes.Repeat([]byte("a"), 4096))
	if err != nil {
		t.Fatal(err)
	}
	firstBytes := append([]byte(nil), first.Chunks[0].Bytes...)
	if _, err := a.Compress(bytes.Repeat([]byte("b"), 4096)); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first.Chunks[0].Bytes, firstBytes) {
		// Not a strict requirement that scratch *must* be overwritten
		// (the codec may return a fresh slice), but if it does alias,
		// the stale comparison above must not be used to assert content
		// past the next Compress call - this test documents the rule,
		// it does not assert aliasing occurred.
		t.Skip("scratch was not reused this call, nothing to assert")
	}
}

func TestReallocDropsScratch(t *testing.T) {
	a := NewAdapter(nil)
	if err := a.Setup("lz4"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Compress(bytes.Repeat([]byte{0xAA}, 4096)); err != nil {
		t.Fatal(err)
	}
	a.Realloc()
	if a.scratch != nil {
		t.Fatal("expected scratch to be released")
	}
}
