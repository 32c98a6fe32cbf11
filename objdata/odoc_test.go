package objdata

import (
	"bytes"
	"testing"

	"github.com/ais-oss/objstream/chunk"
	"github.com/ais-oss/objstream/transport"
)

func TestNewRemoteCommandImplicitPathWritesHeaderThenBody(t *testing.T) {
	var a bytes.Buffer
	registry := transport.NewRegistry()
	registry.Register("a", transport.NewWriterConnection(&a, "a"))
	cos := transport.NewCOS(nil, registry, false)

	cmd, err := NewRemoteCommand(cos, []string{"a"}, false, 5, 6, Header{
		Version:      1,
		RawSize:      4,
		Sequence:     1,
		IsLast:       true,
		CompressorID: "none",
		ChunkCount:   1,
	}, nil)
	if err != nil {
		t.Fatalf("NewRemoteCommand: %v", err)
	}
	cmd.Write([]byte("body"))
	if err := cmd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if a.Len() != transport.CommandMinSize {
		t.Fatalf("expected frame padded to %d bytes, got %d", transport.CommandMinSize, a.Len())
	}
	if !bytes.Contains(a.Bytes(), []byte("body")) {
		t.Fatal("expected the written body bytes to appear in the frame")
	}
	if !bytes.Contains(a.Bytes(), []byte("none")) {
		t.Fatal("expected the header's compressor id to appear in the frame")
	}
}

func TestNewRemoteCommandExternalBodyPath(t *testing.T) {
	var a bytes.Buffer
	registry := transport.NewRegistry()
	registry.Register("a", transport.NewWriterConnection(&a, "a"))
	cos := transport.NewCOS(nil, registry, false)

	body := chunk.Raw([]byte("a large pre-compressed payload"))
	cmd, err := NewRemoteCommand(cos, []string{"a"}, false, 5, 6, Header{
		Version:      2,
		RawSize:      int64(len(body.Chunks[0].Bytes)),
		CompressorID: "none",
		ChunkCount:   1,
	}, &body)
	if err != nil {
		t.Fatalf("NewRemoteCommand: %v", err)
	}
	if err := cmd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !bytes.Contains(a.Bytes(), body.Chunks[0].Bytes) {
		t.Fatal("expected the external body bytes to reach the wire")
	}
	if a.Len() < transport.CommandMinSize {
		t.Fatalf("expected at least %d bytes on the wire, got %d", transport.CommandMinSize, a.Len())
	}
}
