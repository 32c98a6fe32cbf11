package transport

import (
	"bytes"
	"testing"
)

func TestWriterConnectionSendsFullBuffer(t *testing.T) {
	var buf bytes.Buffer
	conn := NewWriterConnection(&buf, "r1")
	if !conn.Send([]byte("hello")) {
		t.Fatal("expected Send to succeed")
	}
	if buf.String() != "hello" {
		t.Fatalf("got %q", buf.String())
	}
	if conn.GetDescription() != "r1" {
		t.Fatalf("got description %q", conn.GetDescription())
	}
}

func TestMulticastConnectionFansOutToAllMembers(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMulticastConnection([]Connection{
		NewWriterConnection(&a, "a"),
		NewWriterConnection(&b, "b"),
	}, "group")
	if !m.Send([]byte("frame")) {
		t.Fatal("expected Send to succeed")
	}
	if a.String() != "frame" || b.String() != "frame" {
		t.Fatalf("members did not both receive the frame: a=%q b=%q", a.String(), b.String())
	}
}

func TestRegistryResolveMulticastRequiresAllMembers(t *testing.T) {
	r := NewRegistry()
	var a bytes.Buffer
	r.Register("n1", NewWriterConnection(&a, "n1"))
	if _, ok := r.ResolveMulticast([]string{"n1", "n2"}); ok {
		t.Fatal("expected ResolveMulticast to fail when a member is unresolved")
	}
	var b bytes.Buffer
	r.Register("n2", NewWriterConnection(&b, "n2"))
	conn, ok := r.ResolveMulticast([]string{"n1", "n2"})
	if !ok {
		t.Fatal("expected ResolveMulticast to succeed once all members resolve")
	}
	if !conn.Send([]byte("x")) {
		t.Fatal("expected Send to succeed")
	}
	if a.String() != "x" || b.String() != "x" {
		t.Fatal("multicast send did not reach both registered members")
	}
}
