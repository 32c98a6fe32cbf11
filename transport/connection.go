// Package transport specialises the data output stream with a
// recipient list and a framed-command builder: ConnectionOutputStream
// (COS, spec.md §4.3) and OutputCommand (OC, spec.md §4.4). Concrete
// wire transports are out of scope (spec.md §1 Non-goals); Connection
// is the narrow contract a caller plugs a real socket/RDMA/shared-memory
// implementation behind.
//
// Grounded on the teacher's transport.Stream (transport/send.go): the
// async SQ/SCQ send loop is this module's domain (single-recipient
// object PUT), generalised here into one-shot framed sends to an
// arbitrary recipient set, keeping the teacher's atomic-stats and
// glog-logging idiom.
package transport

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// Connection is the narrow contract a COS/OC sends framed bytes
// through (spec.md §6). Send must transmit b as a single atomic write
// as far as the underlying transport is concerned; LockSend/UnlockSend
// bracket the external-body path's multi-call sequence (spec.md §4.4).
type Connection interface {
	Send(b []byte) bool
	LockSend()
	UnlockSend()
	GetDescription() string
}

// WriterConnection adapts an io.Writer (a net.Conn, a pipe, an
// in-memory buffer under test) to the Connection contract.
type WriterConnection struct {
	w    io.Writer
	desc string
	mu   sync.Mutex
}

// NewWriterConnection wraps w, described by desc in logs and errors.
func NewWriterConnection(w io.Writer, desc string) *WriterConnection {
	return &WriterConnection{w: w, desc: desc}
}

func (c *WriterConnection) Send(b []byte) bool {
	n, err := c.w.Write(b)
	if err != nil || n != len(b) {
		glog.Errorf("%s: send failed (%d/%d): %v", c.desc, n, len(b), err)
		return false
	}
	return true
}

func (c *WriterConnection) LockSend()   { c.mu.Lock() }
func (c *WriterConnection) UnlockSend() { c.mu.Unlock() }
func (c *WriterConnection) GetDescription() string { return c.desc }

// multicastConnection collapses a group of member connections into one
// Connection whose Send fans out to every member and whose lock is
// shared across the whole group (spec.md §4.3 setupRecipients:
// "collapsing a multicast group to a single shared connection").
type multicastConnection struct {
	members []Connection
	desc    string
	mu      sync.Mutex
}

// NewMulticastConnection groups members under one description.
func NewMulticastConnection(members []Connection, desc string) Connection {
	return &multicastConnection{members: members, desc: desc}
}

func (m *multicastConnection) Send(b []byte) bool {
	ok := true
	for _, c := range m.members {
		if !c.Send(b) {
			ok = false
		}
	}
	return ok
}

func (m *multicastConnection) LockSend()   { m.mu.Lock() }
func (m *multicastConnection) UnlockSend() { m.mu.Unlock() }
func (m *multicastConnection) GetDescription() string { return m.desc }

// NodeResolver resolves node identities to connections, standing in
// for the node-directory collaborator spec.md §1 calls external
// (grounded on the pack's meta.Smap/sowner.Get() node-directory
// pattern, narrowed to the two hooks COS actually needs).
type NodeResolver interface {
	Resolve(nodeID string) (Connection, bool)
	ResolveMulticast(nodeIDs []string) (Connection, bool)
}

// Registry is a simple in-memory NodeResolver: a nodeID -> Connection
// table, with ResolveMulticast collapsing a requested group into one
// multicastConnection when every member is found.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Connection
}

// NewRegistry returns an empty node registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]Connection)}
}

// Register binds nodeID to conn, replacing any prior binding.
func (r *Registry) Register(nodeID string, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[nodeID] = conn
}

// Unregister drops nodeID from the registry.
func (r *Registry) Unregister(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, nodeID)
}

func (r *Registry) Resolve(nodeID string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.nodes[nodeID]
	return c, ok
}

func (r *Registry) ResolveMulticast(nodeIDs []string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]Connection, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		c, ok := r.nodes[id]
		if !ok {
			return nil, false
		}
		members = append(members, c)
	}
	if len(members) == 0 {
		return nil, false
	}
	return NewMulticastConnection(members, strings.Join(nodeIDs, "+")), true
}

// ErrNodeUnresolved is returned when setupRecipients names a node the
// resolver has no connection for.
var ErrNodeUnresolved = fmt.Errorf("transport: node unresolved")
