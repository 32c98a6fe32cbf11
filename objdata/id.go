// Package objdata specialises the transport package's OC/COS with the
// versioned object-data header and the commit/push/sync/map replay
// flows a distributed object's streaming lifecycle drives (spec.md
// §4.5, §4.6).
package objdata

import "github.com/ais-oss/objstream/dos"

// ID is the node/instance identity pair a nested object reference
// resolves to (the two u64 halves dos.Stream.WriteObjectRef writes).
// This module does not interpret the halves; callers assign their own
// node-id/instance-id convention.
type ID struct {
	NodeID     uint64
	InstanceID uint64
}

// WriteTo writes the identity pair through s via the stream's typed
// object-reference surface.
func (id ID) WriteTo(s *dos.Stream) { s.WriteObjectRef(id.NodeID, id.InstanceID) }
