package objdata

import (
	"github.com/ais-oss/objstream/chunk"
	"github.com/ais-oss/objstream/compress"
	"github.com/ais-oss/objstream/transport"
)

// Per-flow command codes (spec.md §4.6 commit/push/sync/map), one per
// distinct CMD_NODE_OBJECT_INSTANCE_* constant the original assigns per
// flow (original_source/co/objectInstanceDataOStream.cpp).
const (
	CmdInstanceCommit uint32 = iota + 1
	CmdInstancePush
	CmdInstanceSync
	CmdInstance
	CmdInstanceMap
)

// pushNotifyCmdType is the command type the trailing push-notification
// frame Push emits carries (spec.md §4.6 push: "then emit a trailing
// push-notification frame").
const pushNotifyCmdType uint32 = 0xF0F0

// routeNone is the "no specific dispatch instance" sentinel the
// original names CO_INSTANCE_NONE, used as the OC command-id for flows
// that don't target one particular receiver-side instance.
const routeNone uint32 = 0xFFFFFFFF

// SyncCommand names the single node a sync targets, together with the
// node's own id and the request id the receiver's sync request carried
// (spec.md §4.6 "targeted sync to a single node"; original source:
// enableSync/sync read these off the inbound MasterCMCommand).
type SyncCommand struct {
	Node      string
	NodeID    uint64
	RequestID uint32
}

// Stream specialises a save-mode ConnectionOutputStream with the
// commit/push/sync/map flow table (spec.md §4.6). Every emission -
// first write and every later replay alike - goes out wrapped in a
// one-off ODOC carrying the object-data header and the target
// node/instance identity, built by the stream's own emit hook
// (emitObjectData) rather than written as bare bytes into the body.
type Stream struct {
	*transport.ConnectionOutputStream
	registry *compress.Registry
	resolver transport.NodeResolver

	// objectInstanceID is this stream's own object-instance identity,
	// fixed for the stream's lifetime (original source: the field the
	// stream's ObjectCM reports via getObject()->getInstanceID()),
	// written as the second half of the trailer on every frame.
	objectInstanceID uint64

	version  uint64
	sequence uint64

	command uint32 // current flow's command code (CmdInstance*)
	routeID uint32 // current flow's OC command-id (dispatch route)
	nodeID  uint64 // current flow's target node id, written as the trailer's first half
}

// SetObjectInstance binds the object-instance identity this stream
// reports in every frame's trailer (spec.md §4.6; original source's
// `_cm->getObject()->getInstanceID()`). Must be called before the
// first Enable*/replay flow; zero is a valid "unassigned" value.
func (s *Stream) SetObjectInstance(instanceID uint64) { s.objectInstanceID = instanceID }

// NewStream builds an ODOS bound to registry (nil selects
// compress.DefaultRegistry) and resolver, with save mode always on -
// every flow in the table below either writes or replays the same
// saved buffer. The stream installs its own emit hook in place of the
// plain COS fan-out, so every frame it ever sends is a full ODOC.
func NewStream(registry *compress.Registry, resolver transport.NodeResolver) *Stream {
	s := &Stream{
		ConnectionOutputStream: transport.NewCOS(registry, resolver, true),
		registry:               registry,
		resolver:               resolver,
	}
	s.Stream.SetEmit(s.emitObjectData)
	return s
}

// EnableCommit opens a fresh version-commit broadcast to nodes; the
// caller writes the commit body and Closes to finalise and save it for
// later replay (spec.md §4.6 enableCommit).
func (s *Stream) EnableCommit(version uint64, nodes []string) error {
	return s.openBroadcast(nodes, false, version, CmdInstanceCommit, routeNone, 0)
}

// EnablePush opens a fresh broadcast to nodes that may not have mapped
// the object yet (spec.md §4.6 enablePush).
func (s *Stream) EnablePush(version uint64, nodes []string) error {
	return s.openBroadcast(nodes, false, version, CmdInstancePush, routeNone, 0)
}

// EnableSync opens a fresh, single-recipient broadcast driven by cmd
// (spec.md §4.6 enableSync).
func (s *Stream) EnableSync(version uint64, cmd SyncCommand) error {
	return s.openBroadcast([]string{cmd.Node}, false, version, CmdInstanceSync, cmd.RequestID, cmd.NodeID)
}

// EnableMap is EnableCommit narrowed to one target node/instance, used
// for the initial map of a late-joining receiver (spec.md §4.6
// enableMap). Uses multicast when the resolver supports it, matching
// the original's enableMap.
func (s *Stream) EnableMap(version uint64, node string, nodeID uint64, instanceID uint32) error {
	return s.openBroadcast([]string{node}, true, version, CmdInstanceMap, instanceID, nodeID)
}

func (s *Stream) openBroadcast(nodes []string, useMulticast bool, version uint64, command, routeID uint32, nodeID uint64) error {
	if err := s.SetupRecipients(nodes, useMulticast); err != nil {
		return err
	}
	s.version = version
	s.sequence = 0
	s.command, s.routeID, s.nodeID = command, routeID, nodeID
	s.Open()
	return nil
}

// Push replays the saved buffer to nodes, then emits a trailing
// push-notification frame identifying objID/groupID/typeID (spec.md
// §4.6 push).
func (s *Stream) Push(nodes []string, objID, groupID, typeID uint64) error {
	s.command, s.routeID, s.nodeID = CmdInstancePush, routeNone, 0
	if err := s.replay(nodes, false); err != nil {
		return err
	}
	return s.notify(nodes, false, objID, groupID, typeID)
}

// Sync replays the saved buffer to the single node cmd names (spec.md
// §4.6 sync).
func (s *Stream) Sync(cmd SyncCommand) error {
	s.command, s.routeID, s.nodeID = CmdInstanceSync, cmd.RequestID, cmd.NodeID
	return s.replay([]string{cmd.Node}, false)
}

// SendInstanceData replays the full saved instance data to late-joining
// nodes (spec.md §4.6 sendInstanceData).
func (s *Stream) SendInstanceData(nodes []string) error {
	s.command, s.routeID, s.nodeID = CmdInstance, routeNone, 0
	return s.replay(nodes, false)
}

// SendMapData replays the saved buffer to a single mapping node, using
// multicast when the resolver supports it (spec.md §4.6 sendMapData).
func (s *Stream) SendMapData(node string, nodeID uint64, instanceID uint32) error {
	s.command, s.routeID, s.nodeID = CmdInstanceMap, instanceID, nodeID
	return s.replay([]string{node}, true)
}

// replay performs setupRecipients -> reemit -> clearRecipients,
// leaving the save buffer intact for the next flow (spec.md §4.6,
// verbatim: "Each flow that 'replays' goes through:
// setupRecipients → reemit → clearRecipients"). This is exactly
// ConnectionOutputStream's own Resend.
func (s *Stream) replay(nodes []string, useMulticast bool) error {
	return s.Resend(nodes, useMulticast)
}

// emitObjectData is the ODOS-level emit hook (spec.md §4.5, §4.6;
// original source's ConnectionOStream::emit delegating to the
// subclass's sendData): every DOS flush/close/reemit, rather than
// landing on the wire as bare bytes, is wrapped in a one-off ODOC
// carrying the object-data header and the current flow's node/instance
// identity. The ODOC is built on a disposable COS seeded with this
// stream's already-resolved recipients (SetupConnections) - reusing
// this Stream's own long-lived COS would let OutputCommand.init()
// clobber its persistent emit hook and chunk size (see
// transport.OutputCommand's init comment), breaking every later
// replay on this stream.
func (s *Stream) emitObjectData(data chunk.Result, last bool) error {
	recipients := s.Recipients()
	if len(recipients) == 0 {
		return nil
	}

	header := Header{
		Version:      s.version,
		RawSize:      data.RawSize,
		Sequence:     s.sequence,
		IsLast:       last,
		CompressorID: data.CompressorID,
		ChunkCount:   uint32(len(data.Chunks)),
	}
	s.sequence++

	cos := transport.NewCOS(s.registry, s.resolver, false)
	cos.SetupConnections(recipients)
	trailer := ID{NodeID: s.nodeID, InstanceID: s.objectInstanceID}
	cmd := newCommandOnPreparedCOS(cos, s.command, s.routeID, header, trailer, &data)
	return cmd.Close()
}

// notify builds a short-lived ODOC on a fresh COS targeting the same
// nodes the preceding replay used, carrying the pushed object's
// identity. It does not reuse this Stream's own COS: that COS owns the
// long-lived save buffer for the object itself, and must not have its
// emit hook or chunk size repurposed for a one-off command.
func (s *Stream) notify(nodes []string, useMulticast bool, objID, groupID, typeID uint64) error {
	cos := transport.NewCOS(s.registry, s.resolver, false)
	oc, err := transport.NewRemoteOutputCommand(cos, nodes, useMulticast, pushNotifyCmdType, 0)
	if err != nil {
		return err
	}
	oc.Stream.WriteUint64(objID)
	oc.Stream.WriteUint64(groupID)
	oc.Stream.WriteUint64(typeID)
	return oc.Close()
}
