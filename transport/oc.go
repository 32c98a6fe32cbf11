package transport

import (
	"github.com/ais-oss/objstream/chunk"
	"github.com/ais-oss/objstream/cmn"
)

// LocalDispatcher is the command-dispatch loop collaborator (spec.md
// §1, §4.4 local path): a node that enqueues a finalised command for
// in-process handling instead of sending it over a Connection.
type LocalDispatcher interface {
	DispatchCommand(cmd *InputCommand)
}

// InputCommand is the receive-side shell a local dispatch hands a
// finalised OC buffer to (spec.md §4.4 local path: "wrap it in an
// input-command shell").
type InputCommand struct {
	CommandType uint32
	CommandID   uint32
	Body        []byte
}

// OutputCommand wraps a single framed command on top of a
// ConnectionOutputStream (spec.md §4.4). Exactly one of a recipient
// list or a LocalDispatcher is active for a given instance.
type OutputCommand struct {
	*ConnectionOutputStream
	cmdType, cmdID uint32
	dispatcher     LocalDispatcher

	locked     bool  // external-body path in progress
	bodySize   int64 // externally-attached body size, 0 otherwise
	headerLen  int64 // bytes sent for the header under the locked path
	finalized  bool  // true once Close or SendBody has emitted the frame
}

// NewOutputCommand builds an OC on a COS whose recipients are already
// resolved (via SetupRecipients or SetupConnections) - the variant
// callers that manage their own recipient set/connection list use, so
// the constructor doesn't force a resolve of its own (spec.md §4.4).
func NewOutputCommand(cos *ConnectionOutputStream, cmdType, cmdID uint32) *OutputCommand {
	oc := &OutputCommand{ConnectionOutputStream: cos, cmdType: cmdType, cmdID: cmdID}
	oc.init()
	return oc
}

// NewRemoteOutputCommand builds an OC that sends to a resolved
// recipient set on Close (spec.md §4.4 "constructed with a recipient
// list - send on destruction").
func NewRemoteOutputCommand(cos *ConnectionOutputStream, nodes []string, useMulticast bool, cmdType, cmdID uint32) (*OutputCommand, error) {
	if err := cos.SetupRecipients(nodes, useMulticast); err != nil {
		return nil, err
	}
	return NewOutputCommand(cos, cmdType, cmdID), nil
}

// NewLocalOutputCommand builds an OC that hands its finalised buffer
// to dispatcher on Close (spec.md §4.4 "constructed with a local
// dispatcher - dispatch on destruction").
func NewLocalOutputCommand(cos *ConnectionOutputStream, dispatcher LocalDispatcher, cmdType, cmdID uint32) *OutputCommand {
	oc := &OutputCommand{ConnectionOutputStream: cos, cmdType: cmdType, cmdID: cmdID, dispatcher: dispatcher}
	oc.init()
	return oc
}

// init sets chunkSize to effectively infinite so the whole command is
// a single logical frame, opens the stream, and writes the preliminary
// header (spec.md §4.4: "u64 placeholder, u32 type, u32 cmd").
func (oc *OutputCommand) init() {
	oc.Stream.SetChunkSize(1 << 40)
	oc.Stream.SetEmit(oc.sendData)
	oc.Stream.Open()
	oc.Stream.WriteUint64(0)
	oc.Stream.WriteUint32(oc.cmdType)
	oc.Stream.WriteUint32(oc.cmdID)
}

// Close finalises the command: remote path closes the stream (which
// drives sendData via the single chunkSize=infinite flush); local path
// is equivalent, dispatching instead of sending. A command already
// finalised via SendBody is a no-op here (spec.md §4.4 destruction).
func (oc *OutputCommand) Close() error {
	if oc.finalized {
		return nil
	}
	oc.finalized = true
	return oc.ConnectionOutputStream.Close()
}

// sendData is the OC-level emit hook (spec.md §4.4): patches the
// placeholder size prefix, then either dispatches locally or sends to
// every recipient - writing only the header when an external body is
// in progress (the locked path), or the whole buffer padded to
// CommandMinSize otherwise.
func (oc *OutputCommand) sendData(result chunk.Result, last bool) error {
	cmn.Assert(result.CompressorID == chunk.NoneID,
		"transport: OC body must stay uncompressed to patch its size prefix in place")
	buf := oc.Stream.Buffer()

	if oc.dispatcher != nil {
		return oc.dispatchLocal(buf)
	}

	tailLen := int64(len(buf)) - PrefixSize
	putU64(buf, 0, uint64(oc.bodySize+tailLen))

	if oc.locked {
		oc.headerLen = int64(len(buf))
		header := append([]byte(nil), buf...)
		return sendToAll(oc.Recipients(), header)
	}

	sendSize := int64(len(buf))
	if sendSize < CommandMinSize {
		sendSize = CommandMinSize
	}
	frame := make([]byte, sendSize)
	copy(frame, buf)
	return sendToAll(oc.Recipients(), frame)
}

// dispatchLocal hands a private copy of the finalised buffer to the
// local dispatcher, patching the size prefix to the buffer's own
// length (spec.md §4.4 local path).
func (oc *OutputCommand) dispatchLocal(buf []byte) error {
	owned := make([]byte, len(buf))
	copy(owned, buf)
	putU64(owned, 0, uint64(len(owned)))
	oc.dispatcher.DispatchCommand(&InputCommand{
		CommandType: oc.cmdType,
		CommandID:   oc.cmdID,
		Body:        owned,
	})
	return nil
}

// SendBody attaches a large, already-compressed payload without
// copying it into the stream buffer (spec.md §4.4 external-body /
// bulk-send path). The per-connection send lock is held across the
// header, every chunk, and the trailing padding so the whole sequence
// is atomic on each recipient connection.
func (oc *OutputCommand) SendBody(body chunk.Result) error {
	recipients := oc.Recipients()
	for _, c := range recipients {
		c.LockSend()
	}
	defer func() {
		for _, c := range recipients {
			c.UnlockSend()
		}
	}()

	oc.locked = true
	oc.bodySize = body.TotalSize()
	if body.CompressorID != chunk.NoneID {
		oc.bodySize += int64(len(body.Chunks)) * PrefixSize
	}
	if err := oc.Stream.Flush(true); err != nil {
		return err
	}

	written := oc.headerLen
	for _, ch := range body.Chunks {
		var out []byte
		if body.CompressorID != chunk.NoneID {
			var prefix [PrefixSize]byte
			putU64(prefix[:], 0, uint64(ch.Len()))
			out = append(out, prefix[:]...)
		}
		out = append(out, ch.Bytes...)
		written += int64(len(out))
		if err := sendToAll(recipients, out); err != nil {
			return err
		}
	}
	if written < CommandMinSize {
		if err := sendToAll(recipients, padded(CommandMinSize-written)); err != nil {
			return err
		}
	}
	oc.finalized = true
	oc.Stream.Reset()
	return nil
}
