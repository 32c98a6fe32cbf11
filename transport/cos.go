package transport

import (
	"fmt"

	"github.com/ais-oss/objstream/chunk"
	"github.com/ais-oss/objstream/compress"
	"github.com/ais-oss/objstream/dos"
)

// ConnectionOutputStream specialises dos.Stream with a fan-out
// recipient list (spec.md §4.3): its emit hook sends each frame to
// every recipient, and its compress hook forces DONT_COMPRESS while
// the recipient list is empty (the buffered-for-later-replay case).
type ConnectionOutputStream struct {
	*dos.Stream
	resolver   NodeResolver
	recipients []Connection
}

// NewCOS builds a stream bound to registry (nil selects
// compress.DefaultRegistry) and resolver. save enables the replay
// buffer a COS needs for resend/reemit flows (spec.md §4.3, §4.6).
func NewCOS(registry *compress.Registry, resolver NodeResolver, save bool) *ConnectionOutputStream {
	cos := &ConnectionOutputStream{
		Stream:   dos.New(registry, save),
		resolver: resolver,
	}
	cos.Stream.SetEmit(cos.emit)
	cos.Stream.StateOverride = cos.stateOverride
	return cos
}

// SetupRecipients resolves nodes to connections, collapsing the group
// to one shared multicast connection when useMulticast is requested
// and the resolver supports it (spec.md §4.3 setupRecipients(nodes,
// useMulticast)).
func (c *ConnectionOutputStream) SetupRecipients(nodes []string, useMulticast bool) error {
	if useMulticast {
		if conn, ok := c.resolver.ResolveMulticast(nodes); ok {
			c.recipients = []Connection{conn}
			return nil
		}
	}
	conns := make([]Connection, 0, len(nodes))
	for _, n := range nodes {
		conn, ok := c.resolver.Resolve(n)
		if !ok {
			return fmt.Errorf("%w: %q", ErrNodeUnresolved, n)
		}
		conns = append(conns, conn)
	}
	c.recipients = conns
	return nil
}

// SetupConnections injects connections directly, the test/direct-
// injection variant of setupRecipients (spec.md §4.3).
func (c *ConnectionOutputStream) SetupConnections(conns []Connection) {
	c.recipients = conns
}

// ClearRecipients drops the recipient list without touching stream
// state (spec.md §4.3 clearRecipients).
func (c *ConnectionOutputStream) ClearRecipients() { c.recipients = nil }

// Recipients returns the current recipient list.
func (c *ConnectionOutputStream) Recipients() []Connection { return c.recipients }

// Close delegates to dos.Stream.Close, then clears the recipient list
// (spec.md §4.3 close override).
func (c *ConnectionOutputStream) Close() error {
	err := c.Stream.Close()
	c.recipients = nil
	return err
}

// Resend replays the saved buffer to a freshly-resolved recipient set:
// setupRecipients; reemit; clearRecipients (spec.md §4.3 resend).
// Safe only on a saved, closed stream.
func (c *ConnectionOutputStream) Resend(nodes []string, useMulticast bool) error {
	if err := c.SetupRecipients(nodes, useMulticast); err != nil {
		return err
	}
	if err := c.Stream.Reemit(); err != nil {
		return err
	}
	c.ClearRecipients()
	return nil
}

// stateOverride forces DONT_COMPRESS while there are no recipients to
// send to (spec.md §4.3 compress override, "save-and-replay case").
func (c *ConnectionOutputStream) stateOverride(base dos.State) dos.State {
	if len(c.recipients) == 0 {
		return dos.DontCompress
	}
	return base
}

// emit is the default COS emit hook (spec.md §4.3): drops silently
// when there are no recipients and this is not the final frame;
// otherwise sends the frame - including an empty final frame, so a
// downstream receiver's input-stream finaliser still runs.
func (c *ConnectionOutputStream) emit(result chunk.Result, last bool) error {
	if len(c.recipients) == 0 && !last {
		return nil
	}
	frame := assembleFrame(result, CommandMinSize)
	return sendToAll(c.recipients, frame)
}

// assembleFrame lays out one wire frame's chunk portion (spec.md §3):
// a single raw chunk for CompressorID == NoneID, or a u64-length-
// prefixed chunk per entry otherwise, padded to at least minSize.
func assembleFrame(result chunk.Result, minSize int64) []byte {
	var buf []byte
	if result.CompressorID == chunk.NoneID {
		if len(result.Chunks) > 0 {
			buf = append(buf, result.Chunks[0].Bytes...)
		}
	} else {
		for _, ch := range result.Chunks {
			var lenPrefix [8]byte
			putU64(lenPrefix[:], 0, uint64(ch.Len()))
			buf = append(buf, lenPrefix[:]...)
			buf = append(buf, ch.Bytes...)
		}
	}
	buf = append(buf, padded(minSize-int64(len(buf)))...)
	return buf
}

// sendToAll sends frame to every recipient, returning the first
// failure (if any) after attempting all sends.
func sendToAll(recipients []Connection, frame []byte) error {
	var firstErr error
	for _, c := range recipients {
		if !c.Send(frame) && firstErr == nil {
			firstErr = fmt.Errorf("transport: send to %s failed", c.GetDescription())
		}
	}
	return firstErr
}
