package objdata

import (
	"github.com/ais-oss/objstream/chunk"
	"github.com/ais-oss/objstream/transport"
)

// Command specialises transport.OutputCommand with the versioned
// object-data header (spec.md §4.5). Exactly one of two finalisation
// paths runs on Close: a prepared Body drives OC's external-body path;
// otherwise the typed writes the caller made after construction go
// through OC's implicit (buffered) path.
type Command struct {
	*transport.OutputCommand
	body *chunk.Result
}

// NewRemoteCommand builds an ODOC sent to a resolved recipient set on
// Close, writing the object-data header immediately after the OC
// preamble. body, if non-nil, is sent via OC's external-body path
// instead of being copied into the stream buffer (spec.md §4.5).
func NewRemoteCommand(cos *transport.ConnectionOutputStream, nodes []string, useMulticast bool, cmdType, cmdID uint32, header Header, body *chunk.Result) (*Command, error) {
	oc, err := transport.NewRemoteOutputCommand(cos, nodes, useMulticast, cmdType, cmdID)
	if err != nil {
		return nil, err
	}
	return newCommand(oc, header, body), nil
}

// NewLocalCommand builds an ODOC dispatched locally on Close.
func NewLocalCommand(cos *transport.ConnectionOutputStream, dispatcher transport.LocalDispatcher, cmdType, cmdID uint32, header Header, body *chunk.Result) *Command {
	oc := transport.NewLocalOutputCommand(cos, dispatcher, cmdType, cmdID)
	return newCommand(oc, header, body)
}

// newCommandOnPreparedCOS builds an ODOC on a COS whose recipients are
// already resolved/injected (transport.ConnectionOutputStream.
// SetupConnections), writing the header followed by the trailing
// node/instance identity pair (spec.md §4.6; original source's
// ObjectInstanceDataOStream::sendData appends exactly this pair after
// the object-data header: "<< _nodeID << _cm->getObject()->getInstanceID()").
// Used by Stream's own per-flush emit hook, which already holds a
// resolved recipient set and must not re-resolve it by node name.
func newCommandOnPreparedCOS(cos *transport.ConnectionOutputStream, cmdType, cmdID uint32, header Header, id ID, body *chunk.Result) *Command {
	oc := transport.NewOutputCommand(cos, cmdType, cmdID)
	encodeHeader(oc.Stream, header)
	id.WriteTo(oc.Stream)
	return &Command{OutputCommand: oc, body: body}
}

func newCommand(oc *transport.OutputCommand, header Header, body *chunk.Result) *Command {
	encodeHeader(oc.Stream, header)
	return &Command{OutputCommand: oc, body: body}
}

// Close finalises the command: the external-body path when a prepared
// body was supplied at construction, OC's regular close otherwise
// (spec.md §4.5: "the destructor invokes OC's external-body path with
// that body; otherwise the typed body ... implicit path is used").
func (c *Command) Close() error {
	if c.body != nil {
		return c.OutputCommand.SendBody(*c.body)
	}
	return c.OutputCommand.Close()
}
