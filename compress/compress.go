// Package compress hides the plugin compressor ABI behind a small
// synchronous contract (spec.md §4.1): a Codec the registry looks up
// by name, and an Adapter that is single-threaded with respect to a
// given stream and whose results alias its own scratch memory until
// the next Compress/Realloc call.
//
// Grounded on the teacher's lz4Stream (transport/send.go), generalised
// from "one hardcoded lz4.Writer" to a registry of interchangeable
// Codecs - the registry idea spec.md §1 calls out explicitly
// ("the plugin-based compressor registry").
package compress

import (
	"fmt"
	"sync"

	"github.com/ais-oss/objstream/chunk"
)

// Codec is the narrow plugin ABI: compress src into dst's backing
// array where possible, returning the compressed bytes. Implementations
// may grow dst as needed (mirroring how lz4.Writer grows its SGL).
type Codec interface {
	// Name is the id a peer uses to pick a matching decompressor.
	Name() string
	// Compress appends the compressed form of src to dst[:0]'s backing
	// array (append-style), returning the result slice.
	Compress(dst, src []byte) ([]byte, error)
}

// Registry is the plugin-based compressor registry: a name -> Codec
// lookup table, guarded for concurrent Setup calls from independent
// streams.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewRegistry returns a registry pre-populated with the codecs wired
// into this module's domain stack (lz4, zstd, snappy) plus "none".
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	r.Register(noneCodec{})
	r.Register(newLZ4Codec(0))
	r.Register(newZstdCodec())
	r.Register(newSnappyCodec())
	return r
}

// Register adds or replaces a codec under its own Name().
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Name()] = c
}

// Lookup returns the codec registered under id, if any.
func (r *Registry) Lookup(id string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[id]
	return c, ok
}

// DefaultRegistry is the process-wide registry new Adapters resolve
// against unless given one explicitly (the pluginRegistry of spec.md
// §6; it is a package variable, not a field of cmn.GCO's config).
var DefaultRegistry = NewRegistry()

// Adapter wraps one Codec's plugin ABI for the lifetime of a single
// stream (spec.md §4.1: "single-threaded with respect to a given DOS").
// Results returned by Compress alias Adapter-owned scratch and are
// valid only until the next Compress or Realloc call.
type Adapter struct {
	registry *Registry
	codec    Codec
	scratch  []byte
}

// NewAdapter builds an adapter bound to registry (DefaultRegistry if nil).
func NewAdapter(registry *Registry) *Adapter {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Adapter{registry: registry}
}

// ErrCompressorUnavailable is returned by Setup when the registry has no
// entry for the requested id (spec.md §7: CompressorUnavailable).
var ErrCompressorUnavailable = fmt.Errorf("compress: compressor not registered")

// Setup binds the adapter to the named codec. Fails at stream
// construction time if the plugin registry has no matching entry.
func (a *Adapter) Setup(name string) error {
	if name == "" || name == chunk.NoneID {
		a.codec = noneCodec{}
		return nil
	}
	c, ok := a.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrCompressorUnavailable, name)
	}
	a.codec = c
	return nil
}

// Info mirrors the adapter's info().name accessor.
func (a *Adapter) Info() (name string) {
	if a.codec == nil {
		return chunk.NoneID
	}
	return a.codec.Name()
}

// Compress runs the bound codec over src, producing compressor-owned
// scratch memory. The returned Result is valid until the next Compress
// or Realloc call on this adapter.
func (a *Adapter) Compress(src []byte) (chunk.Result, error) {
	if a.codec == nil || a.codec.Name() == chunk.NoneID {
		return chunk.Raw(src), nil
	}
	out, err := a.codec.Compress(a.scratch[:0], src)
	if err != nil {
		return chunk.Result{}, fmt.Errorf("compress: %s: %w", a.codec.Name(), err)
	}
	a.scratch = out
	return chunk.Result{
		Chunks:       []chunk.Chunk{{Bytes: out, Owned: false}},
		CompressorID: a.codec.Name(),
		RawSize:      int64(len(src)),
	}, nil
}

// Realloc releases scratch memory, used after an UNCOMPRESSIBLE
// decision to avoid retaining large scratch buffers (spec.md §4.1).
func (a *Adapter) Realloc() {
	a.scratch = nil
}
