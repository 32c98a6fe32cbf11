package cmn

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// TransportConf holds the streaming-core-specific knobs: the default
// chunk flush granularity, the compression heuristic's threshold, and
// the compressor block size, mirroring the teacher's cmn.Config.Transport
// section (LZ4BlockMaxSize, Compression, ...) exercised directly in
// the pack's stream_bundle_test.go:
//
//	config := cmn.GCO.BeginUpdate()
//	config.Transport.LZ4BlockMaxSize = cos.SizeIEC(v)
//	cmn.GCO.CommitUpdate(config)
type TransportConf struct {
	// ObjectBufferSize is the default DOS flush granularity (chunkSize).
	ObjectBufferSize int64
	// ObjectCompressionThreshold is the minimum tail length worth
	// attempting to compress.
	ObjectCompressionThreshold int64
	// Compression is the process-wide default compression mode
	// (CompressNever / CompressAlways). Streams do not read it on their
	// own; a caller passes it to dos.Stream.SetCompression.
	Compression string
	// LZ4BlockMaxSize is validated but not read by the lz4 codec, which
	// sizes its output with lz4.CompressBlockBound.
	LZ4BlockMaxSize int64
	// FrameChecksum is carried as a flag only; no component computes or
	// verifies a frame checksum.
	FrameChecksum bool
}

// Validate mirrors config.Transport.Validate() in the pack's test:
// ObjectBufferSize, ObjectCompressionThreshold and LZ4BlockMaxSize must
// all be strictly positive (spec.md §3 invariant).
func (t *TransportConf) Validate() error {
	if t.ObjectBufferSize <= 0 {
		return fmt.Errorf("cmn: ObjectBufferSize must be > 0, got %d", t.ObjectBufferSize)
	}
	if t.ObjectCompressionThreshold <= 0 {
		return fmt.Errorf("cmn: ObjectCompressionThreshold must be > 0, got %d", t.ObjectCompressionThreshold)
	}
	if t.LZ4BlockMaxSize <= 0 {
		return fmt.Errorf("cmn: LZ4BlockMaxSize must be > 0, got %d", t.LZ4BlockMaxSize)
	}
	return nil
}

// Config is the process-wide read-only snapshot streams take at
// construction (spec.md §5, "Shared resources").
type Config struct {
	Transport TransportConf
}

func defaultConfig() *Config {
	return &Config{Transport: TransportConf{
		ObjectBufferSize:           64 * KiB,
		ObjectCompressionThreshold: 256,
		Compression:                CompressNever,
		LZ4BlockMaxSize:            4 * MiB,
		FrameChecksum:              false,
	}}
}

// gco is the global config owner: copy-on-write, exactly as the
// teacher's cmn.GCO - readers call Get(), writers BeginUpdate a private
// copy and CommitUpdate it atomically.
type gco struct {
	mu  sync.Mutex
	cur atomic.Value // *Config
}

func (g *gco) Get() *Config {
	if v := g.cur.Load(); v != nil {
		return v.(*Config)
	}
	return defaultConfig()
}

// BeginUpdate returns a private copy of the current config for the
// caller to mutate; it must be finished with CommitUpdate.
func (g *gco) BeginUpdate() *Config {
	g.mu.Lock()
	cfg := *g.Get()
	return &cfg
}

func (g *gco) CommitUpdate(cfg *Config) {
	g.cur.Store(cfg)
	g.mu.Unlock()
}

// GCO is the package-wide config owner, mirroring cmn.GCO.
var GCO = &gco{}

func init() {
	GCO.cur.Store(defaultConfig())
}
