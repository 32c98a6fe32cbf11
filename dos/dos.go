// Package dos implements the data output stream: the byte-level
// accumulator that backs every command and object-data stream in this
// module. It buffers typed writes, flushes on chunk-size boundaries,
// runs the adaptive compression heuristic on each flush, and hands the
// framed payload to whatever policy (fan-out, single-send, local
// dispatch) the embedding type installs as its emit hook.
//
// Grounded on Collage's co::DataOStream (original_source/co/dataOStream.{h,cpp}):
// same State machine, same buffer/bufferStart/save-mode bookkeeping.
// close() has no PARTIAL->COMPLETE collapse step: it always sends one
// final frame, empty if the tail is empty.
package dos

import (
	"fmt"

	"github.com/ais-oss/objstream/chunk"
	"github.com/ais-oss/objstream/cmn"
	"github.com/ais-oss/objstream/compress"
	"github.com/ais-oss/objstream/internal/xatomic"
)

// State is the compression state machine driving the adaptive
// compress-or-not decision (spec.md §3, §4.2).
type State int

const (
	Uncompressed State = iota
	Partial
	Complete
	Uncompressible
	DontCompress
)

func (s State) String() string {
	switch s {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Partial:
		return "PARTIAL"
	case Complete:
		return "COMPLETE"
	case Uncompressible:
		return "UNCOMPRESSIBLE"
	case DontCompress:
		return "DONT_COMPRESS"
	default:
		return "UNKNOWN"
	}
}

// Stats are the teacher's transport.Stats counters, carried forward
// per SPEC_FULL.md's "Stream stats" supplement.
type Stats struct {
	Num            xatomic.Int64
	Size           xatomic.Int64
	Offset         xatomic.Int64
	CompressedSize xatomic.Int64
}

// CompressionRatio mirrors transport.Stats.CompressionRatio.
func (s *Stats) CompressionRatio() float64 {
	sent := s.CompressedSize.Load()
	if sent == 0 {
		return 0
	}
	return float64(s.Offset.Load()) / float64(sent)
}

// EmitFunc is the subclass hook DataOStream calls with each framed
// payload (spec.md §2: "emits framed payloads to a subclass hook").
type EmitFunc func(data chunk.Result, last bool) error

// Stream is the data output stream (spec.md §4.2). It is not safe for
// concurrent use - spec.md §5 scopes it to single-task ownership.
type Stream struct {
	buf         []byte
	bufferStart int
	state       State
	dataSize    int64 // uncompressed size of a completely-compressed buffer

	chunkSize            int64
	compressionThreshold int64

	adapter *compress.Adapter
	emit    EmitFunc

	// compressionMode is the caller-requested override (cmn.CompressNever
	// / cmn.CompressAlways), set via SetCompression (spec.md §3:
	// "DONT_COMPRESS (caller-requested bypass)").
	compressionMode string

	// StateOverride, when set, lets an embedding type (e.g. the
	// connection output stream) force the compress target state
	// regardless of the bufferStart-derived default - used to force
	// DONT_COMPRESS when a stream currently has no recipients
	// (spec.md §4.3 compress override).
	StateOverride func(base State) State

	save        bool
	open_       bool
	dataEmitted bool
	wroteAny    bool

	stats Stats

	cached chunk.Result
}

// New builds a stream bound to registry (nil selects compress.DefaultRegistry)
// and not yet open. save enables the replay buffer (spec.md: "Save mode").
func New(registry *compress.Registry, save bool) *Stream {
	cfg := cmn.GCO.Get()
	return &Stream{
		adapter:              compress.NewAdapter(registry),
		save:                 save,
		chunkSize:            cfg.Transport.ObjectBufferSize,
		compressionThreshold: cfg.Transport.ObjectCompressionThreshold,
	}
}

// SetEmit installs the subclass emit hook. Must be called before Open.
func (s *Stream) SetEmit(fn EmitFunc) { s.emit = fn }

// SetCompressor binds the compressor adapter to a registered codec id
// (spec.md §4.1 setup). An empty name or chunk.NoneID disables
// compression outright.
func (s *Stream) SetCompressor(name string) error {
	if err := s.adapter.Setup(name); err != nil {
		return fmt.Errorf("dos: %w", err)
	}
	return nil
}

// SetChunkSize overrides the flush granularity; must be called while
// closed (spec.md §4.4 uses this to force a single-frame command).
func (s *Stream) SetChunkSize(n int64) {
	cmn.Assert(!s.open_, "dos: SetChunkSize while open")
	cmn.Assert(n > 0, "dos: chunk size must be > 0")
	s.chunkSize = n
}

// SetCompression pins the compress target state to the caller's
// request instead of the bufferStart-derived default: cmn.CompressNever
// forces every flush to DONT_COMPRESS, cmn.CompressAlways forces a
// compression attempt even on a tail at or under the threshold. An
// empty mode restores the adaptive heuristic. Must be called while
// closed.
func (s *Stream) SetCompression(mode string) {
	cmn.Assert(!s.open_, "dos: SetCompression while open")
	s.compressionMode = mode
}

// IsOpen reports whether the stream is between Open and Close.
func (s *Stream) IsOpen() bool { return s.open_ }

// HasData reports whether data was emitted since the last Open
// (spec.md: DataOStream::hasData).
func (s *Stream) HasData() bool { return s.dataEmitted }

// Stats returns a snapshot copy of the stream's transfer counters.
func (s *Stream) Stats() Stats {
	var out Stats
	out.Num.Store(s.stats.Num.Load())
	out.Size.Store(s.stats.Size.Load())
	out.Offset.Store(s.stats.Offset.Load())
	out.CompressedSize.Store(s.stats.CompressedSize.Load())
	return out
}

// Open resets the stream to UNCOMPRESSED and begins accepting writes
// (spec.md §4.2 open precondition: stream is closed). UNCOMPRESSIBLE is
// sticky for the life of the stream (spec.md §4.2, §8 scenario 3): once
// latched it survives Open/Close cycles, so it is not reset here.
func (s *Stream) Open() {
	cmn.Assert(!s.open_, "dos: Open on already-open stream")
	if s.state != Uncompressible {
		s.state = Uncompressed
	}
	s.bufferStart = 0
	s.dataEmitted = false
	s.dataSize = 0
	s.wroteAny = false
	s.open_ = true
	if cap(s.buf) == 0 {
		s.buf = make([]byte, 0, 256)
	} else {
		s.buf = s.buf[:0]
	}
}

// Write appends bytes to the buffer tail, flushing first if the
// unflushed tail already exceeds chunkSize (spec.md §4.2).
func (s *Stream) Write(p []byte) {
	cmn.Assert(s.open_, "dos: Write while closed")
	s.wroteAny = true
	if int64(len(s.buf)-s.bufferStart) > s.chunkSize {
		s.Flush(false)
	}
	s.buf = append(s.buf, p...)
}

// Flush emits the tail [bufferStart, len(buf)) as one frame and resets
// the buffer per the save-mode rule (spec.md §4.2).
func (s *Stream) Flush(last bool) error {
	cmn.Assert(s.open_, "dos: Flush while closed")
	tail := s.buf[s.bufferStart:]
	targetState := s.baseTargetState()
	if s.StateOverride != nil {
		targetState = s.StateOverride(targetState)
	}
	s.dataSize = int64(len(tail))

	result, err := s.compress(tail, targetState)
	if err != nil {
		return err
	}
	if err := s.emitFrame(result, last); err != nil {
		return err
	}
	s.dataEmitted = true
	s.resetBuffer()
	return nil
}

// Close finalises the stream: it always emits exactly one last=true
// frame whenever Write was ever called this open cycle (spec.md §9 open
// question, resolved as "always emit"), even when the tail left to send
// is empty - an empty tail goes out as an empty last frame, and the
// state is not switched to COMPLETE. An open immediately followed by
// Close with no intervening Write emits nothing.
func (s *Stream) Close() error {
	if !s.open_ {
		return nil
	}
	if s.wroteAny {
		tail := s.buf[s.bufferStart:]
		s.dataSize = int64(len(s.buf))
		targetState := s.baseTargetState()
		if s.StateOverride != nil {
			targetState = s.StateOverride(targetState)
		}
		result, err := s.compress(tail, targetState)
		if err != nil {
			return err
		}
		if err := s.emitFrame(result, true); err != nil {
			return err
		}
		s.dataEmitted = true
	}
	if !s.save {
		s.buf = s.buf[:0]
	}
	s.open_ = false
	return nil
}

// Reset hard-resets the stream without ever emitting (spec.md §4.2).
func (s *Stream) Reset() {
	s.resetBuffer()
	s.open_ = false
	s.dataEmitted = false
	s.wroteAny = false
}

// Reemit re-compresses the full saved buffer and emits it once with
// last=true, for replay to a freshly-attached recipient set (spec.md
// §4.2, §4.6). Requires save mode and prior data.
func (s *Stream) Reemit() error {
	cmn.Assert(!s.open_, "dos: Reemit while open")
	cmn.Assert(s.save, "dos: Reemit without save mode")
	cmn.Assert(s.dataEmitted, "dos: Reemit without prior data")
	targetState := Complete
	if s.compressionMode == cmn.CompressNever {
		targetState = DontCompress
	}
	result, err := s.compress(s.buf[:s.dataSize], targetState)
	if err != nil {
		return err
	}
	return s.emitFrame(result, true)
}

// baseTargetState derives the bufferStart-driven default state and
// folds in the caller's SetCompression request, ahead of any
// StateOverride the embedding type installs (spec.md §4.2, §3).
func (s *Stream) baseTargetState() State {
	targetState := Complete
	if s.bufferStart != 0 {
		targetState = Partial
	}
	if s.compressionMode == cmn.CompressNever {
		targetState = DontCompress
	}
	return targetState
}

func (s *Stream) resetBuffer() {
	// UNCOMPRESSIBLE is sticky (spec.md §4.2, §8 scenario 3): a flush
	// that rejected compression must keep every later compress() call on
	// this stream cheap, so the latch is not cleared on reset.
	if s.state != Uncompressible {
		s.state = Uncompressed
	}
	if s.save {
		s.bufferStart = len(s.buf)
	} else {
		s.bufferStart = 0
		s.buf = s.buf[:0]
	}
}

func (s *Stream) emitFrame(result chunk.Result, last bool) error {
	s.stats.Offset.Add(int64(len(s.buf) - s.bufferStart))
	s.stats.CompressedSize.Add(result.TotalSize())
	if s.emit == nil {
		return nil
	}
	return s.emit(result, last)
}

// compress implements the adaptive heuristic of spec.md §4.2:
// sticky UNCOMPRESSIBLE, cached result on repeated same-state calls,
// threshold/DONT_COMPRESS bypass, and COMPLETE-state buffer release.
func (s *Stream) compress(data []byte, newState State) (chunk.Result, error) {
	cmn.Assert(newState == Partial || newState == Complete || newState == DontCompress,
		"dos: invalid compress target state")

	if s.state == Uncompressible {
		// Sticky latch: never invoke the plugin again on this stream, but
		// still pass the current (possibly new) tail through untouched -
		// the latch retires the compressor, not the data.
		s.cached = chunk.Raw(data)
		return s.cached, nil
	}
	if s.state == newState {
		// Re-call with the same target state and no intervening reset
		// (Reemit after Close): the data has not changed, return the
		// already-computed result rather than recompressing.
		return s.cached, nil
	}

	if s.adapter.Info() == chunk.NoneID || newState == DontCompress ||
		(int64(len(data)) <= s.compressionThreshold && s.compressionMode != cmn.CompressAlways) {
		s.cached = chunk.Raw(data)
		return s.cached, nil
	}

	result, err := s.adapter.Compress(data)
	if err != nil {
		return chunk.Result{}, fmt.Errorf("dos: compress: %w", err)
	}

	if result.TotalSize() >= int64(len(data)) {
		// Incompressible: latch UNCOMPRESSIBLE and release scratch, but
		// the raw result aliases `data` (a view into s.buf) - the
		// buffer itself is left untouched here; Flush/Close decide
		// whether to clear it once the caller (emit hook) has
		// synchronously consumed the result.
		s.adapter.Realloc()
		s.state = Uncompressible
		s.cached = chunk.Raw(data)
		return s.cached, nil
	}

	// Compressed successfully: the result now lives in the adapter's
	// own scratch memory, independent of s.buf.
	if newState == Complete {
		cmn.Assert(int64(len(s.buf)) == s.dataSize,
			fmt.Sprintf("dos: buffered %d not complete with %d bytes in state %s",
				len(s.buf), s.dataSize, s.state))
	}
	s.state = newState
	s.cached = result
	return s.cached, nil
}

// Buffer returns the raw accumulator, for callers (OC) that patch
// already-written header bytes in place - valid only while open.
func (s *Stream) Buffer() []byte { return s.buf }

// SavedBuffer returns the full retained buffer up to the last emitted
// size, for replay callers; only meaningful when save mode is on.
func (s *Stream) SavedBuffer() []byte {
	if int64(len(s.buf)) < s.dataSize {
		return s.buf
	}
	return s.buf[:s.dataSize]
}
