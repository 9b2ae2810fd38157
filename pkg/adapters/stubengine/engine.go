// Package stubengine provides a deterministic pass-through compressor
// engine for development and testing. It performs no real compression:
// each frame becomes a fixed header plus a luma digest, while the
// engine-side session contract is modeled faithfully (lag buffering,
// keyframe placement, reference masks, first-pass statistics and
// shown-timestamp tracking).
package stubengine

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/ports"
)

// payloadMagic begins every stub frame payload.
var payloadMagic = [4]byte{'S', 'V', 'P', '8'}

const (
	headerSize       = 24
	keyframeFiller   = 256
	interFrameFiller = 64
	payloadFlagKey   = 1
	payloadFlagShown = 2
)

type pendingFrame struct {
	digest    uint64
	timestamp int64
	endTime   int64
	forceKey  bool
	altRef    bool
}

// Engine implements ports.CompressorEngine without compressing.
type Engine struct {
	cfg ports.EngineConfig

	pending  []pendingFrame
	carryKey *pendingFrame

	frameIndex int
	sinceKey   int
	lastShown  int64

	entropyUpdate bool
	refs          [3]*ports.FrameBuffer
	lastSubmitted *ports.FrameBuffer

	quantizer int
	closed    bool

	statsCount int
}

type emitted struct {
	unit    ports.CompressedUnit
	payload []byte
}

// New constructs a stub engine from an initial configuration.
func New(cfg ports.EngineConfig) (*Engine, error) {
	e := &Engine{entropyUpdate: true}
	if err := e.ChangeConfig(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Factory adapts New to the session layer's constructor signature.
func Factory(cfg ports.EngineConfig) (ports.CompressorEngine, error) {
	return New(cfg)
}

// ChangeConfig installs a new configuration. The stub derives its
// reported quantizer from the allowed range.
func (e *Engine) ChangeConfig(cfg ports.EngineConfig) error {
	e.cfg = cfg
	e.quantizer = (cfg.BestAllowedQ + cfg.WorstAllowedQ) / 2
	return nil
}

// ReceiveRawFrame queues one raw picture. Output is withheld until the
// lag window fills or a flush drains it.
func (e *Engine) ReceiveRawFrame(flags ports.SubmitFlags, frame *ports.FrameBuffer, timestamp, endTimestamp int64) error {
	e.lastSubmitted = frame
	e.pending = append(e.pending, pendingFrame{
		digest:    lumaDigest(frame),
		timestamp: timestamp,
		endTime:   endTimestamp,
		forceKey:  flags&ports.SubmitKeyframe != 0,
		altRef:    flags&ports.SubmitAltRefUpdate != 0,
	})
	return nil
}

// CompressedData emits the next unit into dst, honoring the configured
// lag. In first-pass mode it emits one statistics record per frame and
// a trailing aggregate record on flush.
func (e *Engine) CompressedData(dst []byte, flush bool) (*ports.CompressedUnit, error) {
	if e.carryKey != nil {
		frame := *e.carryKey
		e.carryKey = nil
		out := e.buildFrame(frame, true, true)
		copy(dst, out.payload)
		return &out.unit, nil
	}

	if e.cfg.Mode == ports.ModeFirstPass {
		return e.nextStatsUnit(dst, flush)
	}

	lag := 0
	if e.cfg.AllowLag {
		lag = e.cfg.LagInFrames
	}
	if len(e.pending) == 0 || (!flush && len(e.pending) <= lag) {
		return nil, nil
	}

	frame := e.pending[0]
	e.pending = e.pending[1:]

	key := e.frameIndex == 0 || frame.forceKey ||
		(e.cfg.AutoKeyframe && e.sinceKey >= e.cfg.KeyFrequency)

	// Auto alt-ref inserts an invisible reference frame ahead of each
	// non-initial keyframe. The visible keyframe is built on the next
	// pull: the shown-timestamp tracker must keep reporting the previous
	// displayed frame while the invisible unit is out.
	if key && e.cfg.PlayAlternate && e.frameIndex > 0 {
		e.carryKey = &frame

		invisible := e.buildFrame(frame, false, false)
		copy(dst, invisible.payload)
		return &invisible.unit, nil
	}

	out := e.buildFrame(frame, key, true)
	copy(dst, out.payload)
	return &out.unit, nil
}

// buildFrame assembles one emitted unit and advances the frame
// counters. Only shown frames advance the shown-timestamp tracker.
func (e *Engine) buildFrame(frame pendingFrame, key, shown bool) *emitted {
	filler := interFrameFiller
	if key {
		filler = keyframeFiller
	}

	payload := make([]byte, headerSize+filler)
	copy(payload, payloadMagic[:])
	var flagByte byte
	if key {
		flagByte |= payloadFlagKey
	}
	if shown {
		flagByte |= payloadFlagShown
	}
	payload[4] = flagByte
	binary.LittleEndian.PutUint32(payload[8:], uint32(e.frameIndex))
	binary.LittleEndian.PutUint64(payload[16:], frame.digest)
	for i := 0; i < filler; i++ {
		payload[headerSize+i] = byte(frame.digest >> (uint(i) % 64))
	}

	e.frameIndex++
	if key {
		e.sinceKey = 0
	} else {
		e.sinceKey++
	}
	if shown {
		e.lastShown = frame.timestamp
	}

	return &emitted{
		unit: ports.CompressedUnit{
			Size:         len(payload),
			Keyframe:     key,
			Shown:        shown,
			Timestamp:    frame.timestamp,
			EndTimestamp: frame.endTime,
		},
		payload: payload,
	}
}

// nextStatsUnit emits first-pass statistics: one record per submitted
// frame, then the aggregate end-of-stream record once flushed.
func (e *Engine) nextStatsUnit(dst []byte, flush bool) (*ports.CompressedUnit, error) {
	if len(e.pending) > 0 {
		frame := e.pending[0]
		e.pending = e.pending[1:]

		rec := codec.FirstPassStats{
			Frame:      float64(e.statsCount),
			IntraError: float64(frame.digest % 4096),
			CodedError: float64(frame.digest % 2048),
			PctInter:   0.5,
			Duration:   float64(frame.endTime - frame.timestamp),
			Count:      0,
		}
		payload := codec.EncodeStatsRecord(nil, &rec)
		copy(dst, payload)
		e.statsCount++
		e.lastShown = frame.timestamp

		return &ports.CompressedUnit{
			Size:         len(payload),
			Stats:        true,
			Shown:        true,
			Timestamp:    frame.timestamp,
			EndTimestamp: frame.endTime,
		}, nil
	}

	if flush && e.statsCount > 0 {
		rec := codec.FirstPassStats{Count: float64(e.statsCount)}
		payload := codec.EncodeStatsRecord(nil, &rec)
		copy(dst, payload)
		e.statsCount = 0

		return &ports.CompressedUnit{Size: len(payload), Stats: true, Shown: true}, nil
	}

	return nil, nil
}

// LastTimestampSeen reports the timestamp of the most recent shown
// frame.
func (e *Engine) LastTimestampSeen() int64 {
	return e.lastShown
}

// UseAsReference accepts a reference-usage mask. The stub predicts from
// nothing, so the mask is validated and discarded.
func (e *Engine) UseAsReference(mask ports.RefMask) error {
	return checkMask(mask)
}

// UpdateReference accepts a reference-update mask.
func (e *Engine) UpdateReference(mask ports.RefMask) error {
	return checkMask(mask)
}

// UpdateEntropy toggles entropy-context updates.
func (e *Engine) UpdateEntropy(update bool) error {
	e.entropyUpdate = update
	return nil
}

// SetReference stores a deep copy of frame in the given slot.
func (e *Engine) SetReference(slot ports.RefMask, frame *ports.FrameBuffer) error {
	i, err := slotIndex(slot)
	if err != nil {
		return err
	}
	e.refs[i] = cloneBuffer(frame)
	return nil
}

// CopyReference copies the slot's planes into frame's planes.
func (e *Engine) CopyReference(slot ports.RefMask, frame *ports.FrameBuffer) error {
	i, err := slotIndex(slot)
	if err != nil {
		return err
	}
	if e.refs[i] == nil {
		return codec.ErrInvalidParam
	}
	copy(frame.Y, e.refs[i].Y)
	copy(frame.U, e.refs[i].U)
	copy(frame.V, e.refs[i].V)
	return nil
}

// SetROIMap validates the map dimensions against the macroblock grid.
func (e *Engine) SetROIMap(roi ports.ROIMap) error {
	if roi.Rows != mbCount(e.cfg.Height) || roi.Cols != mbCount(e.cfg.Width) {
		return codec.ErrInvalidParam
	}
	if len(roi.Map) != roi.Rows*roi.Cols {
		return codec.ErrInvalidParam
	}
	return nil
}

// SetActiveMap validates the map dimensions against the macroblock grid.
func (e *Engine) SetActiveMap(active ports.ActiveMap) error {
	if active.Rows != mbCount(e.cfg.Height) || active.Cols != mbCount(e.cfg.Width) {
		return codec.ErrInvalidParam
	}
	if len(active.Map) != active.Rows*active.Cols {
		return codec.ErrInvalidParam
	}
	return nil
}

// SetInternalSize validates the scaling modes.
func (e *Engine) SetInternalSize(horizontal, vertical ports.ScalingMode) error {
	if horizontal < ports.ScaleNormal || horizontal > ports.ScaleOneHalf ||
		vertical < ports.ScaleNormal || vertical > ports.ScaleOneHalf {
		return codec.ErrInvalidParam
	}
	return nil
}

// Quantizer returns the stub's derived quantizer index.
func (e *Engine) Quantizer() int {
	return e.quantizer
}

// PreviewFrame returns the last submitted frame; the stub has no
// reconstruction to post-process.
func (e *Engine) PreviewFrame(flags ports.PostProcFlags) (*ports.FrameBuffer, error) {
	if e.lastSubmitted == nil {
		return nil, nil
	}
	return cloneBuffer(e.lastSubmitted), nil
}

// Close drops all queued state.
func (e *Engine) Close() error {
	e.pending = nil
	e.carryKey = nil
	e.lastSubmitted = nil
	e.closed = true
	return nil
}

func checkMask(mask ports.RefMask) error {
	if mask&^ports.RefAll != 0 {
		return codec.ErrInvalidParam
	}
	return nil
}

func slotIndex(slot ports.RefMask) (int, error) {
	switch slot {
	case ports.RefLast:
		return 0, nil
	case ports.RefGolden:
		return 1, nil
	case ports.RefAltRef:
		return 2, nil
	}
	return 0, codec.ErrInvalidParam
}

func mbCount(pixels int) int {
	return (pixels + 15) / 16
}

func cloneBuffer(src *ports.FrameBuffer) *ports.FrameBuffer {
	dup := *src
	dup.Y = append([]byte(nil), src.Y...)
	dup.U = append([]byte(nil), src.U...)
	dup.V = append([]byte(nil), src.V...)
	return &dup
}

// lumaDigest hashes the visible luma rows, respecting the stride.
func lumaDigest(frame *ports.FrameBuffer) uint64 {
	h := fnv.New64a()
	for row := 0; row < frame.YHeight; row++ {
		start := row * frame.YStride
		end := start + frame.YWidth
		if end > len(frame.Y) {
			break
		}
		h.Write(frame.Y[start:end])
	}
	return h.Sum64()
}

var _ ports.CompressorEngine = (*Engine)(nil)
