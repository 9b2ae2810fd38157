package session

import (
	"errors"
	"testing"

	"github.com/user/vp8session/pkg/adapters/stubengine"
	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/mocks"
	"github.com/user/vp8session/pkg/ports"
)

func newTestImage(w, h int) *codec.Image {
	uvW := (w + 1) / 2
	uvH := (h + 1) / 2
	img := &codec.Image{
		Format: codec.FormatI420,
		Width:  w,
		Height: h,
	}
	img.Planes[0] = make([]byte, w*h)
	img.Planes[1] = make([]byte, uvW*uvH)
	img.Planes[2] = make([]byte, uvW*uvH)
	img.Strides[0] = w
	img.Strides[1] = uvW
	img.Strides[2] = uvW
	return img
}

func TestRescaleTimestamp_RoundTrip(t *testing.T) {
	tb := codec.Rational{Num: 1, Den: 30}

	for pts := int64(0); pts < 300; pts++ {
		ticks := toEngineTicks(pts, tb)
		if got := RescaleTimestamp(ticks, tb); got != pts {
			t.Fatalf("pts %d: rescale(%d) = %d", pts, ticks, got)
		}
	}
}

func TestRescaleTimestamp_UnitDuration(t *testing.T) {
	// The duration of one tick survives the round trip even though the
	// tick conversion truncates.
	tbs := []codec.Rational{
		{Num: 1, Den: 30},
		{Num: 1, Den: 25},
		{Num: 1001, Den: 30000},
	}
	for _, tb := range tbs {
		delta := toEngineTicks(1, tb) - toEngineTicks(0, tb)
		if got := RescaleTimestamp(delta, tb); got != 1 {
			t.Errorf("tb %d/%d: duration %d, want 1", tb.Num, tb.Den, got)
		}
	}
}

// modeTestSession opens a session that records every mode handed to the
// engine through ChangeConfig.
func modeTestSession(t *testing.T, cfg codec.GlobalConfig) (*Session, *[]ports.EngineMode) {
	t.Helper()
	var modes []ports.EngineMode
	engine := &mocks.CompressorEngine{
		ChangeConfigFunc: func(cfg ports.EngineConfig) error {
			modes = append(modes, cfg.Mode)
			return nil
		},
	}
	sess, err := Open(cfg, mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess, &modes
}

func TestEncode_ModeSelection(t *testing.T) {
	img := newTestImage(64, 48)
	// One frame at 30 fps displays for 33333 us.
	const frameUs = 33333

	tests := []struct {
		name     string
		deadline uint64
		want     ports.EngineMode
		changed  bool
	}{
		{"no deadline is best quality", 0, ports.ModeBestQuality, false},
		{"roomy deadline is good quality", frameUs * 2, ports.ModeGoodQuality, true},
		{"tight deadline is real time", 1, ports.ModeRealTime, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, modes := modeTestSession(t, testConfig())
			if err := sess.Encode(img, 0, 1, 0, tt.deadline); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !tt.changed {
				// Best quality is already the active mode; no engine
				// round trip happens.
				if len(*modes) != 0 {
					t.Errorf("expected no mode change, got %v", *modes)
				}
				return
			}
			if len(*modes) != 1 || (*modes)[0] != tt.want {
				t.Errorf("expected mode %v, got %v", tt.want, *modes)
			}
		})
	}
}

func TestEncode_DeprecatedModeOverride(t *testing.T) {
	sess, modes := modeTestSession(t, testConfig())
	if err := sess.SetDeprecatedMode(codec.EncodingRealTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A deadline that would pick good quality loses to the override.
	if err := sess.Encode(newTestImage(64, 48), 0, 1, 0, 1000000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*modes) != 1 || (*modes)[0] != ports.ModeRealTime {
		t.Errorf("expected real time, got %v", *modes)
	}
}

func TestEncode_PassForcesMode(t *testing.T) {
	cfg := testConfig()
	cfg.Pass = codec.PassFirst
	sess, modes := modeTestSession(t, cfg)

	// Initial engine config is already first pass; encoding with any
	// deadline must not change it.
	if err := sess.Encode(newTestImage(64, 48), 0, 1, 0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*modes) != 0 {
		t.Errorf("expected first pass mode to stick, got %v", *modes)
	}
}

func TestEncode_ConflictingFlags(t *testing.T) {
	sess, err := Open(testConfig(), mockFactory(&mocks.CompressorEngine{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	img := newTestImage(64, 48)
	conflicts := []codec.FrameFlags{
		codec.FlagNoUpdateGolden | codec.FlagForceGolden,
		codec.FlagNoUpdateAltRef | codec.FlagForceAltRef,
	}
	for _, flags := range conflicts {
		if err := sess.Encode(img, 0, 1, flags, 0); !errors.Is(err, codec.ErrInvalidParam) {
			t.Errorf("flags %b: expected ErrInvalidParam, got %v", flags, err)
		}
	}
}

func TestEncode_ReferenceMasks(t *testing.T) {
	var useMask, updMask ports.RefMask
	var entropyCalls []bool
	engine := &mocks.CompressorEngine{
		UseAsReferenceFunc: func(mask ports.RefMask) error {
			useMask = mask
			return nil
		},
		UpdateReferenceFunc: func(mask ports.RefMask) error {
			updMask = mask
			return nil
		},
		UpdateEntropyFunc: func(update bool) error {
			entropyCalls = append(entropyCalls, update)
			return nil
		},
	}

	sess, err := Open(testConfig(), mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	flags := codec.FlagNoRefLast | codec.FlagNoRefAltRef |
		codec.FlagNoUpdateGolden | codec.FlagNoUpdateEntropy
	if err := sess.Encode(newTestImage(64, 48), 0, 1, flags, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if useMask != ports.RefGolden {
		t.Errorf("use mask %b, want golden only", useMask)
	}
	if updMask != ports.RefLast|ports.RefAltRef {
		t.Errorf("update mask %b, want last|altref", updMask)
	}
	if len(entropyCalls) != 1 || entropyCalls[0] {
		t.Errorf("expected one UpdateEntropy(false), got %v", entropyCalls)
	}
}

func TestEncode_FixedKeyframeInterval(t *testing.T) {
	var keyframes []bool
	engine := &mocks.CompressorEngine{
		ReceiveRawFrameFunc: func(flags ports.SubmitFlags, frame *ports.FrameBuffer, ts, endTs int64) error {
			keyframes = append(keyframes, flags&ports.SubmitKeyframe != 0)
			return nil
		},
	}

	cfg := testConfig()
	cfg.KFMode = codec.KeyframeAuto
	cfg.KFMinDist = 10
	cfg.KFMaxDist = 10

	sess, err := Open(cfg, mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	img := newTestImage(64, 48)
	for i := 0; i < 22; i++ {
		if err := sess.Encode(img, int64(i), 1, 0, 0); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	// The counter exceeds the interval on the 11th call and resets, so
	// frames 10 and 21 are forced.
	for i, key := range keyframes {
		want := i == 10 || i == 21
		if key != want {
			t.Errorf("frame %d: keyframe=%v, want %v", i, key, want)
		}
	}
}

func TestEncode_InvalidImageStillAppliesFlags(t *testing.T) {
	var useCalled, frameCalled bool
	engine := &mocks.CompressorEngine{
		UseAsReferenceFunc: func(mask ports.RefMask) error {
			useCalled = true
			return nil
		},
		ReceiveRawFrameFunc: func(flags ports.SubmitFlags, frame *ports.FrameBuffer, ts, endTs int64) error {
			frameCalled = true
			return nil
		},
	}

	sess, err := Open(testConfig(), mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	wrong := newTestImage(32, 32)
	err = sess.Encode(wrong, 0, 1, codec.FlagNoRefGolden, 0)
	if !errors.Is(err, codec.ErrInvalidParam) {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}

	// Flag side effects are applied before the image check rejects the
	// submission.
	if !useCalled {
		t.Error("expected UseAsReference despite invalid image")
	}
	if frameCalled {
		t.Error("invalid image must not reach the engine")
	}
}

func TestEncode_PacketsAndIterator(t *testing.T) {
	units := []ports.CompressedUnit{
		{Size: 100, Keyframe: true, Shown: true, Timestamp: 0, EndTimestamp: 333333},
		{Size: 50, Shown: true, Timestamp: 333333, EndTimestamp: 666666},
	}
	var next int
	engine := &mocks.CompressorEngine{
		CompressedDataFunc: func(dst []byte, flush bool) (*ports.CompressedUnit, error) {
			if next >= len(units) {
				return nil, nil
			}
			u := units[next]
			next++
			for i := 0; i < u.Size; i++ {
				dst[i] = byte(next)
			}
			return &u, nil
		},
	}

	sess, err := Open(testConfig(), mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	if err := sess.Encode(newTestImage(64, 48), 0, 1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var it PacketIterator
	pkt, ok := sess.NextPacket(&it)
	if !ok {
		t.Fatal("expected first packet")
	}
	if pkt.Kind != codec.PacketFrame || len(pkt.Payload) != 100 {
		t.Errorf("packet 1: kind %v size %d", pkt.Kind, len(pkt.Payload))
	}
	if pkt.Flags&codec.PacketKeyframe == 0 {
		t.Error("packet 1: expected keyframe flag")
	}
	if pkt.PTS != 0 || pkt.Duration != 1 {
		t.Errorf("packet 1: pts %d duration %d, want 0 and 1", pkt.PTS, pkt.Duration)
	}

	pkt, ok = sess.NextPacket(&it)
	if !ok {
		t.Fatal("expected second packet")
	}
	if pkt.PTS != 1 || len(pkt.Payload) != 50 {
		t.Errorf("packet 2: pts %d size %d", pkt.PTS, len(pkt.Payload))
	}

	if _, ok := sess.NextPacket(&it); ok {
		t.Error("expected exhausted iterator")
	}
}

func TestEncode_InvisibleFramePlacement(t *testing.T) {
	served := false
	engine := &mocks.CompressorEngine{
		CompressedDataFunc: func(dst []byte, flush bool) (*ports.CompressedUnit, error) {
			if served {
				return nil, nil
			}
			served = true
			dst[0] = 1
			return &ports.CompressedUnit{
				Size: 1, Shown: false,
				Timestamp: 666666, EndTimestamp: 999999,
			}, nil
		},
		LastTimestampSeenFunc: func() int64 {
			return 333333 // engine ticks of pts 1 at 30 fps
		},
	}

	sess, err := Open(testConfig(), mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	if err := sess.Encode(newTestImage(64, 48), 2, 1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var it PacketIterator
	pkt, ok := sess.NextPacket(&it)
	if !ok {
		t.Fatal("expected packet")
	}
	if pkt.Flags&codec.PacketInvisible == 0 {
		t.Fatal("expected invisible flag")
	}
	// Placed one time-base unit after the last shown frame, with no
	// duration.
	if pkt.PTS != 2 {
		t.Errorf("pts %d, want 2", pkt.PTS)
	}
	if pkt.Duration != 0 {
		t.Errorf("duration %d, want 0", pkt.Duration)
	}
}

func TestEncode_AltRefInvisibleTimestamps(t *testing.T) {
	extra := codec.DefaultExtraConfig(codec.UsageDefault)
	extra.EnableAutoAltRef = 1

	sess, err := Open(testConfig(), stubengine.Factory, WithExtraConfig(extra))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	if err := sess.Encode(newTestImage(64, 48), 0, 1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Encode(newTestImage(64, 48), 1, 1, codec.FlagForceKeyframe, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var it PacketIterator
	invisible, ok := sess.NextPacket(&it)
	if !ok || invisible.Flags&codec.PacketInvisible == 0 {
		t.Fatal("expected invisible alt-ref packet before the keyframe")
	}
	// One time-base unit after the previously displayed frame (pts 0),
	// not after the keyframe it precedes.
	if invisible.PTS != 1 {
		t.Errorf("invisible pts %d, want 1", invisible.PTS)
	}
	if invisible.Duration != 0 {
		t.Errorf("invisible duration %d, want 0", invisible.Duration)
	}

	visible, ok := sess.NextPacket(&it)
	if !ok || visible.Flags&codec.PacketKeyframe == 0 || visible.Flags&codec.PacketInvisible != 0 {
		t.Fatal("expected visible keyframe after the alt-ref packet")
	}
	if visible.PTS != 1 {
		t.Errorf("keyframe pts %d, want 1", visible.PTS)
	}
	if invisible.PTS > visible.PTS {
		t.Errorf("invisible pts %d after keyframe pts %d", invisible.PTS, visible.PTS)
	}
}

func TestEncode_DrainStopsAtHeadroom(t *testing.T) {
	// Every call yields a unit just over a quarter of the scratch
	// buffer; the drain loop must stop before overflow.
	const unitSize = 1500 // scratch is 4096 for a tiny picture
	var calls int
	engine := &mocks.CompressorEngine{
		CompressedDataFunc: func(dst []byte, flush bool) (*ports.CompressedUnit, error) {
			calls++
			return &ports.CompressedUnit{Size: unitSize, Shown: true}, nil
		},
	}

	cfg := testConfig()
	cfg.Width = 4
	cfg.Height = 4

	sess, err := Open(cfg, mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	if err := sess.Encode(newTestImage(4, 4), 0, 1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4096-byte scratch, 2048 headroom floor: two units fit, then the
	// remaining 1096 bytes end the loop.
	if calls != 2 {
		t.Errorf("expected 2 engine pulls, got %d", calls)
	}

	var it PacketIterator
	var n int
	for {
		if _, ok := sess.NextPacket(&it); !ok {
			break
		}
		n++
	}
	if n != 2 {
		t.Errorf("expected 2 packets, got %d", n)
	}
}

func TestEncode_StatsPackets(t *testing.T) {
	served := false
	engine := &mocks.CompressorEngine{
		CompressedDataFunc: func(dst []byte, flush bool) (*ports.CompressedUnit, error) {
			if served {
				return nil, nil
			}
			served = true
			return &ports.CompressedUnit{Size: codec.StatsRecordSize, Stats: true, Shown: true}, nil
		},
	}

	cfg := testConfig()
	cfg.Pass = codec.PassFirst

	sess, err := Open(cfg, mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	if err := sess.Encode(newTestImage(64, 48), 0, 1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var it PacketIterator
	pkt, ok := sess.NextPacket(&it)
	if !ok {
		t.Fatal("expected stats packet")
	}
	if pkt.Kind != codec.PacketStats {
		t.Errorf("kind %v, want stats", pkt.Kind)
	}
	if len(pkt.Payload) != codec.StatsRecordSize {
		t.Errorf("payload %d bytes, want %d", len(pkt.Payload), codec.StatsRecordSize)
	}
}

func TestEncode_FlushWithoutImage(t *testing.T) {
	var flushSeen bool
	engine := &mocks.CompressorEngine{
		CompressedDataFunc: func(dst []byte, flush bool) (*ports.CompressedUnit, error) {
			flushSeen = flush
			return nil, nil
		},
	}

	sess, err := Open(testConfig(), mockFactory(engine))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sess.Close()

	if err := sess.Encode(nil, 0, 0, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flushSeen {
		t.Error("expected flush drain for nil image")
	}
}
