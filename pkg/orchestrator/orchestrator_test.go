package orchestrator

import (
	"bytes"
	"io"
	"testing"

	"github.com/user/vp8session/pkg/adapters/logger"
	"github.com/user/vp8session/pkg/adapters/stubengine"
	"github.com/user/vp8session/pkg/codec"
	"github.com/user/vp8session/pkg/mocks"
)

// sliceSource serves a fixed number of identical frames.
type sliceSource struct {
	frames []*codec.Image
	pos    int
}

func (s *sliceSource) Next() (*codec.Image, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	img := s.frames[s.pos]
	s.pos++
	return img, nil
}

func newSource(n, w, h int) *sliceSource {
	uvW := (w + 1) / 2
	uvH := (h + 1) / 2
	src := &sliceSource{}
	for i := 0; i < n; i++ {
		img := &codec.Image{Format: codec.FormatI420, Width: w, Height: h}
		img.Planes[0] = make([]byte, w*h)
		img.Planes[1] = make([]byte, uvW*uvH)
		img.Planes[2] = make([]byte, uvW*uvH)
		img.Strides[0] = w
		img.Strides[1] = uvW
		img.Strides[2] = uvW
		img.Planes[0][0] = byte(i) // distinct luma per frame
		src.frames = append(src.frames, img)
	}
	return src
}

func runConfig() Config {
	g := codec.DefaultGlobalConfig(codec.UsageDefault)
	g.Width = 64
	g.Height = 48
	return Config{Global: g}
}

func TestRun_SinglePass(t *testing.T) {
	sink := &mocks.PacketSink{}
	orch := New(stubengine.Factory, sink, logger.NewNoop())

	result, err := orch.Run(newSource(10, 64, 48), runConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FramesIn != 10 || result.FramesOut != 10 {
		t.Errorf("frames %d in / %d out, want 10/10", result.FramesIn, result.FramesOut)
	}
	if result.Keyframes < 1 {
		t.Error("expected at least one keyframe")
	}
	if result.BytesOut == 0 {
		t.Error("expected output bytes")
	}

	if len(sink.Written) != 10 {
		t.Fatalf("sink saw %d packets, want 10", len(sink.Written))
	}
	if !sink.Written[0].Keyframe {
		t.Error("expected leading keyframe")
	}
	for i := 1; i < len(sink.Written); i++ {
		if sink.Written[i].PTS != sink.Written[i-1].PTS+1 {
			t.Errorf("packet %d: pts %d after %d", i, sink.Written[i].PTS, sink.Written[i-1].PTS)
		}
	}
}

func TestRun_LagIsFlushed(t *testing.T) {
	sink := &mocks.PacketSink{}
	orch := New(stubengine.Factory, sink, logger.NewNoop())

	cfg := runConfig()
	cfg.Global.LagInFrames = 5

	result, err := orch.Run(newSource(8, 64, 48), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every lagged frame must come out in the final drain.
	if result.FramesOut != 8 {
		t.Errorf("frames out %d, want 8", result.FramesOut)
	}
}

func TestRun_FirstPassProducesValidStats(t *testing.T) {
	sink := &mocks.PacketSink{}
	orch := New(stubengine.Factory, sink, logger.NewNoop())

	var stats bytes.Buffer
	cfg := runConfig()
	cfg.Global.Pass = codec.PassFirst
	cfg.StatsOut = &stats

	result, err := orch.Run(newSource(5, 64, 48), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One record per frame plus the aggregate end-of-stream record.
	if result.StatsRecords != 6 {
		t.Errorf("stats records %d, want 6", result.StatsRecords)
	}
	if result.FramesOut != 0 {
		t.Errorf("frames out %d, want 0 in first pass", result.FramesOut)
	}
	if err := codec.ValidateStatsBuffer(stats.Bytes()); err != nil {
		t.Errorf("stats buffer invalid: %v", err)
	}
}

func TestRun_TwoPassRoundTrip(t *testing.T) {
	// First pass gathers statistics.
	var stats bytes.Buffer
	firstCfg := runConfig()
	firstCfg.Global.Pass = codec.PassFirst
	firstCfg.StatsOut = &stats

	orch := New(stubengine.Factory, &mocks.PacketSink{}, logger.NewNoop())
	if _, err := orch.Run(newSource(5, 64, 48), firstCfg); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// The last pass consumes them and produces frames.
	sink := &mocks.PacketSink{}
	lastCfg := runConfig()
	lastCfg.Global.Pass = codec.PassLast
	lastCfg.Global.RCTwoPassStatsIn = stats.Bytes()

	orch = New(stubengine.Factory, sink, logger.NewNoop())
	result, err := orch.Run(newSource(5, 64, 48), lastCfg)
	if err != nil {
		t.Fatalf("last pass: %v", err)
	}
	if result.FramesOut != 5 {
		t.Errorf("frames out %d, want 5", result.FramesOut)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := runConfig()
	cfg.Global.Width = 1

	orch := New(stubengine.Factory, &mocks.PacketSink{}, logger.NewNoop())
	if _, err := orch.Run(newSource(1, 1, 48), cfg); err == nil {
		t.Fatal("expected error for invalid configuration")
	}
}
