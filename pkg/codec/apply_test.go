package codec

import (
	"testing"

	"github.com/user/vp8session/pkg/ports"
)

func TestApplyConfig_FrameRate(t *testing.T) {
	g, x := validPair()

	g.Timebase = Rational{Num: 1, Den: 25}
	if got := ApplyConfig(&g, &x).FrameRate; got != 25 {
		t.Errorf("expected frame rate 25, got %v", got)
	}

	// A nonsense time base falls back to the default rate.
	g.Timebase = Rational{Num: 1, Den: 1000000}
	if got := ApplyConfig(&g, &x).FrameRate; got != 30 {
		t.Errorf("expected fallback frame rate 30, got %v", got)
	}
}

func TestApplyConfig_FirstPassNeverLags(t *testing.T) {
	g, x := validPair()
	g.LagInFrames = 10

	g.Pass = PassOne
	cfg := ApplyConfig(&g, &x)
	if !cfg.AllowLag || cfg.LagInFrames != 10 {
		t.Errorf("expected lag 10 in single pass, got allow=%v lag=%d", cfg.AllowLag, cfg.LagInFrames)
	}

	g.Pass = PassFirst
	cfg = ApplyConfig(&g, &x)
	if cfg.AllowLag || cfg.LagInFrames != 0 {
		t.Errorf("expected no lag in first pass, got allow=%v lag=%d", cfg.AllowLag, cfg.LagInFrames)
	}
	if cfg.Mode != ports.ModeFirstPass {
		t.Errorf("expected first pass mode, got %v", cfg.Mode)
	}
}

func TestApplyConfig_EndUsage(t *testing.T) {
	g, x := validPair()

	g.RCEndUsage = UsageVBR
	if got := ApplyConfig(&g, &x).EndUsage; got != ports.UsageLocalFilePlayback {
		t.Errorf("expected local file playback for VBR, got %v", got)
	}

	g.RCEndUsage = UsageCBR
	if got := ApplyConfig(&g, &x).EndUsage; got != ports.UsageStreamFromServer {
		t.Errorf("expected stream from server for CBR, got %v", got)
	}
}

func TestApplyConfig_RateControlPicksQuantizer(t *testing.T) {
	g, x := validPair()
	if got := ApplyConfig(&g, &x).FixedQ; got != -1 {
		t.Errorf("expected fixed q -1, got %d", got)
	}
}

func TestApplyConfig_AutoKeyframe(t *testing.T) {
	g, x := validPair()

	// A genuine interval range belongs to the engine.
	g.KFMode = KeyframeAuto
	g.KFMinDist = 0
	g.KFMaxDist = 9999
	cfg := ApplyConfig(&g, &x)
	if !cfg.AutoKeyframe || cfg.KeyFrequency != 9999 {
		t.Errorf("expected engine auto keyframes, got auto=%v freq=%d", cfg.AutoKeyframe, cfg.KeyFrequency)
	}

	// Equal min and max is a fixed interval handled outside the engine.
	g.KFMinDist = 30
	g.KFMaxDist = 30
	if ApplyConfig(&g, &x).AutoKeyframe {
		t.Error("expected engine auto keyframes off for a fixed interval")
	}

	g.KFMode = KeyframeDisabled
	g.KFMinDist = 0
	g.KFMaxDist = 9999
	if ApplyConfig(&g, &x).AutoKeyframe {
		t.Error("expected engine auto keyframes off when disabled")
	}
}
