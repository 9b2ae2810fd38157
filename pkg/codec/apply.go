package codec

import "github.com/user/vp8session/pkg/ports"

// badFrameRateLimit is the sentinel above which a derived frame rate is
// assumed to come from a badly specified time base.
const badFrameRateLimit = 180

// defaultFrameRate substitutes for an out-of-whack derived frame rate.
const defaultFrameRate = 30

// ApplyConfig maps a validated configuration pair into the engine's
// internal representation. It is a pure function; the true per-frame
// mode is finalized later by the session's mode selection.
func ApplyConfig(g *GlobalConfig, x *ExtraConfig) ports.EngineConfig {
	cfg := ports.EngineConfig{
		Width:          g.Width,
		Height:         g.Height,
		Version:        g.Profile,
		MultiThreaded:  g.Threads,
		ErrorResilient: g.ErrorResilient,
	}

	// Guess a frame rate if out of whack.
	cfg.FrameRate = float64(g.Timebase.Den) / float64(g.Timebase.Num)
	if cfg.FrameRate > badFrameRateLimit {
		cfg.FrameRate = defaultFrameRate
	}

	switch g.Pass {
	case PassOne:
		cfg.Mode = ports.ModeBestQuality
	case PassFirst:
		cfg.Mode = ports.ModeFirstPass
	case PassLast:
		cfg.Mode = ports.ModeSecondPassBest
	}

	// The first pass never lags: statistics must be emitted for the
	// frame that was just analyzed.
	if g.Pass == PassFirst {
		cfg.AllowLag = false
		cfg.LagInFrames = 0
	} else {
		cfg.AllowLag = g.LagInFrames > 0
		cfg.LagInFrames = g.LagInFrames
	}

	cfg.AllowDropFrames = g.RCDropframeThresh > 0
	cfg.DropFramesWaterMark = g.RCDropframeThresh

	cfg.AllowSpatialResampling = g.RCResizeAllowed != 0
	cfg.ResampleUpWaterMark = g.RCResizeUpThresh
	cfg.ResampleDownWaterMark = g.RCResizeDownThresh

	if g.RCEndUsage == UsageVBR {
		cfg.EndUsage = ports.UsageLocalFilePlayback
	} else if g.RCEndUsage == UsageCBR {
		cfg.EndUsage = ports.UsageStreamFromServer
	}

	cfg.TargetBandwidth = g.RCTargetBitrate

	cfg.BestAllowedQ = g.RCMinQuantizer
	cfg.WorstAllowedQ = g.RCMaxQuantizer
	cfg.FixedQ = -1

	cfg.UnderShootPct = g.RCUndershootPct
	cfg.OverShootPct = g.RCOvershootPct

	cfg.MaximumBufferSize = g.RCBufSz
	cfg.StartingBufferLevel = g.RCBufInitialSz
	cfg.OptimalBufferLevel = g.RCBufOptimalSz

	cfg.TwoPassVBRBias = g.RC2PassVBRBiasPct
	cfg.TwoPassVBRMinSection = g.RC2PassVBRMinsectionPct
	cfg.TwoPassVBRMaxSection = g.RC2PassVBRMaxsectionPct
	cfg.TwoPassStatsIn = g.RCTwoPassStatsIn

	// Automatic keyframe insertion belongs to the engine only when the
	// interval is a genuine range; equal min and max mean a fixed
	// interval, enforced by the session's keyframe counter instead.
	cfg.AutoKeyframe = g.KFMode == KeyframeAuto && g.KFMinDist != g.KFMaxDist
	cfg.KeyFrequency = g.KFMaxDist

	cfg.CPUUsed = x.CPUUsed
	cfg.EncodeBreakout = x.StaticThresh
	cfg.PlayAlternate = x.EnableAutoAltRef != 0
	cfg.NoiseSensitivity = x.NoiseSensitivity
	cfg.Sharpness = x.Sharpness
	cfg.TokenPartitions = x.TokenPartitions

	cfg.ARNRMaxFrames = x.ARNRMaxFrames
	cfg.ARNRStrength = x.ARNRStrength
	cfg.ARNRType = x.ARNRType

	return cfg
}
