package codec

// Usage identifies a configuration preset. Only the generic preset is
// defined for this codec family; unrecognized values fall back to it.
type Usage int

// UsageDefault is the generic preset.
const UsageDefault Usage = 0

var globalPresets = map[Usage]GlobalConfig{
	UsageDefault: {
		Usage:   0,
		Threads: 0,
		Profile: 0,

		Width:    320,
		Height:   240,
		Timebase: Rational{Num: 1, Den: 30},

		Pass: PassOne,

		LagInFrames: 0,

		RCDropframeThresh:  0,
		RCResizeAllowed:    0,
		RCResizeDownThresh: 60,
		RCResizeUpThresh:   30,

		RCEndUsage:      UsageVBR,
		RCTargetBitrate: 256,

		RCMinQuantizer: 4,
		RCMaxQuantizer: 63,

		RCUndershootPct: 95,
		RCOvershootPct:  200,

		RCBufSz:        6000,
		RCBufInitialSz: 4000,
		RCBufOptimalSz: 5000,

		RC2PassVBRBiasPct:       50,
		RC2PassVBRMinsectionPct: 0,
		RC2PassVBRMaxsectionPct: 400,

		KFMode:    KeyframeAuto,
		KFMinDist: 0,
		KFMaxDist: 9999,
	},
}

var extraPresets = map[Usage]ExtraConfig{
	UsageDefault: {
		EncodingMode:     EncodingBestQuality,
		CPUUsed:          0,
		EnableAutoAltRef: 0,
		NoiseSensitivity: 0,
		Sharpness:        0,
		StaticThresh:     0,
		TokenPartitions:  OneTokenPartition,
		ARNRMaxFrames:    0,
		ARNRStrength:     3,
		ARNRType:         3,
	},
}

// DefaultGlobalConfig returns the global configuration preset for the
// given usage, falling back to the default entry when the usage is
// unrecognized.
func DefaultGlobalConfig(usage Usage) GlobalConfig {
	if cfg, ok := globalPresets[usage]; ok {
		return cfg
	}
	return globalPresets[UsageDefault]
}

// DefaultExtraConfig returns the extra configuration preset for the
// given usage, with the same fallback rule as DefaultGlobalConfig.
func DefaultExtraConfig(usage Usage) ExtraConfig {
	if cfg, ok := extraPresets[usage]; ok {
		return cfg
	}
	return extraPresets[UsageDefault]
}
