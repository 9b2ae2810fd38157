// Package config provides configuration loading and management.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/vp8session/pkg/codec"
)

// Config is the YAML-facing encoding profile. Zero values mean "keep
// the preset default"; LoadFromFile starts from Defaults and overlays
// the file on top.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`
	Container  string `yaml:"container"` // ivf or mp4
	StatsPath  string `yaml:"stats_file"`

	// Picture
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	TimebaseNum int `yaml:"timebase_num"`
	TimebaseDen int `yaml:"timebase_den"`

	// Rate control
	Bitrate       int    `yaml:"bitrate"`
	EndUsage      string `yaml:"end_usage"` // vbr or cbr
	MinQuantizer  int    `yaml:"min_q"`
	MaxQuantizer  int    `yaml:"max_q"`
	UndershootPct int    `yaml:"undershoot_pct"`
	OvershootPct  int    `yaml:"overshoot_pct"`
	DropThresh    int    `yaml:"drop_thresh"`

	// Buffering
	BufSz        int `yaml:"buf_sz"`
	BufInitialSz int `yaml:"buf_initial_sz"`
	BufOptimalSz int `yaml:"buf_optimal_sz"`

	// Keyframes
	KeyframeMode string `yaml:"keyframe_mode"` // auto or disabled
	KFMinDist    int    `yaml:"kf_min_dist"`
	KFMaxDist    int    `yaml:"kf_max_dist"`

	// Passes and lag
	Pass        string `yaml:"pass"` // one, first or last
	LagInFrames int    `yaml:"lag_in_frames"`

	// Tuning
	CPUUsed          int  `yaml:"cpu_used"`
	EnableAutoAltRef bool `yaml:"auto_alt_ref"`
	NoiseSensitivity int  `yaml:"noise_sensitivity"`
	Sharpness        int  `yaml:"sharpness"`
	StaticThresh     int  `yaml:"static_thresh"`
	TokenPartitions  int  `yaml:"token_partitions"`
	ARNRMaxFrames    int  `yaml:"arnr_max_frames"`
	ARNRStrength     int  `yaml:"arnr_strength"`
	ARNRType         int  `yaml:"arnr_type"`

	Threads        int  `yaml:"threads"`
	ErrorResilient bool `yaml:"error_resilient"`

	// Hard deadline per frame in microseconds. Zero selects best quality.
	DeadlineUs uint64 `yaml:"deadline_us"`

	// Debug
	Debug bool `yaml:"debug"`
}

// Defaults returns a Config mirroring the generic usage preset.
func Defaults() Config {
	g := codec.DefaultGlobalConfig(codec.UsageDefault)
	x := codec.DefaultExtraConfig(codec.UsageDefault)

	return Config{
		Container: "ivf",

		Width:       g.Width,
		Height:      g.Height,
		TimebaseNum: g.Timebase.Num,
		TimebaseDen: g.Timebase.Den,

		Bitrate:       g.RCTargetBitrate,
		EndUsage:      "vbr",
		MinQuantizer:  g.RCMinQuantizer,
		MaxQuantizer:  g.RCMaxQuantizer,
		UndershootPct: g.RCUndershootPct,
		OvershootPct:  g.RCOvershootPct,
		DropThresh:    g.RCDropframeThresh,

		BufSz:        g.RCBufSz,
		BufInitialSz: g.RCBufInitialSz,
		BufOptimalSz: g.RCBufOptimalSz,

		KeyframeMode: "auto",
		KFMinDist:    g.KFMinDist,
		KFMaxDist:    g.KFMaxDist,

		Pass:        "one",
		LagInFrames: g.LagInFrames,

		CPUUsed:          x.CPUUsed,
		EnableAutoAltRef: x.EnableAutoAltRef != 0,
		NoiseSensitivity: x.NoiseSensitivity,
		Sharpness:        x.Sharpness,
		StaticThresh:     x.StaticThresh,
		TokenPartitions:  x.TokenPartitions,
		ARNRMaxFrames:    x.ARNRMaxFrames,
		ARNRStrength:     x.ARNRStrength,
		ARNRType:         x.ARNRType,

		Threads: g.Threads,
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ToGlobalConfig converts the profile to a session global configuration.
// Validation happens at session open, not here.
func (c Config) ToGlobalConfig() codec.GlobalConfig {
	g := codec.DefaultGlobalConfig(codec.UsageDefault)

	g.Threads = c.Threads
	g.Width = c.Width
	g.Height = c.Height
	g.Timebase = codec.Rational{Num: c.TimebaseNum, Den: c.TimebaseDen}
	g.ErrorResilient = c.ErrorResilient

	switch c.Pass {
	case "first":
		g.Pass = codec.PassFirst
	case "last":
		g.Pass = codec.PassLast
	default:
		g.Pass = codec.PassOne
	}

	g.LagInFrames = c.LagInFrames

	g.RCDropframeThresh = c.DropThresh
	if c.EndUsage == "cbr" {
		g.RCEndUsage = codec.UsageCBR
	} else {
		g.RCEndUsage = codec.UsageVBR
	}
	g.RCTargetBitrate = c.Bitrate
	g.RCMinQuantizer = c.MinQuantizer
	g.RCMaxQuantizer = c.MaxQuantizer
	g.RCUndershootPct = c.UndershootPct
	g.RCOvershootPct = c.OvershootPct
	g.RCBufSz = c.BufSz
	g.RCBufInitialSz = c.BufInitialSz
	g.RCBufOptimalSz = c.BufOptimalSz

	if c.KeyframeMode == "disabled" {
		g.KFMode = codec.KeyframeDisabled
	} else {
		g.KFMode = codec.KeyframeAuto
	}
	g.KFMinDist = c.KFMinDist
	g.KFMaxDist = c.KFMaxDist

	return g
}

// ToExtraConfig converts the profile to session extra configuration.
func (c Config) ToExtraConfig() codec.ExtraConfig {
	x := codec.DefaultExtraConfig(codec.UsageDefault)

	x.CPUUsed = c.CPUUsed
	if c.EnableAutoAltRef {
		x.EnableAutoAltRef = 1
	} else {
		x.EnableAutoAltRef = 0
	}
	x.NoiseSensitivity = c.NoiseSensitivity
	x.Sharpness = c.Sharpness
	x.StaticThresh = c.StaticThresh
	x.TokenPartitions = c.TokenPartitions
	x.ARNRMaxFrames = c.ARNRMaxFrames
	x.ARNRStrength = c.ARNRStrength
	x.ARNRType = c.ARNRType

	return x
}
