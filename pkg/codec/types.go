// Package codec defines the externally visible encoder configuration
// model, its validation and its mapping onto the compression engine's
// internal representation.
package codec

// =============================================================================
// Common Types
// =============================================================================

// Rational is a time base: the duration of one timestamp tick is
// Num/Den seconds.
type Rational struct {
	Num int
	Den int
}

// RCPass identifies the rate-control pass.
type RCPass int

const (
	// PassOne is single-pass encoding.
	PassOne RCPass = iota
	// PassFirst gathers two-pass statistics.
	PassFirst
	// PassLast consumes two-pass statistics.
	PassLast
)

// EndUsage selects the rate-control mode.
type EndUsage int

const (
	// UsageVBR is variable-bitrate rate control.
	UsageVBR EndUsage = iota
	// UsageCBR is constant-bitrate rate control.
	UsageCBR
)

// KeyframeMode controls keyframe placement.
type KeyframeMode int

const (
	// KeyframeDisabled places keyframes only on request.
	KeyframeDisabled KeyframeMode = iota
	// KeyframeAuto lets the encoder place keyframes, bounded by
	// KFMaxDist. Equal KFMinDist and KFMaxDist select a fixed interval
	// enforced by the session layer instead.
	KeyframeAuto
)

// EncodingMode is the legacy quality override settable through the
// deprecated control path. It unconditionally replaces the
// deadline-derived mode when set.
type EncodingMode int

const (
	// EncodingBestQuality forces best-quality encoding.
	EncodingBestQuality EncodingMode = iota
	// EncodingGoodQuality forces good-quality encoding.
	EncodingGoodQuality
	// EncodingRealTime forces real-time encoding.
	EncodingRealTime
)

// Token partition counts. The value is the log2 partition count.
const (
	OneTokenPartition    = 0
	TwoTokenPartitions   = 1
	FourTokenPartitions  = 2
	EightTokenPartitions = 3
)

// =============================================================================
// Global Configuration
// =============================================================================

// GlobalConfig is the portable, externally controlled configuration
// snapshot for one session. Width, Height are immutable after session
// creation; LagInFrames may only decrease across reconfigurations.
type GlobalConfig struct {
	Usage   int
	Threads int
	Profile int

	Width    int
	Height   int
	Timebase Rational

	ErrorResilient bool

	Pass RCPass

	// LagInFrames is the number of frames the engine may buffer before
	// emitting output, enabling look-ahead rate control.
	LagInFrames int

	RCDropframeThresh  int
	RCResizeAllowed    int // boolean: 0 or 1
	RCResizeUpThresh   int
	RCResizeDownThresh int

	RCEndUsage       EndUsage
	RCTwoPassStatsIn []byte
	RCTargetBitrate  int // kilobits per second

	RCMinQuantizer int
	RCMaxQuantizer int

	RCUndershootPct int
	RCOvershootPct  int

	RCBufSz        int
	RCBufInitialSz int
	RCBufOptimalSz int

	RC2PassVBRBiasPct       int
	RC2PassVBRMinsectionPct int
	RC2PassVBRMaxsectionPct int

	KFMode    KeyframeMode
	KFMinDist int
	KFMaxDist int
}

// =============================================================================
// Extra Configuration
// =============================================================================

// ExtraConfig carries engine-tuning knobs outside the portable global
// configuration.
type ExtraConfig struct {
	EncodingMode     EncodingMode
	CPUUsed          int
	EnableAutoAltRef int // boolean: 0 or 1
	NoiseSensitivity int
	Sharpness        int
	StaticThresh     int
	TokenPartitions  int

	// Alt-ref noise reduction (ARNR) filter controls.
	ARNRMaxFrames int
	ARNRStrength  int
	ARNRType      int
}

// =============================================================================
// Frame Submission
// =============================================================================

// FrameFlags is the per-frame flag bitmask accepted by Session.Encode.
type FrameFlags int

const (
	// FlagForceKeyframe forces this frame to be a keyframe.
	FlagForceKeyframe FrameFlags = 1 << iota
	// FlagNoRefLast stops this frame from referencing the last frame.
	FlagNoRefLast
	// FlagNoRefGolden stops this frame from referencing the golden frame.
	FlagNoRefGolden
	// FlagNoRefAltRef stops this frame from referencing the alt-ref frame.
	FlagNoRefAltRef
	// FlagNoUpdateLast stops this frame from updating the last frame slot.
	FlagNoUpdateLast
	// FlagNoUpdateGolden stops this frame from updating the golden slot.
	FlagNoUpdateGolden
	// FlagNoUpdateAltRef stops this frame from updating the alt-ref slot.
	FlagNoUpdateAltRef
	// FlagForceGolden forces this frame to update the golden slot.
	FlagForceGolden
	// FlagForceAltRef forces this frame to update the alt-ref slot.
	FlagForceAltRef
	// FlagNoUpdateEntropy suppresses entropy-context updates.
	FlagNoUpdateEntropy
)

// =============================================================================
// Compressed Packets
// =============================================================================

// PacketKind distinguishes frame output from first-pass statistics.
type PacketKind int

const (
	// PacketFrame is one compressed frame.
	PacketFrame PacketKind = iota
	// PacketStats is one first-pass statistics record.
	PacketStats
)

// PacketFlags classify a compressed packet.
type PacketFlags int

const (
	// PacketKeyframe marks a keyframe packet.
	PacketKeyframe PacketFlags = 1 << iota
	// PacketInvisible marks a frame encoded only as a future reference,
	// never displayed.
	PacketInvisible
	// PacketDropped marks a frame the rate controller dropped.
	PacketDropped
)

// Packet is one unit of encoder output. Payload references the owning
// session's scratch buffer; it is valid only until the next Encode
// call.
type Packet struct {
	Kind     PacketKind
	Payload  []byte
	PTS      int64 // in the caller's time base
	Duration int64 // in the caller's time base
	Flags    PacketFlags
}
